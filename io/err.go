package io

import (
	"errors"

	"github.com/ezrec/i8080/translate"
)

var f = translate.From

var (
	// Device errors
	ErrPortFull = errors.New(f("port full"))

	// Image errors
	ErrArchiveEmpty = errors.New(f("archive empty"))
)
