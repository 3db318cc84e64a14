package io

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/cespare/xxhash"
)

// Rom is a raw program image.
type Rom struct {
	Name string // Name the image was loaded from.
	Data []byte // Image contents, loaded verbatim into memory.
}

// LoadRom loads an image file, decompressing .gz files and extracting the
// first member of .zip and .7z archives.
func LoadRom(filename string) (rom *Rom, err error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return
	}

	return ReadRom(filename, data)
}

// ReadRom decodes image data according to the extension of name.
func ReadRom(name string, data []byte) (rom *Rom, err error) {
	var decoder io.Reader

	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		decoder, err = gzip.NewReader(bytes.NewReader(data))
	case ".zip":
		var zr *zip.Reader
		zr, err = zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return
		}
		if len(zr.File) == 0 {
			err = ErrArchiveEmpty
			return
		}
		// read the first file in the archive
		decoder, err = zr.File[0].Open()
	case ".7z":
		var sr *sevenzip.Reader
		sr, err = sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return
		}
		if len(sr.File) == 0 {
			err = ErrArchiveEmpty
			return
		}
		// read the first file in the archive
		decoder, err = sr.File[0].Open()
	default:
		rom = &Rom{Name: name, Data: data}
		return
	}

	if err != nil {
		return
	}

	if closer, ok := decoder.(io.Closer); ok {
		defer closer.Close()
	}

	data, err = io.ReadAll(decoder)
	if err != nil {
		return
	}

	rom = &Rom{Name: name, Data: data}
	return
}

// Sum returns the xxhash fingerprint of the image.
func (rom *Rom) Sum() uint64 {
	return xxhash.Sum64(rom.Data)
}
