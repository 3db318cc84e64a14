package io

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash"
	"github.com/stretchr/testify/assert"
)

var romImage = []byte{0x3e, 0x05, 0x3c, 0x76}

func TestReadRom_Raw(t *testing.T) {
	assert := assert.New(t)

	rom, err := ReadRom("test.bin", romImage)
	assert.NoError(err)
	assert.Equal("test.bin", rom.Name)
	assert.Equal(romImage, rom.Data)
	assert.Equal(xxhash.Sum64(romImage), rom.Sum())
}

func TestReadRom_Gzip(t *testing.T) {
	assert := assert.New(t)

	buf := &bytes.Buffer{}
	zw := gzip.NewWriter(buf)
	_, err := zw.Write(romImage)
	assert.NoError(err)
	assert.NoError(zw.Close())

	rom, err := ReadRom("test.bin.gz", buf.Bytes())
	assert.NoError(err)
	assert.Equal(romImage, rom.Data)
}

func TestReadRom_Zip(t *testing.T) {
	assert := assert.New(t)

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	w, err := zw.Create("test.com")
	assert.NoError(err)
	_, err = w.Write(romImage)
	assert.NoError(err)
	assert.NoError(zw.Close())

	rom, err := ReadRom("TEST.ZIP", buf.Bytes())
	assert.NoError(err)
	assert.Equal(romImage, rom.Data)
}

func TestReadRom_ZipEmpty(t *testing.T) {
	assert := assert.New(t)

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	assert.NoError(zw.Close())

	_, err := ReadRom("empty.zip", buf.Bytes())
	assert.ErrorIs(err, ErrArchiveEmpty)
}

func TestReadRom_Corrupt(t *testing.T) {
	assert := assert.New(t)

	_, err := ReadRom("bad.gz", []byte("not gzip"))
	assert.Error(err)

	_, err = ReadRom("bad.7z", []byte("not 7z"))
	assert.Error(err)
}

func TestLoadRom(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "image.com")
	assert.NoError(os.WriteFile(path, romImage, 0o644))

	rom, err := LoadRom(path)
	assert.NoError(err)
	assert.Equal(romImage, rom.Data)

	_, err = LoadRom(filepath.Join(t.TempDir(), "missing.com"))
	assert.Error(err)
}
