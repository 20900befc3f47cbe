// Package romloader reads iNES images from disk, unpacking them from zip,
// 7z, rar and gzip/tar.gz archives when needed.
package romloader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extension is the file extension of iNES images.
const Extension = ".nes"

// MaxSize caps any single extracted image.
const MaxSize = 8 << 20

var (
	ErrNoROMFile         = errors.New("no iNES image found in archive")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileTooLarge      = errors.New("file exceeds maximum size limit")
)

var (
	magicINES  = []byte{'N', 'E', 'S', 0x1A}
	magicZIP   = []byte{'P', 'K', 0x03, 0x04}
	magicEmpty = []byte{'P', 'K', 0x05, 0x06}
	magic7z    = []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip  = []byte{0x1F, 0x8B}
	magicRAR   = []byte{'R', 'a', 'r', '!'}
)

// Container names the wrapper an image was found in.
type Container string

const (
	Raw     Container = "raw"
	Zip     Container = "zip"
	SevenZ  Container = "7z"
	Gzip    Container = "gzip"
	TarGzip Container = "tar.gz"
	RAR     Container = "rar"
)

// Image is a loaded cartridge image.
type Image struct {
	Data []byte
	// Name is the base name of the image inside its container.
	Name      string
	Container Container
}

// Load reads the image at path. Archives are identified by magic bytes, then
// by extension; a bare file must either start with the iNES magic or carry
// the .nes extension.
func Load(path string) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return Image{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, 8)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Image{}, fmt.Errorf("read header of %s: %w", path, err)
	}
	c, ok := detect(head[:n], path)
	if !ok {
		return Image{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}

	var img Image
	switch c {
	case Raw:
		if _, err = f.Seek(0, io.SeekStart); err != nil {
			return Image{}, err
		}
		img.Data, err = readLimited(f)
		img.Name = filepath.Base(path)
	case Zip:
		img, err = fromZip(path)
	case SevenZ:
		img, err = from7z(path)
	case RAR:
		img, err = fromRAR(path)
	case Gzip, TarGzip:
		img, err = fromGzip(f, path, c)
	}
	if err != nil {
		return Image{}, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	img.Container = c
	return img, nil
}

func detect(head []byte, path string) (Container, bool) {
	lower := strings.ToLower(path)
	switch {
	case bytes.HasPrefix(head, magicINES):
		return Raw, true
	case bytes.HasPrefix(head, magicZIP), bytes.HasPrefix(head, magicEmpty):
		return Zip, true
	case bytes.HasPrefix(head, magic7z):
		return SevenZ, true
	case bytes.HasPrefix(head, magicRAR):
		return RAR, true
	case bytes.HasPrefix(head, magicGzip):
		if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
			return TarGzip, true
		}
		return Gzip, true
	}
	switch filepath.Ext(lower) {
	case Extension:
		return Raw, true
	case ".zip":
		return Zip, true
	case ".7z":
		return SevenZ, true
	case ".rar":
		return RAR, true
	case ".tgz":
		return TarGzip, true
	case ".gz":
		if strings.HasSuffix(lower, ".tar.gz") {
			return TarGzip, true
		}
		return Gzip, true
	}
	return "", false
}

func isNESName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Extension)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
