package romloader

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"
)

// member is one file of an archive that lists its contents up front.
type member struct {
	name string
	info fs.FileInfo
	open func() (io.ReadCloser, error)
}

// pick returns the first member named *.nes, or failing that the first
// member whose contents start with the iNES magic.
func pick(members []member) (Image, error) {
	var files []member
	for _, m := range members {
		if !m.info.IsDir() {
			files = append(files, m)
		}
	}
	for _, m := range files {
		if isNESName(m.name) {
			return readMember(m)
		}
	}
	for _, m := range files {
		img, err := readMember(m)
		if errors.Is(err, ErrFileTooLarge) {
			continue
		}
		if err != nil {
			return Image{}, err
		}
		if bytes.HasPrefix(img.Data, magicINES) {
			return img, nil
		}
	}
	return Image{}, ErrNoROMFile
}

func readMember(m member) (Image, error) {
	rc, err := m.open()
	if err != nil {
		return Image{}, fmt.Errorf("open %s: %w", m.name, err)
	}
	defer rc.Close()
	data, err := readLimited(rc)
	if err != nil {
		return Image{}, fmt.Errorf("read %s: %w", m.name, err)
	}
	return Image{Data: data, Name: filepath.Base(m.name)}, nil
}

func fromZip(path string) (Image, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return Image{}, fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	members := make([]member, len(r.File))
	for i, f := range r.File {
		members[i] = member{name: f.Name, info: f.FileInfo(), open: f.Open}
	}
	return pick(members)
}

func from7z(path string) (Image, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return Image{}, fmt.Errorf("open 7z: %w", err)
	}
	defer r.Close()

	members := make([]member, len(r.File))
	for i, f := range r.File {
		members[i] = member{name: f.Name, info: f.FileInfo(), open: f.Open}
	}
	return pick(members)
}

// fromRAR streams the archive and takes the first *.nes entry.
func fromRAR(path string) (Image, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return Image{}, fmt.Errorf("open rar: %w", err)
	}
	defer r.Close()

	for {
		h, err := r.Next()
		if err == io.EOF {
			return Image{}, ErrNoROMFile
		}
		if err != nil {
			return Image{}, fmt.Errorf("read rar entry: %w", err)
		}
		if h.IsDir || !isNESName(h.Name) {
			continue
		}
		data, err := readLimited(r)
		if err != nil {
			return Image{}, fmt.Errorf("read %s: %w", h.Name, err)
		}
		return Image{Data: data, Name: filepath.Base(h.Name)}, nil
	}
}

// fromGzip decompresses a single image, or scans a tarball for *.nes.
func fromGzip(f io.ReadSeeker, path string, c Container) (Image, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Image{}, err
	}
	gr, err := gzip.NewReader(f)
	if err != nil {
		return Image{}, fmt.Errorf("open gzip: %w", err)
	}
	defer gr.Close()

	if c == TarGzip {
		return fromTar(gr)
	}
	data, err := readLimited(gr)
	if err != nil {
		return Image{}, fmt.Errorf("decompress: %w", err)
	}
	name := gr.Name
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return Image{Data: data, Name: filepath.Base(name)}, nil
}

func fromTar(r io.Reader) (Image, error) {
	tr := tar.NewReader(r)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return Image{}, ErrNoROMFile
		}
		if err != nil {
			return Image{}, fmt.Errorf("read tar entry: %w", err)
		}
		if h.Typeflag != tar.TypeReg || !isNESName(h.Name) {
			continue
		}
		data, err := readLimited(tr)
		if err != nil {
			return Image{}, fmt.Errorf("read %s: %w", h.Name, err)
		}
		return Image{Data: data, Name: filepath.Base(h.Name)}, nil
	}
}
