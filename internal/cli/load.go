// Package cli holds the file handling shared by the example commands.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/logicossoftware/go-a109"
	"github.com/logicossoftware/go-a109/flightdoc"
)

// maxLooseFile bounds the files read from a directory. The largest A109
// file is the route table.
const maxLooseFile = 2 * a109.RouteFileSize

// LoadFiles reads an A109 file set from path. A directory contributes each
// regular file directly inside it; anything else is read as a bundle.
func LoadFiles(path string, opts ...a109.BundleOption) (map[string][]byte, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return a109.ReadBundle(f, opts...)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	files := make(map[string][]byte)
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		if info.Size() > maxLooseFile {
			return nil, fmt.Errorf("%s: %w: %d bytes", e.Name(), a109.ErrLimitExceeded, info.Size())
		}
		b, err := os.ReadFile(filepath.Join(path, e.Name()))
		if err != nil {
			return nil, err
		}
		files[e.Name()] = b
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", path, a109.ErrMissingFile)
	}
	return files, nil
}

// LoadSnapshot reads a Document saved with SaveSnapshot. A missing file
// yields an empty Document.
func LoadSnapshot(path string) (*flightdoc.Document, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &flightdoc.Document{}, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()
	return flightdoc.ReadSnapshot(f)
}

// SaveSnapshot writes doc to path, replacing any previous snapshot only
// once the new one is complete.
func SaveSnapshot(path string, doc *flightdoc.Document) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := flightdoc.WriteSnapshot(tmp, doc); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
