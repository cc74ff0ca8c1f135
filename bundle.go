package a109

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"time"
)

// Function variables for testing injection.
var (
	zipCreate = func(zw *zip.Writer, name string) (io.Writer, error) { return zw.Create(name) }
	zipClose  = func(zw *zip.Writer) error { return zw.Close() }
	zipOpen   = func(zf *zip.File) (io.ReadCloser, error) { return zf.Open() }
)

// bundleEpoch is the modification time stamped on every bundle entry, so
// that the same set always packs to the same bytes.
var bundleEpoch = time.Unix(0, 0).UTC()

// WriteBundle packs the files of fs into a single archive written to w.
// Files are stored under their canonical names in set order; files that are
// nil are left out.
func WriteBundle(w io.Writer, fs *FileSet, comp Compression) error {
	if comp == CompZIP {
		return writeZip(w, fs)
	}
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, t := range FileTypes {
		b := fs.File(t)
		if b == nil {
			continue
		}
		hdr := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     t.FileName(),
			Mode:     0o644,
			Size:     int64(len(b)),
			ModTime:  bundleEpoch,
			Format:   tar.FormatUSTAR,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if _, err := tw.Write(b); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	out, err := compressStream(comp, buf.Bytes())
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func writeZip(w io.Writer, fs *FileSet) error {
	zw := zip.NewWriter(w)
	for _, t := range FileTypes {
		b := fs.File(t)
		if b == nil {
			continue
		}
		entry, err := zipCreate(zw, t.FileName())
		if err != nil {
			_ = zipClose(zw)
			return err
		}
		if _, err := entry.Write(b); err != nil {
			_ = zipClose(zw)
			return err
		}
	}
	return zipClose(zw)
}

// ReadBundle unpacks an archive written by WriteBundle, or any zip or tar
// stream holding A109 files, into a map keyed by entry name. The packing is
// found with DetectCompression. Limits (see WithBundleLimits) bound the
// archive size, the number of entries and the size of each entry; going
// over any of them fails with ErrLimitExceeded.
func ReadBundle(r io.Reader, opts ...BundleOption) (map[string][]byte, error) {
	var cfg bundleConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	lim := cfg.limits.withDefaults()

	data, err := readLimited(r, lim.MaxBundleSize)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidBundle)
	}

	comp := DetectCompression(data)
	if comp == CompZIP {
		return readZip(data, lim)
	}
	raw, err := decompressStream(comp, data, lim.MaxBundleSize)
	if err != nil {
		return nil, err
	}
	return readTar(raw, lim)
}

// bundleFiles accumulates entries while enforcing limits.
type bundleFiles struct {
	lim   Limits
	total uint64
	files map[string][]byte
}

func (b *bundleFiles) checkEntry(name string, size uint64) error {
	if name == "" || path.Base(name) != name || name == "." || name == ".." {
		return fmt.Errorf("%w: bad entry name %q", ErrInvalidBundle, name)
	}
	if _, dup := b.files[name]; dup {
		return fmt.Errorf("%w: duplicate entry %q", ErrInvalidBundle, name)
	}
	if len(b.files) >= b.lim.MaxBundleEntries {
		return fmt.Errorf("%w: more than %d entries", ErrLimitExceeded, b.lim.MaxBundleEntries)
	}
	if size > b.lim.MaxFileSize {
		return &FileError{Name: name, Err: fmt.Errorf("%w: %d bytes", ErrLimitExceeded, size)}
	}
	return nil
}

func (b *bundleFiles) add(name string, data []byte) error {
	b.total += uint64(len(data))
	if b.total > b.lim.MaxBundleSize {
		return fmt.Errorf("%w: bundle expands beyond %d bytes", ErrLimitExceeded, b.lim.MaxBundleSize)
	}
	b.files[name] = data
	return nil
}

func readTar(raw []byte, lim Limits) (map[string][]byte, error) {
	out := bundleFiles{lim: lim, files: make(map[string][]byte)}
	tr := tar.NewReader(bytes.NewReader(raw))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if hdr.Size < 0 {
			return nil, fmt.Errorf("%w: negative size for %q", ErrInvalidBundle, hdr.Name)
		}
		if err := out.checkEntry(hdr.Name, uint64(hdr.Size)); err != nil {
			return nil, err
		}
		b, err := readLimited(tr, lim.MaxFileSize)
		if err != nil {
			return nil, &FileError{Name: hdr.Name, Err: err}
		}
		if err := out.add(hdr.Name, b); err != nil {
			return nil, err
		}
	}
	return out.files, nil
}

func readZip(data []byte, lim Limits) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	if len(zr.File) > lim.MaxBundleEntries {
		return nil, fmt.Errorf("%w: %d entries", ErrLimitExceeded, len(zr.File))
	}
	out := bundleFiles{lim: lim, files: make(map[string][]byte)}
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		if err := out.checkEntry(zf.Name, zf.UncompressedSize64); err != nil {
			return nil, err
		}
		rc, err := zipOpen(zf)
		if err != nil {
			return nil, &FileError{Name: zf.Name, Err: fmt.Errorf("%w: %v", ErrInvalidBundle, err)}
		}
		b, err := readLimited(rc, lim.MaxFileSize)
		rc.Close()
		if err != nil {
			return nil, &FileError{Name: zf.Name, Err: err}
		}
		if err := out.add(zf.Name, b); err != nil {
			return nil, err
		}
	}
	return out.files, nil
}
