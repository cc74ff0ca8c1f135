package a109

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how WriteBundle packs a file set.
type Compression uint8

const (
	CompNone Compression = iota // plain tar
	CompZIP                     // zip archive, one entry per file
	CompZSTD                    // tar compressed with Zstandard
	CompLZ4                     // tar compressed with LZ4 frames
	CompBR                      // tar compressed with Brotli
)

func (c Compression) String() string {
	switch c {
	case CompNone:
		return "none"
	case CompZIP:
		return "zip"
	case CompZSTD:
		return "zstd"
	case CompLZ4:
		return "lz4"
	case CompBR:
		return "br"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression maps a name as produced by String back to its value.
func ParseCompression(s string) (Compression, error) {
	for c := CompNone; c <= CompBR; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown compression %q", ErrInvalidBundle, s)
}

// Constructors and writers swapped out by tests.
var (
	newZstdWriter = func() (*zstd.Encoder, error) { return zstd.NewWriter(nil) }
	newZstdReader = func() (*zstd.Decoder, error) { return zstd.NewReader(nil) }
	readAll       = io.ReadAll
	lz4Close      = func(w *lz4.Writer) error { return w.Close() }
	brotliClose   = func(w *brotli.Writer) error { return w.Close() }
	brotliWrite   = func(w *brotli.Writer, p []byte) (int, error) { return w.Write(p) }
)

var (
	magicZIP  = []byte("PK\x03\x04")
	magicZSTD = []byte{0x28, 0xB5, 0x2F, 0xFD}
	magicLZ4  = []byte{0x04, 0x22, 0x4D, 0x18}
	magicTar  = []byte("ustar")
)

const tarMagicOffset = 257

// DetectCompression guesses how a bundle was packed from its leading
// bytes. Brotli streams carry no magic number, so anything unrecognised is
// assumed to be Brotli.
func DetectCompression(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, magicZIP):
		return CompZIP
	case bytes.HasPrefix(data, magicZSTD):
		return CompZSTD
	case bytes.HasPrefix(data, magicLZ4):
		return CompLZ4
	case len(data) >= tarMagicOffset+len(magicTar) && bytes.Equal(data[tarMagicOffset:tarMagicOffset+len(magicTar)], magicTar):
		return CompNone
	default:
		return CompBR
	}
}

// compressStream compresses a tar stream for the stream formats. CompNone
// returns in unchanged.
func compressStream(comp Compression, in []byte) ([]byte, error) {
	switch comp {
	case CompNone:
		return in, nil
	case CompZSTD:
		return zstdCompress(in)
	case CompLZ4:
		return lz4Compress(in)
	case CompBR:
		return brotliCompress(in)
	default:
		return nil, fmt.Errorf("%w: compression %s is not a stream format", ErrInvalidBundle, comp)
	}
}

// decompressStream reverses compressStream, failing with ErrLimitExceeded
// once the output would exceed maxOut bytes.
func decompressStream(comp Compression, in []byte, maxOut uint64) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch comp {
	case CompNone:
		if uint64(len(in)) > maxOut {
			return nil, fmt.Errorf("%w: bundle is %d bytes", ErrLimitExceeded, len(in))
		}
		return in, nil
	case CompZSTD:
		out, err = zstdDecompress(in, maxOut)
	case CompLZ4:
		out, err = readLimited(lz4.NewReader(bytes.NewReader(in)), maxOut)
	case CompBR:
		out, err = readLimited(brotli.NewReader(bytes.NewReader(in)), maxOut)
	default:
		return nil, fmt.Errorf("%w: compression %s is not a stream format", ErrInvalidBundle, comp)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", comp, err)
	}
	return out, nil
}

// readLimited reads r to the end, refusing to return more than limit bytes.
// Read failures other than the limit are reported as ErrInvalidBundle.
func readLimited(r io.Reader, limit uint64) ([]byte, error) {
	b, err := readAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	if uint64(len(b)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrLimitExceeded, limit)
	}
	return b, nil
}

func zstdCompress(in []byte) ([]byte, error) {
	enc, err := newZstdWriter()
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(in, nil), nil
}

func zstdDecompress(in []byte, maxOut uint64) ([]byte, error) {
	dec, err := newZstdReader()
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	if err := dec.Reset(bytes.NewReader(in)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	return readLimited(dec, maxOut)
}

func lz4Compress(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(in); err != nil {
		_ = lz4Close(zw)
		return nil, err
	}
	if err := lz4Close(zw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func brotliCompress(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	if _, err := brotliWrite(bw, in); err != nil {
		_ = brotliClose(bw)
		return nil, err
	}
	if err := brotliClose(bw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
