// Package main provides C-compatible exports for the a109 library.
// Build with: go build -buildmode=c-shared -o a109.dll
//
// Documents cross the boundary as snapshots (see flightdoc.WriteSnapshot)
// and file sets as bundles (see a109.WriteBundle).
package main

/*
#include <stdlib.h>
#include <stdint.h>

// A109Result carries the bytes or the error of one call.
typedef struct {
    char* data;
    int   data_len;
    char* error;
} A109Result;
*/
import "C"

import (
	"bytes"
	"time"
	"unsafe"

	"github.com/logicossoftware/go-a109"
	"github.com/logicossoftware/go-a109/flightdoc"
	"github.com/logicossoftware/go-a109/merge"
)

func main() {}

// A109FreeResult frees memory allocated by other A109 functions.
// Must be called to avoid memory leaks.
//
//export A109FreeResult
func A109FreeResult(result C.A109Result) {
	if result.data != nil {
		C.free(unsafe.Pointer(result.data))
	}
	if result.error != nil {
		C.free(unsafe.Pointer(result.error))
	}
}

// A109FreeString frees a C string allocated by Go.
//
//export A109FreeString
func A109FreeString(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

func makeResult(data []byte) C.A109Result {
	var result C.A109Result
	if len(data) > 0 {
		result.data = (*C.char)(C.CBytes(data))
		result.data_len = C.int(len(data))
	}
	return result
}

func makeError(err error) C.A109Result {
	var result C.A109Result
	result.error = C.CString(err.Error())
	return result
}

func snapshotResult(doc *flightdoc.Document) C.A109Result {
	var buf bytes.Buffer
	if err := flightdoc.WriteSnapshot(&buf, doc); err != nil {
		return makeError(err)
	}
	return makeResult(buf.Bytes())
}

func readSnapshot(data *C.char, dataLen C.int) (*flightdoc.Document, error) {
	return flightdoc.ReadSnapshot(bytes.NewReader(C.GoBytes(unsafe.Pointer(data), dataLen)))
}

func readBundle(data *C.char, dataLen C.int) (map[string][]byte, error) {
	return a109.ReadBundle(bytes.NewReader(C.GoBytes(unsafe.Pointer(data), dataLen)))
}

// A109Encode exports a document snapshot as an A109 bundle.
// Parameters:
//   - snapshot: pointer to snapshot bytes
//   - snapshotLen: length of the snapshot
//   - year, month, day: export date written to CARACTER.P01 and PILOTE.HD
//   - compression: bundle packing (0=tar, 1=ZIP, 2=ZSTD, 3=LZ4, 4=Brotli)
//
// Returns A109Result with bundle bytes or error. Call A109FreeResult when done.
//
//export A109Encode
func A109Encode(snapshot *C.char, snapshotLen C.int, year, month, day C.int, compression C.uint8_t) C.A109Result {
	doc, err := readSnapshot(snapshot, snapshotLen)
	if err != nil {
		return makeError(err)
	}
	if err := doc.Validate(); err != nil {
		return makeError(err)
	}
	date := time.Date(int(year), time.Month(month), int(day), 0, 0, 0, 0, time.UTC)
	fs := a109.Encode(doc, date)

	var buf bytes.Buffer
	if err := a109.WriteBundle(&buf, fs, a109.Compression(compression)); err != nil {
		return makeError(err)
	}
	return makeResult(buf.Bytes())
}

// A109Decode decodes an A109 bundle into a document snapshot.
//
// Returns A109Result with snapshot bytes or error. Call A109FreeResult when done.
//
//export A109Decode
func A109Decode(data *C.char, dataLen C.int) C.A109Result {
	files, err := readBundle(data, dataLen)
	if err != nil {
		return makeError(err)
	}
	doc, err := a109.DecodeFileSet(files, a109.DecodeContext{})
	if err != nil {
		return makeError(err)
	}
	return snapshotResult(doc)
}

// A109Merge merges the incoming snapshot into the base snapshot.
//
// Returns A109Result with the merged snapshot or error. Call A109FreeResult
// when done.
//
//export A109Merge
func A109Merge(base *C.char, baseLen C.int, incoming *C.char, incomingLen C.int) C.A109Result {
	b, err := readSnapshot(base, baseLen)
	if err != nil {
		return makeError(err)
	}
	in, err := readSnapshot(incoming, incomingLen)
	if err != nil {
		return makeError(err)
	}
	return snapshotResult(merge.Merge(b, in))
}

// A109Validate checks the checksums and lengths recorded in a bundle's
// control files. Returns NULL on success, or an error message string on
// failure. Call A109FreeString on the result if non-NULL.
//
//export A109Validate
func A109Validate(data *C.char, dataLen C.int) *C.char {
	files, err := readBundle(data, dataLen)
	if err != nil {
		return C.CString(err.Error())
	}
	fs, err := a109.NewFileSet(files)
	if err != nil {
		return C.CString(err.Error())
	}
	if err := fs.Verify(); err != nil {
		return C.CString(err.Error())
	}
	return nil
}

// A109GetRouteCount returns the number of routes in a document snapshot.
// Returns -1 on error.
//
//export A109GetRouteCount
func A109GetRouteCount(snapshot *C.char, snapshotLen C.int) C.int {
	doc, err := readSnapshot(snapshot, snapshotLen)
	if err != nil {
		return -1
	}
	return C.int(len(doc.Routes))
}
