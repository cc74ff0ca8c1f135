package a109

import (
	"errors"
	"fmt"
)

var (
	ErrUnrecognizedFileType = errors.New("a109: unrecognized file type")
	ErrTableTruncated       = errors.New("a109: table truncated")
	ErrInvalidLength        = errors.New("a109: invalid file length")
	ErrInvalidRecord        = errors.New("a109: invalid record")
	ErrChecksumMismatch     = errors.New("a109: checksum mismatch")
	ErrMissingFile          = errors.New("a109: missing file")
	ErrInvalidBundle        = errors.New("a109: invalid bundle")
	ErrLimitExceeded        = errors.New("a109: limit exceeded")
)

// FileError ties a whole-file problem to the file it was found in.
type FileError struct {
	Name string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// TruncationWarning reports entities dropped because a table or a route
// was over capacity. Route is set when a single route had too many points.
type TruncationWarning struct {
	Type     FileType
	Route    string
	Count    int
	Capacity int
}

func (w *TruncationWarning) Error() string {
	if w.Route != "" {
		return fmt.Sprintf("%v: route %s has %d points, only %d exported", ErrTableTruncated, w.Route, w.Count, w.Capacity)
	}
	return fmt.Sprintf("%v: %d %s entries, only %d exported", ErrTableTruncated, w.Count, w.Type, w.Capacity)
}

func (w *TruncationWarning) Unwrap() error { return ErrTableTruncated }

// RecordError describes a single record that was skipped during decode.
type RecordError struct {
	Type   FileType
	Slot   int
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%v: %s slot %d: %s", ErrInvalidRecord, e.Type, e.Slot, e.Reason)
}

func (e *RecordError) Unwrap() error { return ErrInvalidRecord }

// ChecksumError is returned by FileSet.Verify when a stored checksum or
// length does not match the data.
type ChecksumError struct {
	Type   FileType
	Stored string
	Actual string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%v: %s stored %s, computed %s", ErrChecksumMismatch, e.Type.FileName(), e.Stored, e.Actual)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }
