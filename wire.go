package a109

import (
	"encoding/binary"
	"math"

	"github.com/logicossoftware/go-a109/flightdoc"
)

// All multi-byte fields are big-endian.

func putFloat(b []byte, v float32) {
	binary.BigEndian.PutUint32(b, math.Float32bits(v))
}

func getFloat(b []byte) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(b))
}

// putBlob copies an opaque field into its slot. Short blobs are
// zero-extended, long ones truncated.
func putBlob(dst, blob []byte) {
	clear(dst)
	copy(dst, blob)
}

// getBlob returns a copy of an opaque field, or nil if it is all zero.
func getBlob(b []byte) []byte {
	if allZero(b) {
		return nil
	}
	return append([]byte(nil), b...)
}

func validFloat(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// validLocation rejects coordinates that cannot belong to a real point.
func validLocation(p flightdoc.Point) bool {
	return validFloat(p.Lat) && validFloat(p.Lon) &&
		p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}
