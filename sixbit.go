package a109

import (
	"encoding/binary"
	"strings"

	"github.com/logicossoftware/go-a109/flightdoc"
)

// Six-bit character codes. Code 0 terminates a string.
const (
	codeHyphen  = 11
	codeDigit0  = 14
	codeLetterA = 30

	charsPerWord = 5
)

var wordShifts = [charsPerWord]uint{26, 20, 14, 8, 2}

func charCode(c byte) uint32 {
	switch {
	case c == '-':
		return codeHyphen
	case c >= '0' && c <= '9':
		return codeDigit0 + uint32(c-'0')
	case c >= 'A' && c <= 'Z':
		return codeLetterA + uint32(c-'A')
	default:
		return 0
	}
}

func codeChar(code uint32) byte {
	switch {
	case code == codeHyphen:
		return '-'
	case code >= codeDigit0 && code < codeDigit0+10:
		return '0' + byte(code-codeDigit0)
	case code >= codeLetterA && code < codeLetterA+26:
		return 'A' + byte(code-codeLetterA)
	default:
		return ' '
	}
}

// TextCapacity returns how many characters fit in a field of n bytes.
func TextCapacity(n int) int {
	return (n / 4) * charsPerWord
}

// EncodeText packs text into totalBytes bytes of six-bit codes, five per
// big-endian 32-bit word. The text is uppercased, characters outside the
// alphabet are dropped and the result is truncated to maxChars (and to
// what the field can hold). Unused codes are zero.
func EncodeText(text string, maxChars, totalBytes int) []byte {
	out := make([]byte, totalBytes)
	putText(out, text, maxChars)
	return out
}

// putText is EncodeText writing into an existing field.
func putText(dst []byte, text string, maxChars int) {
	clear(dst)
	limit := min(maxChars, TextCapacity(len(dst)))
	if limit <= 0 {
		return
	}
	s := flightdoc.SanitizeID(text, limit)
	for w := 0; w*charsPerWord < len(s); w++ {
		var v uint32
		for i := range charsPerWord {
			if k := w*charsPerWord + i; k < len(s) {
				v |= charCode(s[k]) << wordShifts[i]
			}
		}
		binary.BigEndian.PutUint32(dst[w*4:], v)
	}
}

// DecodeText unpacks six-bit text, stopping at the first zero code.
// Unknown codes decode as spaces; decoding never fails.
func DecodeText(b []byte) string {
	var sb strings.Builder
	for w := 0; w+4 <= len(b); w += 4 {
		v := binary.BigEndian.Uint32(b[w:])
		for _, sh := range wordShifts {
			code := (v >> sh) & 0x3F
			if code == 0 {
				return sb.String()
			}
			sb.WriteByte(codeChar(code))
		}
	}
	return sb.String()
}

// EncodeWaypointID produces the transformed 4-byte id used by waypoint
// records: the packed id read as a big-endian word v, stored as
// (v>>1)|0x80000000.
func EncodeWaypointID(id string) [4]byte {
	var raw [4]byte
	putText(raw[:], id, flightdoc.MaxUserIDLen)
	v := binary.BigEndian.Uint32(raw[:])
	binary.BigEndian.PutUint32(raw[:], (v>>1)|0x80000000)
	return raw
}

// DecodeWaypointID reverses EncodeWaypointID.
func DecodeWaypointID(b []byte) string {
	if len(b) < 4 {
		return ""
	}
	v := binary.BigEndian.Uint32(b) &^ 0x80000000
	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], v<<1)
	return DecodeText(raw[:])
}
