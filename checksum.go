package a109

import (
	"encoding/binary"
	"fmt"
)

// Checksum is the 8-byte file checksum stored in CARACTER.P01: two wrapping
// signed 32-bit sums over the file read as big-endian signed 16-bit words,
// even word indices into A and odd ones into B.
type Checksum struct {
	A, B int32
}

// ComputeChecksum sums data. A trailing odd byte is ignored.
func ComputeChecksum(data []byte) Checksum {
	var c Checksum
	for i := 0; i+2 <= len(data); i += 2 {
		w := int32(int16(binary.BigEndian.Uint16(data[i:])))
		if (i/2)%2 == 0 {
			c.A += w
		} else {
			c.B += w
		}
	}
	return c
}

func (c Checksum) put(dst []byte) {
	binary.BigEndian.PutUint32(dst[0:4], uint32(c.A))
	binary.BigEndian.PutUint32(dst[4:8], uint32(c.B))
}

func readChecksum(b []byte) Checksum {
	return Checksum{
		A: int32(binary.BigEndian.Uint32(b[0:4])),
		B: int32(binary.BigEndian.Uint32(b[4:8])),
	}
}

func (c Checksum) String() string {
	return fmt.Sprintf("%08x:%08x", uint32(c.A), uint32(c.B))
}
