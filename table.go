package a109

// presenceHeader builds the 16-byte header that precedes every P01 table.
// Bytes 0-12 are an MSB-first bitmap of the occupied slots (records are
// always packed from slot 0), byte 13 encodes the count (128 when full,
// otherwise 129+count), byte 14 is count*2 and byte 15 is zero.
func presenceHeader(count int) [tableHeaderSize]byte {
	var h [tableHeaderSize]byte
	count = max(0, min(count, TableCapacity))
	for i := range count {
		h[i/8] |= 0x80 >> (i % 8)
	}
	if count == TableCapacity {
		h[13] = 128
	} else {
		h[13] = byte(129 + count)
	}
	h[14] = byte(count * 2)
	return h
}

// headerCount recovers the record count from a presence header. ok is
// false when byte 13 holds neither form.
func headerCount(h []byte) (n int, ok bool) {
	if len(h) < tableHeaderSize {
		return 0, false
	}
	switch b := h[13]; {
	case b == 128:
		return TableCapacity, true
	case b >= 129 && int(b)-129 < TableCapacity:
		return int(b) - 129, true
	default:
		return 0, false
	}
}

// newTable allocates a zeroed table of n records of recordSize bytes and
// writes its presence header.
func newTable(recordSize, n int) []byte {
	buf := make([]byte, tableHeaderSize+TableCapacity*recordSize+tableTrailerSize)
	h := presenceHeader(n)
	copy(buf, h[:])
	return buf
}

// tableRecord returns slot i of a table, or nil if the buffer is too short
// to hold it.
func tableRecord(buf []byte, recordSize, i int) []byte {
	off := tableHeaderSize + i*recordSize
	if off+recordSize > len(buf) {
		return nil
	}
	return buf[off : off+recordSize]
}

// tableSlots returns how many record slots buf can hold, capped at the
// table capacity.
func tableSlots(buf []byte, recordSize int) int {
	if len(buf) < tableHeaderSize {
		return 0
	}
	return min(TableCapacity, (len(buf)-tableHeaderSize)/recordSize)
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
