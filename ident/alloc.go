package ident

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"slices"
	"strconv"
	"strings"

	"github.com/MichaelTJones/pcg"
	"github.com/logicossoftware/go-a109/flightdoc"
)

const (
	maxSerial = 99

	// disambiguators are tried, in order, as a single appended character.
	disambiguators = "23456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	tokenAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenLen       = 5
)

// Serial formats the id of a managed waypoint type, e.g. WPT07.
func Serial(t flightdoc.WaypointType, n int) string {
	return fmt.Sprintf("%s%02d", t.Prefix(), n)
}

// NextAvailable returns the lowest unused {prefix}{NN} id for a managed
// waypoint type. Once all 99 serials are taken, or for Custom, it falls
// back to MakeUnique.
func NextAvailable(t flightdoc.WaypointType, used map[string]bool) string {
	if !t.Managed() {
		return MakeUnique("", used)
	}
	for n := 1; n <= maxSerial; n++ {
		if id := Serial(t, n); !used[id] {
			return id
		}
	}
	return MakeUnique(Serial(t, maxSerial), used)
}

// MakeUnique returns an identifier of at most 5 characters, derived from
// preferred, that is not in used. See MakeUniqueN.
func MakeUnique(preferred string, used map[string]bool) string {
	return MakeUniqueN(preferred, used, flightdoc.MaxUserIDLen)
}

// MakeUniqueN returns an identifier of at most maxLen characters that is
// not in used. Readable candidates are tried before random ones:
//  1. preferred itself (sanitized to the identifier alphabet)
//  2. preferred truncated to maxLen
//  3. for a numeric suffix, the suffix incremented with its width kept,
//     while the result fits
//  4. the truncated base plus one of 2-9, A-Z
//  5. a random 5-character token
//
// The result depends only on the arguments.
func MakeUniqueN(preferred string, used map[string]bool, maxLen int) string {
	maxLen = max(maxLen, 1)
	s := flightdoc.SanitizeID(preferred, 0)
	if s != "" && len(s) <= maxLen && !used[s] {
		return s
	}

	t := s
	if len(t) > maxLen {
		t = t[:maxLen]
		if !used[t] {
			return t
		}
	}

	if base, digits, ok := numericSuffix(t); ok {
		n, err := strconv.Atoi(digits)
		for err == nil {
			n++
			c := fmt.Sprintf("%s%0*d", base, len(digits), n)
			if len(c) > maxLen {
				break
			}
			if !used[c] {
				return c
			}
		}
	}

	base := t
	if len(base) >= maxLen {
		base = base[:maxLen-1]
	}
	for i := range len(disambiguators) {
		if c := base + disambiguators[i:i+1]; !used[c] {
			return c
		}
	}

	return randomToken(preferred, used, min(tokenLen, maxLen))
}

// numericSuffix splits s into a base and its trailing digits.
func numericSuffix(s string) (base, digits string, ok bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return "", "", false
	}
	return s[:i], s[i:], true
}

// randomToken draws tokens from a generator seeded by the inputs until one
// is not in used.
func randomToken(preferred string, used map[string]bool, n int) string {
	h := fnv.New64a()
	h.Write([]byte(preferred))
	keys := make([]string, 0, len(used))
	for k, v := range used {
		if v {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k))
	}
	var nb [8]byte
	binary.BigEndian.PutUint64(nb[:], uint64(n))
	h.Write(nb[:])

	r := pcg.NewPCG32()
	r.Seed(h.Sum64(), 0xda3e39cb94b95bdb)
	var sb strings.Builder
	for {
		sb.Reset()
		for range n {
			sb.WriteByte(tokenAlphabet[r.Bounded(uint32(len(tokenAlphabet)))])
		}
		if c := sb.String(); !used[c] {
			return c
		}
	}
}

// AllocateID returns an id for a new waypoint of type t. Managed types get
// the next free serial and ignore preferred; Custom waypoints keep
// preferred when possible.
func AllocateID(t flightdoc.WaypointType, preferred string, used map[string]bool) string {
	if t.Managed() {
		return NextAvailable(t, used)
	}
	return MakeUnique(preferred, used)
}
