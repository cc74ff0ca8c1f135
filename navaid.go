package a109

import (
	"github.com/logicossoftware/go-a109/flightdoc"
)

// Navaid record layout (40 bytes). Byte 0 is always navaidMarker, which is
// how a navaid table is told apart from an airport table. Note that
// longitude precedes latitude.
//
//	0     marker
//	2     usage flag
//	4-7   id, six-bit
//	8-15  name, six-bit
//	20-23 frequency
//	24-27 longitude
//	28-31 latitude
//	32-35 magnetic variation
//	36-39 elevation
const (
	navaidMarker = 0xE0

	navaidUsageOff  = 2
	navaidIDOff     = 4
	navaidNameOff   = 8
	navaidFreqOff   = 20
	navaidLonOff    = 24
	navaidLatOff    = 28
	navaidMagVarOff = 32
	navaidElevOff   = 36
)

func navaidUsageFlag(uses int) byte {
	switch {
	case uses <= 0:
		return 0x30
	case uses == 1:
		return 0x70
	default:
		return 0xF0
	}
}

func encodeNavaid(rec []byte, n flightdoc.Navaid, uses int) {
	rec[0] = navaidMarker
	rec[navaidUsageOff] = navaidUsageFlag(uses)
	putText(rec[navaidIDOff:navaidIDOff+4], n.ID, flightdoc.MaxUserIDLen)
	putText(rec[navaidNameOff:navaidNameOff+recordNameLen], n.Name, TextCapacity(recordNameLen))
	putFloat(rec[navaidFreqOff:], n.Frequency)
	putFloat(rec[navaidLonOff:], n.Location.Lon)
	putFloat(rec[navaidLatOff:], n.Location.Lat)
	putFloat(rec[navaidMagVarOff:], n.MagVar)
	putFloat(rec[navaidElevOff:], n.Elevation)
}

// EncodeNavaids builds NAVAID.P01. uses gives the route usage count of each
// navaid by index.
func EncodeNavaids(navaids []flightdoc.Navaid, uses []int) []byte {
	n := min(len(navaids), TableCapacity)
	buf := newTable(navaidRecordSize, n)
	for i := range n {
		u := 0
		if i < len(uses) {
			u = uses[i]
		}
		encodeNavaid(tableRecord(buf, navaidRecordSize, i), navaids[i], u)
	}
	return buf
}

func decodeNavaid(rec []byte) (flightdoc.Navaid, string) {
	n := flightdoc.Navaid{
		ID:   DecodeText(rec[navaidIDOff : navaidIDOff+4]),
		Name: DecodeText(rec[navaidNameOff : navaidNameOff+recordNameLen]),
		Location: flightdoc.Point{
			Lat: getFloat(rec[navaidLatOff:]),
			Lon: getFloat(rec[navaidLonOff:]),
		},
		Frequency: getFloat(rec[navaidFreqOff:]),
		MagVar:    getFloat(rec[navaidMagVarOff:]),
		Elevation: getFloat(rec[navaidElevOff:]),
	}
	switch {
	case rec[0] != navaidMarker:
		return n, "missing navaid marker"
	case n.ID == "":
		return n, "empty id"
	case !validLocation(n.Location):
		return n, "bad coordinates " + n.Location.String()
	case !validFloat(n.Frequency) || !validFloat(n.MagVar) || !validFloat(n.Elevation):
		return n, "bad frequency, magnetic variation or elevation"
	}
	return n, ""
}
