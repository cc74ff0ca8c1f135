package a109

import (
	"github.com/logicossoftware/go-a109/flightdoc"
)

// Airport record layout (40 bytes):
//
//	0-3   id, six-bit
//	4-11  name, six-bit
//	12-15 opaque
//	16-19 usage
//	20-23 latitude
//	24-27 longitude
//	28-31 opaque runway data
//	32-35 magnetic variation
//	36-39 elevation
const (
	airportIDOff     = 0
	airportNameOff   = 4
	airportHeaderOff = 12
	airportUsageOff  = 16
	airportLatOff    = 20
	airportLonOff    = 24
	airportRunwayOff = 28
	airportMagVarOff = 32
	airportElevOff   = 36

	recordNameLen = 8
)

// airportUsageByte is the value of byte 17 derived from the number of
// exported routes using the airport.
func airportUsageByte(uses int) byte {
	switch {
	case uses <= 0:
		return 6
	case uses == 1:
		return 14
	default:
		return 30
	}
}

// derivedUsage reports whether a usage field has exactly the form written by
// airportUsageByte, in which case it is recomputed on the next export
// rather than preserved.
func derivedUsage(u []byte) bool {
	if u[0] != 0 || u[2] != 0 || u[3] != 0 {
		return false
	}
	switch u[1] {
	case 6, 14, 30:
		return true
	}
	return false
}

func encodeAirport(rec []byte, a flightdoc.Airport, uses int) {
	putText(rec[airportIDOff:airportIDOff+4], a.ID, flightdoc.MaxUserIDLen)
	putText(rec[airportNameOff:airportNameOff+recordNameLen], a.Name, TextCapacity(recordNameLen))
	putBlob(rec[airportHeaderOff:airportHeaderOff+4], a.Blobs.Header)
	if a.Blobs.Usage != nil {
		putBlob(rec[airportUsageOff:airportUsageOff+4], a.Blobs.Usage)
	} else {
		clear(rec[airportUsageOff : airportUsageOff+4])
		rec[airportUsageOff+1] = airportUsageByte(uses)
	}
	putFloat(rec[airportLatOff:], a.Location.Lat)
	putFloat(rec[airportLonOff:], a.Location.Lon)
	putBlob(rec[airportRunwayOff:airportRunwayOff+4], a.Blobs.Runway)
	putFloat(rec[airportMagVarOff:], a.MagVar)
	putFloat(rec[airportElevOff:], a.Elevation)
}

// EncodeAirports builds AIRPORT.P01. uses gives the route usage count of
// each airport by index; a nil slice means no airport is used. Airports
// beyond the table capacity are ignored.
func EncodeAirports(airports []flightdoc.Airport, uses []int) []byte {
	n := min(len(airports), TableCapacity)
	buf := newTable(airportRecordSize, n)
	for i := range n {
		u := 0
		if i < len(uses) {
			u = uses[i]
		}
		encodeAirport(tableRecord(buf, airportRecordSize, i), airports[i], u)
	}
	return buf
}

func decodeAirport(rec []byte) (flightdoc.Airport, string) {
	a := flightdoc.Airport{
		ID:   DecodeText(rec[airportIDOff : airportIDOff+4]),
		Name: DecodeText(rec[airportNameOff : airportNameOff+recordNameLen]),
		Location: flightdoc.Point{
			Lat: getFloat(rec[airportLatOff:]),
			Lon: getFloat(rec[airportLonOff:]),
		},
		MagVar:    getFloat(rec[airportMagVarOff:]),
		Elevation: getFloat(rec[airportElevOff:]),
		Blobs: flightdoc.AirportBlobs{
			Header: getBlob(rec[airportHeaderOff : airportHeaderOff+4]),
			Runway: getBlob(rec[airportRunwayOff : airportRunwayOff+4]),
		},
	}
	if u := rec[airportUsageOff : airportUsageOff+4]; !derivedUsage(u) {
		a.Blobs.Usage = getBlob(u)
	}
	switch {
	case a.ID == "":
		return a, "empty id"
	case !validLocation(a.Location):
		return a, "bad coordinates " + a.Location.String()
	case !validFloat(a.MagVar) || !validFloat(a.Elevation):
		return a, "bad magnetic variation or elevation"
	}
	return a, ""
}
