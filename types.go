package a109

import "fmt"

// TableCapacity is the number of record slots in every P01 table.
const TableCapacity = 100

const (
	tableHeaderSize  = 16
	tableTrailerSize = 4

	airportRecordSize  = 40
	navaidRecordSize   = 40
	waypointRecordSize = 28
	routeRecordSize    = 500
)

// Exact sizes of the files in an A109 set.
const (
	AirportFileSize  = tableHeaderSize + TableCapacity*airportRecordSize + tableTrailerSize  // 4020
	NavaidFileSize   = tableHeaderSize + TableCapacity*navaidRecordSize + tableTrailerSize   // 4020
	WaypointFileSize = tableHeaderSize + TableCapacity*waypointRecordSize + tableTrailerSize // 2820
	RouteFileSize    = tableHeaderSize + TableCapacity*routeRecordSize + tableTrailerSize    // 50020
	CaracterFileSize = 116
	PiloteFileSize   = piloteDateLen + 8*4 // 44
)

type FileType uint8

const (
	FileUnknown FileType = iota
	FileAirport
	FileNavaid
	FileWaypoint
	FileRoute
	FileCaracter
	FilePilote
)

// FileTypes lists the file types of a complete set in the order they are
// written to bundles.
var FileTypes = []FileType{FilePilote, FileAirport, FileNavaid, FileWaypoint, FileRoute, FileCaracter}

// FileName returns the canonical name of the file on the A109 media.
func (t FileType) FileName() string {
	switch t {
	case FileAirport:
		return "AIRPORT.P01"
	case FileNavaid:
		return "NAVAID.P01"
	case FileWaypoint:
		return "WAYPOINT.P01"
	case FileRoute:
		return "ROUTE.P01"
	case FileCaracter:
		return "CARACTER.P01"
	case FilePilote:
		return "PILOTE.HD"
	default:
		return ""
	}
}

// Size returns the exact byte length of a file of this type.
func (t FileType) Size() int {
	switch t {
	case FileAirport:
		return AirportFileSize
	case FileNavaid:
		return NavaidFileSize
	case FileWaypoint:
		return WaypointFileSize
	case FileRoute:
		return RouteFileSize
	case FileCaracter:
		return CaracterFileSize
	case FilePilote:
		return PiloteFileSize
	default:
		return 0
	}
}

func (t FileType) String() string {
	switch t {
	case FileAirport:
		return "airport"
	case FileNavaid:
		return "navaid"
	case FileWaypoint:
		return "waypoint"
	case FileRoute:
		return "route"
	case FileCaracter:
		return "caracter"
	case FilePilote:
		return "pilote"
	default:
		return fmt.Sprintf("FileType(%d)", uint8(t))
	}
}

// FileSet is a complete A109 export: six named buffers.
type FileSet struct {
	Pilote    []byte
	Airports  []byte
	Navaids   []byte
	Waypoints []byte
	Routes    []byte
	Caracter  []byte

	// Warnings collects non-fatal problems found while encoding, such as
	// tables that had to be truncated.
	Warnings []error
}

// File returns the buffer for the given type.
func (fs *FileSet) File(t FileType) []byte {
	switch t {
	case FileAirport:
		return fs.Airports
	case FileNavaid:
		return fs.Navaids
	case FileWaypoint:
		return fs.Waypoints
	case FileRoute:
		return fs.Routes
	case FileCaracter:
		return fs.Caracter
	case FilePilote:
		return fs.Pilote
	default:
		return nil
	}
}

func (fs *FileSet) set(t FileType, b []byte) {
	switch t {
	case FileAirport:
		fs.Airports = b
	case FileNavaid:
		fs.Navaids = b
	case FileWaypoint:
		fs.Waypoints = b
	case FileRoute:
		fs.Routes = b
	case FileCaracter:
		fs.Caracter = b
	case FilePilote:
		fs.Pilote = b
	}
}

// Files returns the set keyed by canonical file name, the form taken by
// DecodeFileSet.
func (fs *FileSet) Files() map[string][]byte {
	m := make(map[string][]byte, len(FileTypes))
	for _, t := range FileTypes {
		if b := fs.File(t); b != nil {
			m[t.FileName()] = b
		}
	}
	return m
}
