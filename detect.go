package a109

import (
	"fmt"
	"maps"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

var fileKeywords = []struct {
	Keyword string
	Type    FileType
}{
	{"WAYPOINT", FileWaypoint},
	{"AIRPORT", FileAirport},
	{"NAVAID", FileNavaid},
	{"ROUTE", FileRoute},
	{"CARACTER", FileCaracter},
	{"PILOTE", FilePilote},
}

// DetectFileType works out what an A109 file holds. The file name is tried
// first: a base name containing AIRPORT, NAVAID, WAYPOINT, ROUTE, CARACTER
// or PILOTE decides. Otherwise the size decides:
//   - the canonical size of a file type
//   - a payload (size less the 16-byte header, with or without the 4-byte
//     trailer) that is a multiple of 40 is an airport table, or a navaid
//     table if byte 16 is the navaid marker
//   - a multiple of 28 is a waypoint table
//   - a multiple of 500 is a route table
//
// When neither test is conclusive a *FileError wrapping
// ErrUnrecognizedFileType is returned.
func DetectFileType(name string, data []byte) (FileType, error) {
	base := strings.ToUpper(path.Base(filepath.ToSlash(name)))
	for _, k := range fileKeywords {
		if strings.Contains(base, k.Keyword) {
			return k.Type, nil
		}
	}
	if t := typeFromSize(data); t != FileUnknown {
		return t, nil
	}
	return FileUnknown, &FileError{Name: name, Err: fmt.Errorf("%w: %d bytes", ErrUnrecognizedFileType, len(data))}
}

func typeFromSize(data []byte) FileType {
	airportOrNavaid := func() FileType {
		if len(data) > tableHeaderSize && data[tableHeaderSize] == navaidMarker {
			return FileNavaid
		}
		return FileAirport
	}

	switch len(data) {
	case AirportFileSize:
		return airportOrNavaid()
	case WaypointFileSize:
		return FileWaypoint
	case RouteFileSize:
		return FileRoute
	case CaracterFileSize:
		if [4]byte(data[:4]) == caracterMagic {
			return FileCaracter
		}
	case PiloteFileSize:
		return FilePilote
	}

	for _, trailer := range []int{0, tableTrailerSize} {
		payload := len(data) - tableHeaderSize - trailer
		if payload <= 0 {
			continue
		}
		switch {
		case payload%airportRecordSize == 0:
			return airportOrNavaid()
		case payload%waypointRecordSize == 0:
			return FileWaypoint
		case payload%routeRecordSize == 0:
			return FileRoute
		}
	}
	return FileUnknown
}

// NewFileSet sorts named buffers into a FileSet by DetectFileType. Two
// buffers of the same type, or one of unknown type, are an error.
func NewFileSet(files map[string][]byte) (*FileSet, error) {
	fs := &FileSet{}
	seen := make(map[FileType]string, len(files))
	for _, name := range slices.Sorted(maps.Keys(files)) {
		t, err := DetectFileType(name, files[name])
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[t]; dup {
			return nil, &FileError{Name: name, Err: fmt.Errorf("%w: second %s file after %s", ErrInvalidBundle, t, prev)}
		}
		seen[t] = name
		fs.set(t, files[name])
	}
	return fs, nil
}
