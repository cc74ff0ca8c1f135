// Package a109 implements the A109 avionics route database interchange format.
//
// An A109 set is six files that together describe the user points and
// routes loaded into the flight management system:
//   - AIRPORT.P01, NAVAID.P01 and WAYPOINT.P01: fixed tables of 100 user
//     airports, navaids and waypoints
//   - ROUTE.P01: a table of 100 routes of up to 40 points each
//   - CARACTER.P01: the export date and a checksum of each table
//   - PILOTE.HD: the export date and the length of every other file
//
// Each table is a 16-byte presence header, 100 fixed-size records and a
// 4-byte trailer. Identifiers and names are packed six bits per character,
// five characters to a big-endian 32-bit word (see EncodeText). Numbers are
// big-endian; coordinates are float32.
//
// # Basic Usage
//
// To export a document:
//
//	fs := a109.Encode(doc, time.Now())
//	for _, w := range fs.Warnings {
//		log.Print(w) // tables or routes that had to be truncated
//	}
//	files := fs.Files() // keyed by AIRPORT.P01, ROUTE.P01, ...
//
// To import a set read from the media:
//
//	doc, err := a109.DecodeFileSet(files, a109.DecodeContext{
//		SystemAirports: sysAirports,
//		SystemNavaids:  sysNavaids,
//	})
//
// Decoding is lenient: records with an empty id or impossible coordinates
// are skipped, and route points that cannot be resolved are dropped. Both
// are reported to the logger given with WithDecodeLogger. The identifiers of
// the decoded entities are made unique.
//
// A set can be packed into a single archive with WriteBundle, as a zip
// file or as a tar stream compressed with Zstandard, LZ4 or Brotli, and
// read back with ReadBundle.
//
// # Security Considerations
//
// ReadBundle enforces configurable [Limits] on the archive size, the number
// of entries and the size of each entry, so that a hostile archive cannot
// exhaust memory. Entry names must be plain file names.
package a109
