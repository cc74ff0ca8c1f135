package a109

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CARACTER.P01 layout (116 bytes):
//
//	0-3     magic 55 AA 55 AA
//	4-11    "DTD{day}{month:02}{year}", six-bit; low 2 bits of byte 7 = 10
//	12-13   packed date: (day<<3)|(month0>>1), ((month0&1)<<7)|(year-2000)&0x1F
//	14      0x40
//	16,28,40,52  sentinel 0x80
//	68,80,92,104 checksums of WAYPOINT, AIRPORT, NAVAID and ROUTE
var caracterMagic = [4]byte{0x55, 0xAA, 0x55, 0xAA}

const (
	caracterDateOff   = 4
	caracterDateLen   = 8
	caracterPackedOff = 12
	caracterFlagOff   = 14
	caracterFlag      = 0x40
	caracterSentinel  = 0x80
	caracterYearBase  = 2000

	piloteDateLen = 12
)

var caracterSentinelOffsets = []int{16, 28, 40, 52}

// checksumSlots gives the CARACTER.P01 offset of each table's checksum.
var checksumSlots = []struct {
	Type   FileType
	Offset int
}{
	{FileWaypoint, 68},
	{FileAirport, 80},
	{FileNavaid, 92},
	{FileRoute, 104},
}

// piloteLengthOrder is the order of the file lengths in PILOTE.HD.
var piloteLengthOrder = []FileType{FileAirport, FileNavaid, FileWaypoint, FileRoute, FileCaracter}

func caracterDateText(date time.Time) string {
	return fmt.Sprintf("DTD%d%02d%d", date.Day(), int(date.Month()), date.Year())
}

// BuildCaracter builds CARACTER.P01 for the given date and table files.
// Missing tables contribute a zero checksum.
func BuildCaracter(date time.Time, fs *FileSet) []byte {
	b := make([]byte, CaracterFileSize)
	copy(b, caracterMagic[:])

	putText(b[caracterDateOff:caracterDateOff+caracterDateLen], caracterDateText(date), TextCapacity(caracterDateLen))
	b[7] = b[7]&^0x03 | 0x02

	day, month0 := date.Day(), int(date.Month())-1
	b[caracterPackedOff] = byte(day<<3 | month0>>1)
	b[caracterPackedOff+1] = byte((month0&1)<<7 | (date.Year()-caracterYearBase)&0x1F)
	b[caracterFlagOff] = caracterFlag
	for _, off := range caracterSentinelOffsets {
		b[off] = caracterSentinel
	}
	for _, s := range checksumSlots {
		ComputeChecksum(fs.File(s.Type)).put(b[s.Offset:])
	}
	return b
}

// Control is the decoded content of CARACTER.P01.
type Control struct {
	DateText  string
	Day       int
	Month     time.Month
	Year      int
	Checksums map[FileType]Checksum
}

// ParseCaracter decodes CARACTER.P01.
func ParseCaracter(b []byte) (Control, error) {
	if len(b) != CaracterFileSize {
		return Control{}, &FileError{Name: FileCaracter.FileName(), Err: fmt.Errorf("%w: %d bytes", ErrInvalidLength, len(b))}
	}
	if [4]byte(b[0:4]) != caracterMagic {
		return Control{}, &FileError{Name: FileCaracter.FileName(), Err: fmt.Errorf("%w: bad magic", ErrUnrecognizedFileType)}
	}
	p0, p1 := b[caracterPackedOff], b[caracterPackedOff+1]
	c := Control{
		DateText:  DecodeText(b[caracterDateOff : caracterDateOff+caracterDateLen]),
		Day:       int(p0 >> 3),
		Month:     time.Month(int(p0&0x07)<<1 | int(p1>>7) + 1),
		Year:      caracterYearBase + int(p1&0x1F),
		Checksums: make(map[FileType]Checksum, len(checksumSlots)),
	}
	for _, s := range checksumSlots {
		c.Checksums[s.Type] = readChecksum(b[s.Offset:])
	}
	return c, nil
}

// BuildPilote builds PILOTE.HD: a space-padded DD/MM/YYYY date followed by
// eight big-endian int32 values: year, month, day and the lengths of the
// airport, navaid, waypoint, route and caracter files.
func BuildPilote(date time.Time, fs *FileSet) []byte {
	b := make([]byte, PiloteFileSize)
	ds := fmt.Sprintf("%02d/%02d/%04d", date.Day(), int(date.Month()), date.Year())
	copy(b, fmt.Sprintf("%-*s", piloteDateLen, ds))

	vals := []int{date.Year(), int(date.Month()), date.Day()}
	for _, t := range piloteLengthOrder {
		vals = append(vals, len(fs.File(t)))
	}
	for i, v := range vals {
		binary.BigEndian.PutUint32(b[piloteDateLen+4*i:], uint32(int32(v)))
	}
	return b
}

// Pilote is the decoded content of PILOTE.HD.
type Pilote struct {
	DateText string
	Year     int
	Month    time.Month
	Day      int
	Lengths  map[FileType]int
}

// Date returns the export date, or the zero time if the stored fields do
// not form a valid date.
func (p Pilote) Date() time.Time {
	d := time.Date(p.Year, p.Month, p.Day, 0, 0, 0, 0, time.UTC)
	if d.Year() != p.Year || d.Month() != p.Month || d.Day() != p.Day {
		return time.Time{}
	}
	return d
}

// ParsePilote decodes PILOTE.HD.
func ParsePilote(b []byte) (Pilote, error) {
	if len(b) != PiloteFileSize {
		return Pilote{}, &FileError{Name: FilePilote.FileName(), Err: fmt.Errorf("%w: %d bytes", ErrInvalidLength, len(b))}
	}
	val := func(i int) int {
		return int(int32(binary.BigEndian.Uint32(b[piloteDateLen+4*i:])))
	}
	p := Pilote{
		DateText: strings.TrimRight(string(b[:piloteDateLen]), " \x00"),
		Year:     val(0),
		Month:    time.Month(val(1)),
		Day:      val(2),
		Lengths:  make(map[FileType]int, len(piloteLengthOrder)),
	}
	for i, t := range piloteLengthOrder {
		p.Lengths[t] = val(3 + i)
	}
	return p, nil
}

// Verify recomputes the checksums stored in CARACTER.P01 and the lengths
// stored in PILOTE.HD and reports every mismatch. Each reported error is a
// *ChecksumError; missing control files yield ErrMissingFile.
func (fs *FileSet) Verify() error {
	var errs []error
	if fs.Caracter == nil {
		errs = append(errs, &FileError{Name: FileCaracter.FileName(), Err: ErrMissingFile})
	} else if c, err := ParseCaracter(fs.Caracter); err != nil {
		errs = append(errs, err)
	} else {
		for _, s := range checksumSlots {
			if got := ComputeChecksum(fs.File(s.Type)); got != c.Checksums[s.Type] {
				errs = append(errs, &ChecksumError{Type: s.Type, Stored: c.Checksums[s.Type].String(), Actual: got.String()})
			}
		}
	}

	if fs.Pilote == nil {
		errs = append(errs, &FileError{Name: FilePilote.FileName(), Err: ErrMissingFile})
	} else if p, err := ParsePilote(fs.Pilote); err != nil {
		errs = append(errs, err)
	} else {
		for _, t := range piloteLengthOrder {
			if got := len(fs.File(t)); got != p.Lengths[t] {
				errs = append(errs, &ChecksumError{Type: t, Stored: strconv.Itoa(p.Lengths[t]), Actual: strconv.Itoa(got)})
			}
		}
	}
	return errors.Join(errs...)
}
