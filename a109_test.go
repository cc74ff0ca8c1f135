package a109

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/logicossoftware/go-a109/flightdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

func sampleDoc() *flightdoc.Document {
	return &flightdoc.Document{
		UserAirports: []flightdoc.Airport{
			{
				ID: "ESSA", Name: "ARLANDA",
				Location:  flightdoc.Point{Lat: 59.651943, Lon: 17.918611},
				Elevation: 137, MagVar: 5.5,
				Blobs: flightdoc.AirportBlobs{Header: []byte{1, 2, 3, 4}},
			},
			{ID: "ESGG", Name: "LANDVETTER", Location: flightdoc.Point{Lat: 57.6628, Lon: 12.2798}},
		},
		UserNavaids: []flightdoc.Navaid{
			{ID: "TEB", Name: "TEBY", Location: flightdoc.Point{Lat: 59.5, Lon: 18.25}, Frequency: 113.75},
		},
		UserWaypoints: []flightdoc.Waypoint{
			{ID: "WPT01", Name: "WPT01", Type: flightdoc.WaypointWPT, Location: flightdoc.Point{Lat: 59.1, Lon: 18.1}},
			{ID: "WPT02", Name: "WPT02", Type: flightdoc.WaypointWPT, Location: flightdoc.Point{Lat: 58.2, Lon: 16.4}},
			{ID: "HOME", Name: "HOME", Location: flightdoc.Point{Lat: 58.9, Lon: 17.2}},
		},
		SystemAirports: []flightdoc.SystemAirport{{ID: "EKCH", Location: flightdoc.Point{Lat: 55.618, Lon: 12.656}}},
		Routes: []flightdoc.Route{
			{ID: "id-1", RouteID: "ONE", Name: "ONE", Points: []flightdoc.RoutePointRef{
				{Kind: flightdoc.KindSystemAirport, RefID: "EKCH"},
				{Kind: flightdoc.KindUserWaypoint, RefID: "WPT01"},
				{Kind: flightdoc.KindUserNavaid, RefID: "TEB"},
				{Kind: flightdoc.KindUserAirport, RefID: "ESSA"},
			}},
			{ID: "id-2", RouteID: "TWO", Name: "TWO", Points: []flightdoc.RoutePointRef{
				{Kind: flightdoc.KindUserAirport, RefID: "ESSA"},
				{Kind: flightdoc.KindUserWaypoint, RefID: "WPT02"},
				{Kind: flightdoc.KindUserWaypoint, RefID: "HOME"},
				{Kind: flightdoc.KindUserAirport, RefID: "ESGG"},
			}},
		},
	}
}

// stubRouteIDs makes decoded routes get id-1, id-2, ...
func stubRouteIDs(t *testing.T) {
	t.Helper()
	orig := newRouteID
	n := 0
	newRouteID = func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
	t.Cleanup(func() { newRouteID = orig })
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	stubRouteIDs(t)
	doc := sampleDoc()
	fs := Encode(doc, testDate)
	require.Empty(t, fs.Warnings)
	for _, ft := range FileTypes {
		assert.Len(t, fs.File(ft), ft.Size(), ft.FileName())
	}

	got, err := DecodeFileSet(fs.Files(), DecodeContext{SystemAirports: doc.SystemAirports})
	require.NoError(t, err)
	if !assert.Equal(t, doc, got) {
		t.Log(spew.Sdump(got))
	}
}

func TestEncodeDerivedFields(t *testing.T) {
	fs := Encode(sampleDoc(), testDate)

	// ESSA is on both routes, ESGG on one.
	assert.Equal(t, byte(30), tableRecord(fs.Airports, airportRecordSize, 0)[airportUsageOff+1], "ESSA usage")
	assert.Equal(t, byte(14), tableRecord(fs.Airports, airportRecordSize, 1)[airportUsageOff+1], "ESGG usage")
	assert.Equal(t, byte(0x70), tableRecord(fs.Navaids, navaidRecordSize, 0)[navaidUsageOff], "TEB usage")
	for i, want := range []byte{8, 16, 16} {
		assert.Equal(t, want, tableRecord(fs.Waypoints, waypointRecordSize, i)[waypointRouteOff], "waypoint %d membership", i)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	a := Encode(sampleDoc(), testDate)
	b := Encode(sampleDoc(), testDate)
	for _, ft := range FileTypes {
		assert.Equal(t, a.File(ft), b.File(ft), "%s differs between runs", ft.FileName())
	}
	assert.NoError(t, a.Verify())
}

func TestEncodeNilDocument(t *testing.T) {
	fs := Encode(nil, testDate)
	require.NoError(t, fs.Verify())
	doc, err := DecodeFileSet(fs.Files(), DecodeContext{})
	require.NoError(t, err)
	assert.Empty(t, doc.Routes)
	assert.Empty(t, doc.UserAirports)
	assert.Empty(t, doc.UserNavaids)
	assert.Empty(t, doc.UserWaypoints)
}

func TestCaracter(t *testing.T) {
	fs := Encode(sampleDoc(), testDate)
	b := fs.Caracter
	assert.Equal(t, []byte{0x55, 0xAA, 0x55, 0xAA}, b[:4], "magic")
	assert.Equal(t, byte(0x02), b[7]&0x03, "byte 7 low bits")
	// 15 March 2024: day 15, month0 2, year 24.
	assert.Equal(t, byte(15<<3|1), b[12])
	assert.Equal(t, byte(24), b[13])
	assert.Equal(t, byte(0x40), b[14], "flag")
	for _, off := range []int{16, 28, 40, 52} {
		assert.Equal(t, byte(0x80), b[off], "sentinel at %d", off)
	}

	c, err := ParseCaracter(b)
	require.NoError(t, err)
	assert.Equal(t, 15, c.Day)
	assert.Equal(t, time.March, c.Month)
	assert.Equal(t, 2024, c.Year)
	// DTD15032024 truncated to the ten characters the field holds.
	assert.Equal(t, "DTD1503202", c.DateText)
	assert.Equal(t, ComputeChecksum(fs.Routes), c.Checksums[FileRoute])

	_, err = ParseCaracter(b[:100])
	assert.ErrorIs(t, err, ErrInvalidLength)
	bad := bytes.Clone(b)
	bad[0] = 0
	_, err = ParseCaracter(bad)
	assert.ErrorIs(t, err, ErrUnrecognizedFileType)
}

func TestCaracterDateRange(t *testing.T) {
	for _, d := range []time.Time{
		time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2031, time.December, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2019, time.August, 9, 0, 0, 0, 0, time.UTC),
	} {
		c, err := ParseCaracter(BuildCaracter(d, &FileSet{}))
		require.NoError(t, err, d)
		assert.Equal(t, []any{d.Day(), d.Month(), d.Year()}, []any{c.Day, c.Month, c.Year}, d)
	}
}

func TestPilote(t *testing.T) {
	fs := Encode(sampleDoc(), testDate)
	require.Len(t, fs.Pilote, PiloteFileSize)
	p, err := ParsePilote(fs.Pilote)
	require.NoError(t, err)
	assert.Equal(t, "15/03/2024", p.DateText)
	assert.True(t, p.Date().Equal(testDate), "date = %v", p.Date())
	assert.Equal(t, map[FileType]int{
		FileAirport:  AirportFileSize,
		FileNavaid:   NavaidFileSize,
		FileWaypoint: WaypointFileSize,
		FileRoute:    RouteFileSize,
		FileCaracter: CaracterFileSize,
	}, p.Lengths)

	p.Day = 31
	p.Month = time.February
	assert.True(t, p.Date().IsZero(), "31 February accepted")
	_, err = ParsePilote(fs.Pilote[:32])
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestVerifyDetectsCorruption(t *testing.T) {
	fs := Encode(sampleDoc(), testDate)
	fs.Waypoints = bytes.Clone(fs.Waypoints)
	fs.Waypoints[100]++

	err := fs.Verify()
	require.ErrorIs(t, err, ErrChecksumMismatch)
	var ce *ChecksumError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, FileWaypoint, ce.Type)

	fs = Encode(sampleDoc(), testDate)
	fs.Routes = fs.Routes[:RouteFileSize-4]
	err = fs.Verify()
	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok, "Verify = %v", err)
	var lengthErr bool
	for _, e := range joined.Unwrap() {
		if errors.As(e, &ce) && ce.Type == FileRoute && ce.Stored == strconv.Itoa(RouteFileSize) {
			lengthErr = true
		}
	}
	assert.True(t, lengthErr, "length mismatch not reported: %v", err)

	fs = Encode(sampleDoc(), testDate)
	fs.Pilote = nil
	assert.ErrorIs(t, fs.Verify(), ErrMissingFile)
}

func TestChecksum(t *testing.T) {
	// Words 1, 2, -1 and -32768; the trailing odd byte is ignored.
	c := ComputeChecksum([]byte{0x00, 0x01, 0x00, 0x02, 0xFF, 0xFF, 0x80, 0x00, 0x7F})
	assert.Equal(t, Checksum{A: 0, B: 2 - 32768}, c)
	// Sums wrap instead of overflowing.
	big := bytes.Repeat([]byte{0x7F, 0xFF}, 2*65540)
	assert.Equal(t, int32(65540*32767-1<<32), ComputeChecksum(big).A)
	assert.Equal(t, fmt.Sprintf("%08x:%08x", uint32(c.A), uint32(c.B)), c.String())
	assert.Zero(t, ComputeChecksum(nil))
}

func TestDetectFileType(t *testing.T) {
	fs := Encode(sampleDoc(), testDate)
	byName := map[string]FileType{
		"AIRPORT.P01":          FileAirport,
		"dir/navaid.p01":       FileNavaid,
		`C:\A109\WAYPOINT.P01`: FileWaypoint,
		"my_route.bin":         FileRoute,
		"CARACTER.P01":         FileCaracter,
		"pilote.hd":            FilePilote,
	}
	for name, want := range byName {
		got, err := DetectFileType(name, nil)
		if assert.NoError(t, err, name) {
			assert.Equal(t, want, got, name)
		}
	}

	bySize := []struct {
		data []byte
		want FileType
	}{
		{fs.Airports, FileAirport},
		{fs.Navaids, FileNavaid},
		{fs.Waypoints, FileWaypoint},
		{fs.Routes, FileRoute},
		{fs.Caracter, FileCaracter},
		{fs.Pilote, FilePilote},
		{fs.Airports[:AirportFileSize-tableTrailerSize], FileAirport},
		{fs.Waypoints[:tableHeaderSize+3*waypointRecordSize], FileWaypoint},
		{fs.Routes[:tableHeaderSize+3*routeRecordSize+tableTrailerSize], FileRoute},
	}
	for i, tt := range bySize {
		got, err := DetectFileType(fmt.Sprintf("file%d.dat", i), tt.data)
		if assert.NoError(t, err, "case %d (%d bytes)", i, len(tt.data)) {
			assert.Equal(t, tt.want, got, "case %d (%d bytes)", i, len(tt.data))
		}
	}

	_, err := DetectFileType("blob.dat", make([]byte, 17))
	require.ErrorIs(t, err, ErrUnrecognizedFileType)
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "blob.dat", fe.Name)
}

func TestDecodeFileSetUnknownFile(t *testing.T) {
	files := Encode(sampleDoc(), testDate).Files()
	files["README.TXT"] = []byte("hello")
	_, err := DecodeFileSet(files, DecodeContext{})
	assert.ErrorIs(t, err, ErrUnrecognizedFileType)
}

func TestDecodeRoutesAgainstContext(t *testing.T) {
	stubRouteIDs(t)
	doc := sampleDoc()
	fs := Encode(doc, testDate)

	// Only the route table: points resolve against the context arrays.
	got, err := DecodeFileSet(map[string][]byte{"ROUTE.P01": fs.Routes}, DecodeContext{
		Airports:       doc.UserAirports,
		Navaids:        doc.UserNavaids,
		Waypoints:      doc.UserWaypoints,
		SystemAirports: doc.SystemAirports,
	})
	require.NoError(t, err)
	assert.Equal(t, doc.Routes, got.Routes)
	assert.Empty(t, got.UserWaypoints, "context waypoints copied into the document")
}

func TestEncodeTruncation(t *testing.T) {
	doc := &flightdoc.Document{}
	for i := range 101 {
		doc.UserWaypoints = append(doc.UserWaypoints, flightdoc.Waypoint{ID: fmt.Sprintf("W%03d", i)})
	}
	long := flightdoc.Route{RouteID: "LONG"}
	for i := range 45 {
		long.Points = append(long.Points, flightdoc.RoutePointRef{Kind: flightdoc.KindUserWaypoint, RefID: fmt.Sprintf("W%03d", i)})
	}
	doc.Routes = []flightdoc.Route{long}

	fs := Encode(doc, testDate)
	require.Len(t, fs.Warnings, 2)
	for _, w := range fs.Warnings {
		assert.ErrorIs(t, w, ErrTableTruncated)
	}
	var tw *TruncationWarning
	require.ErrorAs(t, fs.Warnings[0], &tw)
	assert.Equal(t, FileWaypoint, tw.Type)
	assert.Equal(t, 101, tw.Count)
	require.ErrorAs(t, fs.Warnings[1], &tw)
	assert.Equal(t, "LONG", tw.Route)
	assert.Equal(t, 45, tw.Count)
	assert.Equal(t, byte(128), fs.Waypoints[13], "waypoint header count byte")

	got, err := DecodeFileSet(fs.Files(), DecodeContext{})
	require.NoError(t, err)
	assert.Len(t, got.UserWaypoints, TableCapacity)
	require.Len(t, got.Routes, 1)
	assert.Len(t, got.Routes[0].Points, flightdoc.MaxRoutePoints)
}

func TestSystemAirportEndpointPrefix(t *testing.T) {
	// Only four characters of a system airport survive in the header; a
	// known airport with that prefix supplies the full id.
	doc := &flightdoc.Document{
		UserWaypoints:  []flightdoc.Waypoint{{ID: "WPT01", Name: "WPT01", Type: flightdoc.WaypointWPT}},
		SystemAirports: []flightdoc.SystemAirport{{ID: "KJFKX"}},
		Routes: []flightdoc.Route{{RouteID: "R", Points: []flightdoc.RoutePointRef{
			{Kind: flightdoc.KindUserWaypoint, RefID: "WPT01"},
			{Kind: flightdoc.KindSystemAirport, RefID: "KJFKX"},
		}}},
	}
	fs := Encode(doc, testDate)
	got, err := DecodeFileSet(fs.Files(), DecodeContext{SystemAirports: doc.SystemAirports})
	require.NoError(t, err)
	assert.Equal(t, []flightdoc.RoutePointRef{
		{Kind: flightdoc.KindUserWaypoint, RefID: "WPT01"},
		{Kind: flightdoc.KindSystemAirport, RefID: "KJFKX"},
	}, got.Routes[0].Points)
	assert.Len(t, got.SystemAirports, 1)

	// Without the system database the endpoint cannot be resolved.
	got, err = DecodeFileSet(fs.Files(), DecodeContext{})
	require.NoError(t, err)
	assert.Equal(t, []flightdoc.RoutePointRef{{Kind: flightdoc.KindUserWaypoint, RefID: "WPT01"}}, got.Routes[0].Points)
	assert.NoError(t, got.Validate())
}

func TestSystemEndpointPrefixMatching(t *testing.T) {
	endingAt := func(id string) *flightdoc.Document {
		return &flightdoc.Document{
			UserWaypoints: []flightdoc.Waypoint{{ID: "WPT01", Name: "WPT01", Type: flightdoc.WaypointWPT}},
			Routes: []flightdoc.Route{{RouteID: "R", Points: []flightdoc.RoutePointRef{
				{Kind: flightdoc.KindUserWaypoint, RefID: "WPT01"},
				{Kind: flightdoc.KindSystemAirport, RefID: id},
			}}},
		}
	}
	wpt := flightdoc.RoutePointRef{Kind: flightdoc.KindUserWaypoint, RefID: "WPT01"}

	// Two airports share the stored prefix: the endpoint is dropped, not
	// swapped for the other one.
	var logs bytes.Buffer
	lg := slog.New(slog.NewTextHandler(&logs, nil))
	ctx := DecodeContext{SystemAirports: []flightdoc.SystemAirport{{ID: "EKCHA"}, {ID: "EKCHB"}}}
	got, err := DecodeFileSet(Encode(endingAt("EKCHB"), testDate).Files(), ctx, WithDecodeLogger(lg))
	require.NoError(t, err)
	assert.Equal(t, []flightdoc.RoutePointRef{wpt}, got.Routes[0].Points)
	assert.Contains(t, logs.String(), "ambiguous route endpoint")

	// An airport whose id is exactly the stored prefix wins over longer ones.
	ctx = DecodeContext{SystemAirports: []flightdoc.SystemAirport{{ID: "EKCHB"}, {ID: "EKCH"}}}
	got, err = DecodeFileSet(Encode(endingAt("EKCH"), testDate).Files(), ctx)
	require.NoError(t, err)
	assert.Equal(t, []flightdoc.RoutePointRef{wpt, {Kind: flightdoc.KindSystemAirport, RefID: "EKCH"}}, got.Routes[0].Points)
}

func TestUnnamedRoutesKeepTheirSlot(t *testing.T) {
	wpt := []flightdoc.RoutePointRef{{Kind: flightdoc.KindUserWaypoint, RefID: "WPT01"}}
	doc := &flightdoc.Document{
		UserWaypoints: []flightdoc.Waypoint{{ID: "WPT01", Name: "WPT01", Type: flightdoc.WaypointWPT}},
		Routes: []flightdoc.Route{
			{ID: "a", RouteID: "RTE01", Points: wpt},
			{ID: "b", Points: wpt},
			{ID: "c", Name: "??", Points: wpt},
		},
	}
	fs := Encode(doc, testDate)
	n, ok := headerCount(fs.Routes)
	require.True(t, ok)
	assert.Equal(t, 3, n, "header count")

	got, err := DecodeRoutes(fs.Routes, DecodeContext{Waypoints: doc.UserWaypoints})
	require.NoError(t, err)
	var ids []string
	for _, r := range got {
		ids = append(ids, r.RouteID)
	}
	assert.Equal(t, []string{"RTE01", "RTE02", "RTE03"}, ids)
	assert.Empty(t, doc.Routes[1].RouteID, "Encode modified the document")
}
