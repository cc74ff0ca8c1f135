package flightdoc

import (
	"bytes"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() *Document {
	return &Document{
		UserAirports: []Airport{
			{ID: "ESSA", Name: "ARLANDA", Location: Point{Lat: 59.65, Lon: 17.92}, Elevation: 137,
				Blobs: AirportBlobs{Header: []byte{1, 2, 3, 4}}},
		},
		UserNavaids: []Navaid{
			{ID: "TEB", Name: "TEB VOR", Location: Point{Lat: 59.5, Lon: 18.1}, Frequency: 113.6},
		},
		UserWaypoints: []Waypoint{
			{ID: "WPT01", Name: "WPT01", Type: WaypointWPT, Location: Point{Lat: 59, Lon: 18}},
			{ID: "WPT02", Name: "WPT02", Type: WaypointWPT, Location: Point{Lat: 59.1, Lon: 18.2}},
			{ID: "HOME", Name: "HOME BASE", Type: WaypointCustom, Location: Point{Lat: 58, Lon: 17}},
		},
		Routes: []Route{
			{ID: "r1", RouteID: "ONE", Name: "ONE", Points: []RoutePointRef{
				{Kind: KindUserAirport, RefID: "ESSA"},
				{Kind: KindUserWaypoint, RefID: "WPT01"},
				{Kind: KindUserWaypoint, RefID: "HOME"},
			}},
			{ID: "r2", RouteID: "TWO", Name: "TWO", Points: []RoutePointRef{
				{Kind: KindUserWaypoint, RefID: "WPT02"},
				{Kind: KindUserWaypoint, RefID: "HOME"},
				{Kind: KindUserNavaid, RefID: "TEB"},
			}},
		},
		ActiveRouteID: "r1",
	}
}

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"essa", 5, "ESSA"},
		{"my route #1", 15, "MYROUTE1"},
		{"abcdefgh", 5, "ABCDE"},
		{"a-b_c", 0, "A-BC"},
		{"åäö", 5, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeID(tt.in, tt.max), "SanitizeID(%q, %d)", tt.in, tt.max)
	}
}

func TestInferWaypointType(t *testing.T) {
	assert.Equal(t, WaypointWPT, InferWaypointType("WPT07"))
	assert.Equal(t, WaypointIP, InferWaypointType("IP12"))
	assert.Equal(t, WaypointDES, InferWaypointType("DES99"))
	assert.Equal(t, WaypointCustom, InferWaypointType("WPT7"))
	assert.Equal(t, WaypointCustom, InferWaypointType("HOME"))
	assert.Equal(t, WaypointCustom, InferWaypointType("IPX01"))
}

func TestWaypointTypePrefix(t *testing.T) {
	assert.Equal(t, "", WaypointCustom.Prefix())
	assert.Equal(t, "TGT", WaypointTGT.Prefix())
	assert.False(t, WaypointType(42).Managed())

	typ, ok := ParseWaypointType("HLD")
	require.True(t, ok)
	assert.Equal(t, WaypointHLD, typ)
	_, ok = ParseWaypointType("nope")
	assert.False(t, ok)
}

func TestLocate(t *testing.T) {
	d := sampleDoc()
	p, ok := d.Locate(RoutePointRef{Kind: KindUserWaypoint, RefID: "WPT02"})
	require.True(t, ok)
	assert.Equal(t, Point{Lat: 59.1, Lon: 18.2}, p)

	_, ok = d.Locate(RoutePointRef{Kind: KindSystemAirport, RefID: "ESSA"})
	assert.False(t, ok, "user airport must not resolve as system airport")
}

func TestDeleteWaypointCascades(t *testing.T) {
	d := sampleDoc()
	got := d.DeleteWaypoint("HOME")

	assert.Equal(t, -1, got.WaypointIndex("HOME"))
	for _, r := range got.Routes {
		assert.NotContains(t, r.Points, RoutePointRef{Kind: KindUserWaypoint, RefID: "HOME"})
	}
	assert.Len(t, got.Routes[0].Points, 2)
	// The input is untouched.
	assert.Len(t, d.Routes[0].Points, 3)
	assert.NotEqual(t, -1, d.WaypointIndex("HOME"))
}

func TestDeleteAirportAndNavaidCascade(t *testing.T) {
	d := sampleDoc().DeleteAirport("ESSA").DeleteNavaid("TEB")
	assert.Empty(t, d.UserAirports)
	assert.Empty(t, d.UserNavaids)
	assert.Len(t, d.Routes[0].Points, 2)
	assert.Len(t, d.Routes[1].Points, 2)
}

func TestDeleteRouteRemovesOnlyOrphans(t *testing.T) {
	d := sampleDoc()
	got := d.DeleteRoute("r1")

	require.Len(t, got.Routes, 1)
	assert.Equal(t, -1, got.WaypointIndex("WPT01"), "WPT01 was only on r1")
	assert.NotEqual(t, -1, got.WaypointIndex("HOME"), "HOME is still used by r2")
	assert.NotEqual(t, -1, got.AirportIndex("ESSA"))
	assert.Equal(t, "", got.ActiveRouteID)
}

func TestRouteByRouteID(t *testing.T) {
	d := sampleDoc()
	assert.Equal(t, 1, d.RouteByRouteID("TWO"))
	assert.Equal(t, -1, d.RouteByRouteID("two"))
	assert.Equal(t, -1, d.RouteByRouteID("r2"), "stable IDs are not RouteIDs")
}

func TestSetActiveRoute(t *testing.T) {
	d := sampleDoc()
	assert.Equal(t, "r2", d.SetActiveRoute("r2").ActiveRouteID)
	assert.Equal(t, "", d.SetActiveRoute("nope").ActiveRouteID)
	assert.Equal(t, "r1", d.ActiveRouteID)
}

func TestRenameWaypoint(t *testing.T) {
	d := sampleDoc()
	got, err := d.RenameWaypoint("WPT01", "WPT09")
	require.NoError(t, err)

	i := got.WaypointIndex("WPT09")
	require.NotEqual(t, -1, i)
	assert.Equal(t, "WPT09", got.UserWaypoints[i].Name)
	assert.Equal(t, RoutePointRef{Kind: KindUserWaypoint, RefID: "WPT09"}, got.Routes[0].Points[1])

	_, err = d.RenameWaypoint("WPT01", "WPT02")
	assert.Error(t, err)
	_, err = d.RenameWaypoint("WPT01", "toolong")
	assert.Error(t, err)
	_, err = d.RenameWaypoint("NOPE", "X")
	assert.Error(t, err)
}

func TestRewriteRefsIsSimultaneous(t *testing.T) {
	d := sampleDoc().Clone()
	d.RewriteRefs(KindUserWaypoint, map[string]string{"WPT01": "WPT02", "WPT02": "WPT03"})
	assert.Equal(t, "WPT02", d.Routes[0].Points[1].RefID)
	assert.Equal(t, "WPT03", d.Routes[1].Points[0].RefID)
}

func TestSnapshotRoundTrip(t *testing.T) {
	d := sampleDoc()
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, d))

	got, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	if !assert.Equal(t, d, got) {
		t.Log(spew.Sdump(got))
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := sampleDoc()
	c := d.Clone()
	c.Routes[0].Points[0].RefID = "XXXX"
	c.UserAirports[0].Blobs.Header[0] = 9
	assert.Equal(t, "ESSA", d.Routes[0].Points[0].RefID)
	assert.Equal(t, byte(1), d.UserAirports[0].Blobs.Header[0])

	var nilDoc *Document
	assert.NotNil(t, nilDoc.Clone())
}

func TestValidate(t *testing.T) {
	require.NoError(t, sampleDoc().Validate())

	var nilDoc *Document
	require.ErrorIs(t, nilDoc.Validate(), ErrInvalidDocument)

	tests := []struct {
		name   string
		mutate func(d *Document)
		want   string
	}{
		{"bad id", func(d *Document) { d.UserAirports[0].ID = "essa" }, "invalid id"},
		{"long id", func(d *Document) { d.UserNavaids[0].ID = "TEBTEB" }, "invalid id"},
		{"duplicate waypoint", func(d *Document) { d.UserWaypoints[1].ID = "WPT01" }, "duplicate waypoint"},
		{"bad location", func(d *Document) { d.UserWaypoints[2].Location.Lat = 91 }, "is at"},
		{"managed name", func(d *Document) { d.UserWaypoints[0].Name = "FIRST" }, "has name"},
		{"system id", func(d *Document) { d.SystemAirports = []SystemAirport{{ID: " "}} }, "empty id"},
		{"route id", func(d *Document) { d.Routes[1].ID = "r1" }, "duplicate route ID"},
		{"route name", func(d *Document) { d.Routes[1].RouteID = "ONE" }, "duplicate RouteID"},
		{"unsanitized", func(d *Document) { d.Routes[0].RouteID = "one" }, "invalid RouteID"},
		{"dangling", func(d *Document) { d.Routes[0].Points[0].RefID = "GHOST" }, "dangling"},
		{"active", func(d *Document) { d.ActiveRouteID = "gone" }, "active route"},
		{"too many points", func(d *Document) {
			for range MaxRoutePoints {
				d.Routes[0].Points = append(d.Routes[0].Points, RoutePointRef{Kind: KindUserWaypoint, RefID: "HOME"})
			}
		}, "points"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sampleDoc()
			tt.mutate(d)
			err := d.Validate()
			require.ErrorIs(t, err, ErrInvalidDocument)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
