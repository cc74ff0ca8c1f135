package flightdoc

import "fmt"

// Point is a geographic position. Coordinates are kept at float32 precision,
// which is what the binary tables can represent.
type Point struct {
	Lat float32 `msgpack:"lat"`
	Lon float32 `msgpack:"lon"`
}

func (p Point) String() string {
	return fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lon)
}

// WaypointType discriminates managed waypoints, whose id and name follow a
// type-prefixed serial number, from free-form custom ones.
type WaypointType uint8

const (
	WaypointCustom WaypointType = iota
	WaypointWPT
	WaypointIP
	WaypointTGT
	WaypointHLD
	WaypointCLI
	WaypointDES
)

var waypointTypeNames = [...]string{
	WaypointCustom: "Custom",
	WaypointWPT:    "WPT",
	WaypointIP:     "IP",
	WaypointTGT:    "TGT",
	WaypointHLD:    "HLD",
	WaypointCLI:    "CLI",
	WaypointDES:    "DES",
}

// ManagedWaypointTypes lists every managed type in prefix-match order.
var ManagedWaypointTypes = []WaypointType{
	WaypointWPT, WaypointIP, WaypointTGT, WaypointHLD, WaypointCLI, WaypointDES,
}

func (t WaypointType) String() string {
	if int(t) < len(waypointTypeNames) {
		return waypointTypeNames[t]
	}
	return fmt.Sprintf("WaypointType(%d)", t)
}

// Managed reports whether ids of this type are allocated from a serial.
func (t WaypointType) Managed() bool {
	return t != WaypointCustom && int(t) < len(waypointTypeNames)
}

// Prefix returns the id prefix for managed types and "" for Custom.
func (t WaypointType) Prefix() string {
	if !t.Managed() {
		return ""
	}
	return waypointTypeNames[t]
}

// ParseWaypointType maps a type name (case-sensitive, as produced by String)
// back to its value.
func ParseWaypointType(s string) (WaypointType, bool) {
	for i, n := range waypointTypeNames {
		if n == s {
			return WaypointType(i), true
		}
	}
	return WaypointCustom, false
}

type Waypoint struct {
	ID        string       `msgpack:"id"`
	Name      string       `msgpack:"name"`
	Type      WaypointType `msgpack:"type"`
	Location  Point        `msgpack:"loc"`
	Elevation float32      `msgpack:"elev"`
}

func (w Waypoint) Managed() bool { return w.Type.Managed() }

// AirportBlobs holds the airport record fields whose meaning is unknown.
// They are carried through decode/encode byte for byte. A nil Usage blob is
// derived from route usage at encode time.
type AirportBlobs struct {
	Header []byte `msgpack:"hdr,omitempty"`
	Usage  []byte `msgpack:"usage,omitempty"`
	Runway []byte `msgpack:"rwy,omitempty"`
}

type Airport struct {
	ID        string       `msgpack:"id"`
	Name      string       `msgpack:"name"`
	Location  Point        `msgpack:"loc"`
	Elevation float32      `msgpack:"elev"`
	MagVar    float32      `msgpack:"magvar"`
	Blobs     AirportBlobs `msgpack:"blobs"`
}

type Navaid struct {
	ID        string  `msgpack:"id"`
	Name      string  `msgpack:"name"`
	Location  Point   `msgpack:"loc"`
	Elevation float32 `msgpack:"elev"`
	MagVar    float32 `msgpack:"magvar"`
	Frequency float32 `msgpack:"freq"`
}

// SystemAirport and SystemNavaid come from the read-only reference
// database. They can be referenced by routes but are never exported.
type SystemAirport struct {
	ID       string `msgpack:"id"`
	Location Point  `msgpack:"loc"`
}

type SystemNavaid struct {
	ID       string `msgpack:"id"`
	Location Point  `msgpack:"loc"`
	Subtype  string `msgpack:"subtype,omitempty"`
}

// PointKind says which Document array a RoutePointRef is resolved against.
type PointKind uint8

const (
	KindUserAirport PointKind = iota
	KindUserNavaid
	KindUserWaypoint
	KindSystemAirport
	KindSystemNavaid
)

func (k PointKind) String() string {
	switch k {
	case KindUserAirport:
		return "userAirport"
	case KindUserNavaid:
		return "userNavaid"
	case KindUserWaypoint:
		return "userWaypoint"
	case KindSystemAirport:
		return "systemAirport"
	case KindSystemNavaid:
		return "systemNavaid"
	default:
		return fmt.Sprintf("PointKind(%d)", k)
	}
}

// IsAirport reports whether the kind refers to a user or system airport.
func (k PointKind) IsAirport() bool {
	return k == KindUserAirport || k == KindSystemAirport
}

// IsNavaid reports whether the kind refers to a user or system navaid.
func (k PointKind) IsNavaid() bool {
	return k == KindUserNavaid || k == KindSystemNavaid
}

// RoutePointRef is a weak (kind, id) handle into one of the Document's
// entity arrays. It never owns its target.
type RoutePointRef struct {
	Kind  PointKind `msgpack:"kind"`
	RefID string    `msgpack:"ref"`
}

func (r RoutePointRef) String() string {
	return r.Kind.String() + ":" + r.RefID
}

const (
	MaxRoutePoints  = 40
	MaxRouteIDLen   = 15
	MaxUserIDLen    = 5
	MaxWaypointName = 15
)

type Route struct {
	// ID is stable across renames and never exported.
	ID      string          `msgpack:"id"`
	RouteID string          `msgpack:"route_id"`
	Name    string          `msgpack:"name"`
	Points  []RoutePointRef `msgpack:"points"`
}

// Document owns every entity array. Operations that modify a Document
// return a fresh copy and leave their input untouched.
type Document struct {
	Routes         []Route         `msgpack:"routes"`
	UserAirports   []Airport       `msgpack:"user_airports"`
	UserNavaids    []Navaid        `msgpack:"user_navaids"`
	UserWaypoints  []Waypoint      `msgpack:"user_waypoints"`
	SystemAirports []SystemAirport `msgpack:"system_airports"`
	SystemNavaids  []SystemNavaid  `msgpack:"system_navaids"`
	ActiveRouteID  string          `msgpack:"active_route,omitempty"`
}
