package ident

import (
	"github.com/google/uuid"
	"github.com/logicossoftware/go-a109/flightdoc"
)

// Function variables for testing injection.
var newStableID = uuid.NewString

// NewWaypoint returns a copy of doc with a new user waypoint appended, and
// the waypoint itself. Managed waypoints take the next free serial of
// their type as both id and name; Custom waypoints keep name and take an
// id derived from it.
func NewWaypoint(doc *flightdoc.Document, t flightdoc.WaypointType, name string, loc flightdoc.Point) (*flightdoc.Document, flightdoc.Waypoint) {
	c := doc.Clone()
	w := flightdoc.Waypoint{Type: t, Location: loc}
	w.ID = AllocateID(t, name, c.WaypointIDs())
	if t.Managed() {
		w.Name = w.ID
	} else {
		w.Name = name
	}
	c.UserWaypoints = append(c.UserWaypoints, w)
	return c, w
}

// NewRoute returns a copy of doc with a new route appended, and the route.
// The name is sanitized and the RouteID made unique among the document's
// routes. Points beyond the 40-point limit are dropped.
func NewRoute(doc *flightdoc.Document, name string, points []flightdoc.RoutePointRef) (*flightdoc.Document, flightdoc.Route) {
	c := doc.Clone()
	clean := flightdoc.SanitizeRouteName(name)
	preferred := clean
	if preferred == "" {
		preferred = "RTE01"
	}
	r := flightdoc.Route{
		ID:      newStableID(),
		RouteID: UniqueRouteID(preferred, c.RouteIDs()),
		Name:    clean,
		Points:  append([]flightdoc.RoutePointRef(nil), points[:min(len(points), flightdoc.MaxRoutePoints)]...),
	}
	if r.Name == "" {
		r.Name = r.RouteID
	}
	c.Routes = append(c.Routes, r)
	return c, r
}

// UniqueRouteID makes a RouteID unique among used, keeping to the 15
// character limit.
func UniqueRouteID(preferred string, used map[string]bool) string {
	return MakeUniqueN(preferred, used, flightdoc.MaxRouteIDLen)
}
