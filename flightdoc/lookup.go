package flightdoc

import (
	"slices"

	"github.com/brunoga/deep"
)

// Clone returns a deep copy of d. A nil Document clones to an empty one.
func (d *Document) Clone() *Document {
	if d == nil {
		return &Document{}
	}
	c := deep.MustCopy(*d)
	return &c
}

func (d *Document) AirportIndex(id string) int {
	return slices.IndexFunc(d.UserAirports, func(a Airport) bool { return a.ID == id })
}

func (d *Document) NavaidIndex(id string) int {
	return slices.IndexFunc(d.UserNavaids, func(n Navaid) bool { return n.ID == id })
}

func (d *Document) WaypointIndex(id string) int {
	return slices.IndexFunc(d.UserWaypoints, func(w Waypoint) bool { return w.ID == id })
}

func (d *Document) SystemAirportIndex(id string) int {
	return slices.IndexFunc(d.SystemAirports, func(a SystemAirport) bool { return a.ID == id })
}

func (d *Document) SystemNavaidIndex(id string) int {
	return slices.IndexFunc(d.SystemNavaids, func(n SystemNavaid) bool { return n.ID == id })
}

// RouteIndex finds a route by its stable ID.
func (d *Document) RouteIndex(id string) int {
	return slices.IndexFunc(d.Routes, func(r Route) bool { return r.ID == id })
}

// RouteByRouteID finds a route by its exported RouteID.
func (d *Document) RouteByRouteID(routeID string) int {
	return slices.IndexFunc(d.Routes, func(r Route) bool { return r.RouteID == routeID })
}

// Index returns the position of the entity ref points at in its array, or
// -1 if it does not resolve.
func (d *Document) Index(ref RoutePointRef) int {
	switch ref.Kind {
	case KindUserAirport:
		return d.AirportIndex(ref.RefID)
	case KindUserNavaid:
		return d.NavaidIndex(ref.RefID)
	case KindUserWaypoint:
		return d.WaypointIndex(ref.RefID)
	case KindSystemAirport:
		return d.SystemAirportIndex(ref.RefID)
	case KindSystemNavaid:
		return d.SystemNavaidIndex(ref.RefID)
	default:
		return -1
	}
}

// Resolve reports whether ref points at an existing entity.
func (d *Document) Resolve(ref RoutePointRef) bool {
	return d.Index(ref) != -1
}

// Locate returns the position of the entity ref points at.
func (d *Document) Locate(ref RoutePointRef) (Point, bool) {
	i := d.Index(ref)
	if i == -1 {
		return Point{}, false
	}
	switch ref.Kind {
	case KindUserAirport:
		return d.UserAirports[i].Location, true
	case KindUserNavaid:
		return d.UserNavaids[i].Location, true
	case KindUserWaypoint:
		return d.UserWaypoints[i].Location, true
	case KindSystemAirport:
		return d.SystemAirports[i].Location, true
	default:
		return d.SystemNavaids[i].Location, true
	}
}

// References reports whether any route other than the one with stable ID
// skip refers to ref.
func (d *Document) References(ref RoutePointRef, skip string) bool {
	for _, r := range d.Routes {
		if r.ID == skip {
			continue
		}
		if slices.Contains(r.Points, ref) {
			return true
		}
	}
	return false
}

// WaypointIDs returns the set of user waypoint ids in use.
func (d *Document) WaypointIDs() map[string]bool {
	m := make(map[string]bool, len(d.UserWaypoints))
	for _, w := range d.UserWaypoints {
		m[w.ID] = true
	}
	return m
}

// RouteIDs returns the set of RouteIDs in use.
func (d *Document) RouteIDs() map[string]bool {
	m := make(map[string]bool, len(d.Routes))
	for _, r := range d.Routes {
		m[r.RouteID] = true
	}
	return m
}
