package flightdoc

import (
	"fmt"
	"slices"
)

// RewriteRefs replaces every route reference of the given kind whose id is
// a key of ids with the mapped value. All lookups use the original ids, so
// chains such as A->B, B->C are applied as a single simultaneous rename.
// d is modified in place; callers work on a clone.
func (d *Document) RewriteRefs(kind PointKind, ids map[string]string) {
	if len(ids) == 0 {
		return
	}
	for i := range d.Routes {
		for j, p := range d.Routes[i].Points {
			if p.Kind != kind {
				continue
			}
			if n, ok := ids[p.RefID]; ok {
				d.Routes[i].Points[j].RefID = n
			}
		}
	}
}

// dropRefs removes every route point matching ref. d is modified in place.
func (d *Document) dropRefs(ref RoutePointRef) {
	for i := range d.Routes {
		d.Routes[i].Points = slices.DeleteFunc(d.Routes[i].Points, func(p RoutePointRef) bool {
			return p == ref
		})
	}
}

// DeleteWaypoint removes the user waypoint with the given id along with
// every route point that refers to it.
func (d *Document) DeleteWaypoint(id string) *Document {
	c := d.Clone()
	c.UserWaypoints = slices.DeleteFunc(c.UserWaypoints, func(w Waypoint) bool { return w.ID == id })
	c.dropRefs(RoutePointRef{Kind: KindUserWaypoint, RefID: id})
	return c
}

// DeleteAirport removes the user airport with the given id along with every
// route point that refers to it.
func (d *Document) DeleteAirport(id string) *Document {
	c := d.Clone()
	c.UserAirports = slices.DeleteFunc(c.UserAirports, func(a Airport) bool { return a.ID == id })
	c.dropRefs(RoutePointRef{Kind: KindUserAirport, RefID: id})
	return c
}

// DeleteNavaid removes the user navaid with the given id along with every
// route point that refers to it.
func (d *Document) DeleteNavaid(id string) *Document {
	c := d.Clone()
	c.UserNavaids = slices.DeleteFunc(c.UserNavaids, func(n Navaid) bool { return n.ID == id })
	c.dropRefs(RoutePointRef{Kind: KindUserNavaid, RefID: id})
	return c
}

// DeleteRoute removes the route with stable ID id. User waypoints that were
// only referenced by that route are removed too; airports and navaids are
// reference data and stay.
func (d *Document) DeleteRoute(id string) *Document {
	c := d.Clone()
	idx := c.RouteIndex(id)
	if idx == -1 {
		return c
	}
	var orphans []string
	for _, p := range c.Routes[idx].Points {
		if p.Kind == KindUserWaypoint && !c.References(p, id) && !slices.Contains(orphans, p.RefID) {
			orphans = append(orphans, p.RefID)
		}
	}
	c.Routes = slices.Delete(c.Routes, idx, idx+1)
	c.UserWaypoints = slices.DeleteFunc(c.UserWaypoints, func(w Waypoint) bool {
		return slices.Contains(orphans, w.ID)
	})
	if c.ActiveRouteID == id {
		c.ActiveRouteID = ""
	}
	return c
}

// RenameWaypoint changes a user waypoint id and rewrites every reference to
// it. Managed waypoints keep their name in step with the id.
func (d *Document) RenameWaypoint(oldID, newID string) (*Document, error) {
	if !ValidUserID(newID) {
		return nil, fmt.Errorf("invalid waypoint id %q", newID)
	}
	idx := d.WaypointIndex(oldID)
	if idx == -1 {
		return nil, fmt.Errorf("no waypoint %q", oldID)
	}
	if oldID == newID {
		return d.Clone(), nil
	}
	if d.WaypointIndex(newID) != -1 {
		return nil, fmt.Errorf("waypoint id %q already in use", newID)
	}
	c := d.Clone()
	c.UserWaypoints[idx].ID = newID
	if c.UserWaypoints[idx].Managed() {
		c.UserWaypoints[idx].Name = newID
	}
	c.RewriteRefs(KindUserWaypoint, map[string]string{oldID: newID})
	return c, nil
}

// SetActiveRoute returns a copy of d with the given route active. Unknown
// ids clear the selection.
func (d *Document) SetActiveRoute(id string) *Document {
	c := d.Clone()
	if c.RouteIndex(id) == -1 {
		id = ""
	}
	c.ActiveRouteID = id
	return c
}
