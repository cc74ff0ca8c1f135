package ident

import (
	"slices"

	"github.com/logicossoftware/go-a109/flightdoc"
)

// Renumber reassigns the ids of the managed waypoints on the given routes
// (by stable route ID) so that they follow route order.
//
// The ids of those waypoints are first released from the document-wide
// set of waypoint ids. The routes are then walked in the order given, point
// by point, and each managed waypoint receives the lowest free serial of
// its type the first time it is met. Serials are shared across all the
// routes of one call. Id and name are written back together, and every
// route in the document is rewritten to the new ids. Custom waypoints and
// references that do not resolve are left alone.
//
// doc is not modified.
func Renumber(doc *flightdoc.Document, routeIDs []string) *flightdoc.Document {
	c := doc.Clone()

	var routes []int
	for _, id := range routeIDs {
		if i := c.RouteIndex(id); i != -1 && !slices.Contains(routes, i) {
			routes = append(routes, i)
		}
	}

	// Route points keep their original ids until the final rewrite, so
	// this index stays valid while waypoints are renamed.
	index := make(map[string]int, len(c.UserWaypoints))
	for i, w := range c.UserWaypoints {
		index[w.ID] = i
	}
	managedOn := func(p flightdoc.RoutePointRef) (int, bool) {
		if p.Kind != flightdoc.KindUserWaypoint {
			return 0, false
		}
		i, ok := index[p.RefID]
		return i, ok && c.UserWaypoints[i].Managed()
	}

	used := c.WaypointIDs()
	for _, ri := range routes {
		for _, p := range c.Routes[ri].Points {
			if _, ok := managedOn(p); ok {
				delete(used, p.RefID)
			}
		}
	}

	renamed := make(map[string]string)
	done := make(map[int]bool)
	for _, ri := range routes {
		for _, p := range c.Routes[ri].Points {
			wi, ok := managedOn(p)
			if !ok || done[wi] {
				continue
			}
			done[wi] = true
			w := &c.UserWaypoints[wi]
			id := NextAvailable(w.Type, used)
			used[id] = true
			if id != w.ID {
				renamed[w.ID] = id
			}
			w.ID = id
			w.Name = id
		}
	}

	c.RewriteRefs(flightdoc.KindUserWaypoint, renamed)
	return c
}
