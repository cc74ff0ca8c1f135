package a109

import (
	"log/slog"
	"time"

	"github.com/logicossoftware/go-a109/flightdoc"
	"github.com/logicossoftware/go-a109/ident"
)

// Encode produces the complete A109 file set for doc, dated date.
//
// Encode never fails. Every table is clamped to TableCapacity entries and
// every route to 40 points; whatever does not fit is dropped and reported
// as a *TruncationWarning in FileSet.Warnings (and to the logger given with
// WithLogger). Before the tables are written Encode derives:
//   - the number of exported routes using each airport and navaid, which
//     drives their usage fields
//   - the first exported route each waypoint appears on
//
// Route points that refer to entities outside the exported tables are
// written without a db index. A route whose RouteID and Name leave nothing
// to write is given a free name of the form RTE01.
func Encode(doc *flightdoc.Document, date time.Time, opts ...EncodeOption) *FileSet {
	var cfg encodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	lg := orDiscard(cfg.logger)
	if doc == nil {
		doc = &flightdoc.Document{}
	}

	fs := &FileSet{}
	clamp := func(t FileType, n int) int {
		if n <= TableCapacity {
			return n
		}
		w := &TruncationWarning{Type: t, Count: n, Capacity: TableCapacity}
		fs.Warnings = append(fs.Warnings, w)
		lg.Warn("a109: table truncated", slog.String("file", t.FileName()),
			slog.Int("count", n), slog.Int("capacity", TableCapacity))
		return TableCapacity
	}
	nAirports := clamp(FileAirport, len(doc.UserAirports))
	nNavaids := clamp(FileNavaid, len(doc.UserNavaids))
	nWaypoints := clamp(FileWaypoint, len(doc.UserWaypoints))
	nRoutes := clamp(FileRoute, len(doc.Routes))

	ix := newExportIndex(doc, nAirports, nNavaids, nWaypoints)
	routes := doc.Routes[:nRoutes]
	airportUses, navaidUses, firstRoute := routeUsage(routes, ix, nAirports, nNavaids, nWaypoints)

	fs.Airports = EncodeAirports(doc.UserAirports[:nAirports], airportUses)
	fs.Navaids = EncodeNavaids(doc.UserNavaids[:nNavaids], navaidUses)
	fs.Waypoints = EncodeWaypoints(doc.UserWaypoints[:nWaypoints], firstRoute)

	names := make(map[string]bool, nRoutes)
	for _, r := range routes {
		names[recordRouteName(r)] = true
	}
	fs.Routes = newTable(routeRecordSize, nRoutes)
	for i, r := range routes {
		if recordRouteName(r) == "" {
			// An empty name field marks a free slot, so unnamed routes get one.
			r.RouteID = ident.MakeUniqueN(unnamedRoute, names, TextCapacity(recordNameLen))
			names[r.RouteID] = true
			lg.Info("a109: unnamed route named", slog.String("id", r.ID), slog.String("route", r.RouteID))
		}
		if dropped := encodeRoute(tableRecord(fs.Routes, routeRecordSize, i), r, ix); dropped > 0 {
			w := &TruncationWarning{Type: FileRoute, Route: routeName(r), Count: len(r.Points), Capacity: flightdoc.MaxRoutePoints}
			fs.Warnings = append(fs.Warnings, w)
			lg.Warn("a109: route truncated", slog.String("route", w.Route),
				slog.Int("points", w.Count), slog.Int("dropped", dropped))
		}
	}

	fs.Caracter = BuildCaracter(date, fs)
	fs.Pilote = BuildPilote(date, fs)
	return fs
}

const unnamedRoute = "RTE01"

// recordRouteName is the text that ends up in a route record's name field.
func recordRouteName(r flightdoc.Route) string {
	return flightdoc.SanitizeID(routeName(r), TextCapacity(recordNameLen))
}

// routeUsage counts, for each exported airport and navaid, how many routes
// use it, and finds the first route each exported waypoint appears on.
func routeUsage(routes []flightdoc.Route, ix exportIndex, nAirports, nNavaids, nWaypoints int) (airportUses, navaidUses, firstRoute []int) {
	airportUses = make([]int, nAirports)
	navaidUses = make([]int, nNavaids)
	firstRoute = make([]int, nWaypoints)
	for i := range firstRoute {
		firstRoute[i] = noRouteMembership
	}

	for ri, r := range routes {
		seen := make(map[flightdoc.RoutePointRef]bool, len(r.Points))
		for _, p := range r.Points {
			slot, ok := ix.slot(p)
			if !ok || seen[p] {
				continue
			}
			seen[p] = true
			switch p.Kind {
			case flightdoc.KindUserAirport:
				airportUses[slot]++
			case flightdoc.KindUserNavaid:
				navaidUses[slot]++
			case flightdoc.KindUserWaypoint:
				if firstRoute[slot] == noRouteMembership {
					firstRoute[slot] = ri
				}
			}
		}
	}
	return airportUses, navaidUses, firstRoute
}
