package merge

import (
	"log/slog"
	"slices"

	"github.com/google/uuid"
	"github.com/logicossoftware/go-a109/flightdoc"
	"github.com/logicossoftware/go-a109/ident"
)

// Function variables for testing injection.
var newRouteID = uuid.NewString

// Option configures Merge.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger routes merge diagnostics (renamed ids, dropped duplicates) to
// l. By default they are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Merge returns a new Document holding base plus whatever incoming adds to
// it. Neither argument is modified.
//
// Incoming waypoint ids and RouteIDs are sanitized and made unique against
// base with the ident package, and incoming references follow the renames. Each
// incoming route that duplicates a route already in the result is dropped;
// the others are appended. Incoming airports and navaids, user and system,
// are added whenever their id is not in base. Incoming waypoints are added
// only when an appended route uses them, unless incoming has no routes at
// all, in which case every waypoint is added. If base had no active route,
// the first appended route becomes active.
func Merge(base, incoming *flightdoc.Document, opts ...Option) *flightdoc.Document {
	cfg := newConfig(opts)
	lg := cfg.logger

	out := base.Clone()
	in := incoming.Clone()
	normalize(out, in, lg)

	// Base routes compare against the base arena, appended ones against
	// the incoming arena they came from.
	seen := make([]placed, 0, len(out.Routes)+len(in.Routes))
	for _, r := range out.Routes {
		seen = append(seen, placed{route: r, doc: out})
	}
	var added []string
	needed := make(map[string]bool)
	for _, r := range in.Routes {
		cand := placed{route: r, doc: in}
		if slices.ContainsFunc(seen, func(p placed) bool { return duplicate(p, cand) }) {
			lg.Debug("merge: duplicate route dropped", slog.String("route", r.RouteID))
			continue
		}
		seen = append(seen, cand)
		out.Routes = append(out.Routes, r)
		added = append(added, r.ID)
		for _, p := range r.Points {
			if p.Kind == flightdoc.KindUserWaypoint {
				needed[p.RefID] = true
			}
		}
	}

	for _, a := range in.UserAirports {
		if out.AirportIndex(a.ID) == -1 {
			out.UserAirports = append(out.UserAirports, a)
		}
	}
	for _, n := range in.UserNavaids {
		if out.NavaidIndex(n.ID) == -1 {
			out.UserNavaids = append(out.UserNavaids, n)
		}
	}
	for _, a := range in.SystemAirports {
		if out.SystemAirportIndex(a.ID) == -1 {
			out.SystemAirports = append(out.SystemAirports, a)
		}
	}
	for _, n := range in.SystemNavaids {
		if out.SystemNavaidIndex(n.ID) == -1 {
			out.SystemNavaids = append(out.SystemNavaids, n)
		}
	}
	importAll := len(in.Routes) == 0
	for _, w := range in.UserWaypoints {
		if (importAll || needed[w.ID]) && out.WaypointIndex(w.ID) == -1 {
			out.UserWaypoints = append(out.UserWaypoints, w)
		}
	}

	if len(added) > 0 && (out.ActiveRouteID == "" || out.RouteIndex(out.ActiveRouteID) == -1) {
		out.ActiveRouteID = added[0]
	}

	lg.Info("merge: done",
		slog.Int("routes_in", len(in.Routes)),
		slog.Int("routes_added", len(added)),
		slog.Int("routes", len(out.Routes)))
	return out
}

// normalize brings every waypoint id and RouteID of in to the identifier
// rules, unique against out, rewriting the references in in to match. Route
// names are sanitized and route stable IDs that clash are regenerated.
func normalize(out, in *flightdoc.Document, lg *slog.Logger) {
	used := out.WaypointIDs()
	renamed := make(map[string]string)
	for i := range in.UserWaypoints {
		w := &in.UserWaypoints[i]
		id := ident.MakeUnique(w.ID, used)
		used[id] = true
		if _, dup := renamed[w.ID]; !dup {
			renamed[w.ID] = id
		}
		if id != w.ID {
			lg.Debug("merge: waypoint renamed", slog.String("id", w.ID), slog.String("new_id", id))
			w.ID = id
		}
		if w.Managed() {
			if flightdoc.InferWaypointType(id) == w.Type {
				w.Name = id
			} else {
				w.Type = flightdoc.WaypointCustom
			}
		}
	}
	in.RewriteRefs(flightdoc.KindUserWaypoint, renamed)

	routeIDs := out.RouteIDs()
	stable := make(map[string]bool, len(out.Routes)+len(in.Routes))
	for _, r := range out.Routes {
		stable[r.ID] = true
	}
	for i := range in.Routes {
		r := &in.Routes[i]
		name := flightdoc.SanitizeRouteName(r.Name)
		preferred := flightdoc.SanitizeRouteName(r.RouteID)
		if name == "" {
			name = preferred
		}
		if preferred == "" {
			preferred = name
		}
		if preferred == "" {
			preferred = "RTE01"
		}
		id := ident.UniqueRouteID(preferred, routeIDs)
		if id != r.RouteID {
			lg.Debug("merge: route renamed", slog.String("route", r.RouteID), slog.String("new_route", id))
			r.RouteID = id
		}
		if name == "" {
			name = id
		}
		r.Name = name
		routeIDs[id] = true
		for r.ID == "" || stable[r.ID] {
			r.ID = newRouteID()
		}
		stable[r.ID] = true
	}
}

// Accumulate merges docs, in order, into one Document, starting from an
// empty one.
func Accumulate(docs []*flightdoc.Document, opts ...Option) *flightdoc.Document {
	acc := &flightdoc.Document{}
	for _, d := range docs {
		acc = Merge(acc, d, opts...)
	}
	return acc
}

// MergeAll accumulates every incoming document first and merges the result
// into base in one step, so no partially merged state is ever returned.
func MergeAll(base *flightdoc.Document, incoming []*flightdoc.Document, opts ...Option) *flightdoc.Document {
	return Merge(base, Accumulate(incoming, opts...), opts...)
}
