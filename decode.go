package a109

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/logicossoftware/go-a109/flightdoc"
	"github.com/logicossoftware/go-a109/ident"
)

// DecodeContext supplies the entities route points are resolved against
// when the matching table is not part of the decoded set, plus the system
// reference database.
type DecodeContext struct {
	Airports       []flightdoc.Airport
	Navaids        []flightdoc.Navaid
	Waypoints      []flightdoc.Waypoint
	SystemAirports []flightdoc.SystemAirport
	SystemNavaids  []flightdoc.SystemNavaid
}

// tableCodec describes how to decode one P01 table into entities of type T.
type tableCodec[T any] struct {
	file       FileType
	recordSize int
	absent     func(rec []byte) bool
	decode     func(rec []byte) (T, string)
	id         func(*T) string
	setID      func(*T, string)
}

// decodeTable reads every slot of a table. Empty slots are skipped
// silently, invalid records are skipped and logged. Duplicate ids are made
// unique. The returned slot ids are indexed by record slot, "" where no
// entity was produced.
func decodeTable[T any](t tableCodec[T], buf []byte, lg *slog.Logger) ([]T, []string, error) {
	if len(buf) < tableHeaderSize {
		return nil, nil, &FileError{Name: t.file.FileName(), Err: fmt.Errorf("%w: %d bytes", ErrInvalidLength, len(buf))}
	}
	if n, ok := headerCount(buf); !ok {
		lg.Warn("a109: bad presence header", slog.String("file", t.file.FileName()), slog.Int("count_byte", int(buf[13])))
	} else {
		lg.Debug("a109: decoding table", slog.String("file", t.file.FileName()), slog.Int("count", n))
	}

	nslots := tableSlots(buf, t.recordSize)
	items := make([]T, 0, nslots)
	slotIDs := make([]string, nslots)
	used := make(map[string]bool)
	for i := range nslots {
		rec := tableRecord(buf, t.recordSize, i)
		if allZero(rec) || t.absent(rec) {
			continue
		}
		item, problem := t.decode(rec)
		if problem != "" {
			err := &RecordError{Type: t.file, Slot: i, Reason: problem}
			lg.Warn("a109: record skipped", slog.String("file", t.file.FileName()), slog.Any("error", err))
			continue
		}
		if id := t.id(&item); used[id] {
			nid := ident.MakeUnique(id, used)
			lg.Info("a109: duplicate id renamed", slog.String("file", t.file.FileName()),
				slog.String("id", id), slog.String("new_id", nid))
			t.setID(&item, nid)
		}
		used[t.id(&item)] = true
		slotIDs[i] = t.id(&item)
		items = append(items, item)
	}
	return items, slotIDs, nil
}

var airportCodec = tableCodec[flightdoc.Airport]{
	file:       FileAirport,
	recordSize: airportRecordSize,
	absent:     func(rec []byte) bool { return false },
	decode:     decodeAirport,
	id:         func(a *flightdoc.Airport) string { return a.ID },
	setID:      func(a *flightdoc.Airport, id string) { a.ID = id },
}

var navaidCodec = tableCodec[flightdoc.Navaid]{
	file:       FileNavaid,
	recordSize: navaidRecordSize,
	absent:     func(rec []byte) bool { return false },
	decode:     decodeNavaid,
	id:         func(n *flightdoc.Navaid) string { return n.ID },
	setID:      func(n *flightdoc.Navaid, id string) { n.ID = id },
}

var waypointCodec = tableCodec[flightdoc.Waypoint]{
	file:       FileWaypoint,
	recordSize: waypointRecordSize,
	absent:     waypointAbsent,
	decode:     decodeWaypoint,
	id:         func(w *flightdoc.Waypoint) string { return w.ID },
	setID: func(w *flightdoc.Waypoint, id string) {
		w.ID = id
		w.Type = flightdoc.InferWaypointType(id)
		if w.Managed() {
			w.Name = id
		}
	},
}

// DecodeAirports decodes AIRPORT.P01.
func DecodeAirports(buf []byte, opts ...DecodeOption) ([]flightdoc.Airport, error) {
	a, _, err := decodeTable(airportCodec, buf, decodeLogger(opts))
	return a, err
}

// DecodeNavaids decodes NAVAID.P01.
func DecodeNavaids(buf []byte, opts ...DecodeOption) ([]flightdoc.Navaid, error) {
	n, _, err := decodeTable(navaidCodec, buf, decodeLogger(opts))
	return n, err
}

// DecodeWaypoints decodes WAYPOINT.P01.
func DecodeWaypoints(buf []byte, opts ...DecodeOption) ([]flightdoc.Waypoint, error) {
	w, _, err := decodeTable(waypointCodec, buf, decodeLogger(opts))
	return w, err
}

// DecodeRoutes decodes ROUTE.P01 on its own, resolving db indices against
// the arrays in ctx.
func DecodeRoutes(buf []byte, ctx DecodeContext, opts ...DecodeOption) ([]flightdoc.Route, error) {
	return decodeRoutes(buf, contextTables(ctx), decodeLogger(opts))
}

func contextTables(ctx DecodeContext) routeTables {
	ids := func(n int, id func(int) string) []string {
		s := make([]string, n)
		for i := range n {
			s[i] = id(i)
		}
		return s
	}
	return routeTables{
		airportSlots:   ids(len(ctx.Airports), func(i int) string { return ctx.Airports[i].ID }),
		navaidSlots:    ids(len(ctx.Navaids), func(i int) string { return ctx.Navaids[i].ID }),
		waypointSlots:  ids(len(ctx.Waypoints), func(i int) string { return ctx.Waypoints[i].ID }),
		systemAirports: ctx.SystemAirports,
		systemNavaids:  ctx.SystemNavaids,
	}
}

func decodeRoutes(buf []byte, t routeTables, lg *slog.Logger) ([]flightdoc.Route, error) {
	t.lg = lg
	if len(buf) < tableHeaderSize {
		return nil, &FileError{Name: FileRoute.FileName(), Err: fmt.Errorf("%w: %d bytes", ErrInvalidLength, len(buf))}
	}
	var routes []flightdoc.Route
	used := make(map[string]bool)
	for i := range tableSlots(buf, routeRecordSize) {
		rec := tableRecord(buf, routeRecordSize, i)
		if routeAbsent(rec) {
			continue
		}
		r, dropped := decodeRoute(rec, t)
		if dropped > 0 {
			lg.Warn("a109: route points dropped", slog.String("route", r.RouteID), slog.Int("slot", i), slog.Int("dropped", dropped))
		}
		if r.RouteID == "" {
			lg.Warn("a109: record skipped", slog.Any("error", &RecordError{Type: FileRoute, Slot: i, Reason: "empty name"}))
			continue
		}
		if used[r.RouteID] {
			r.RouteID = ident.MakeUniqueN(r.RouteID, used, flightdoc.MaxRouteIDLen)
		}
		used[r.RouteID] = true
		routes = append(routes, r)
	}
	return routes, nil
}

func decodeLogger(opts []DecodeOption) *slog.Logger {
	var cfg decodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return orDiscard(cfg.logger)
}

// DecodeFileSet decodes a set of A109 files, keyed by file name, into a
// Document. Each file's type is found with DetectFileType; a file whose
// type cannot be determined fails the whole decode. The control files are
// accepted but carry nothing for the Document.
//
// Route points are resolved against the tables present in files, falling
// back to the arrays in ctx for absent tables. Points that cannot be
// resolved are dropped from their route, as are records with an empty id
// or impossible coordinates; both are logged rather than returned as
// errors. System airports and navaids from ctx that the decoded routes
// reference are included in the Document.
func DecodeFileSet(files map[string][]byte, ctx DecodeContext, opts ...DecodeOption) (*flightdoc.Document, error) {
	lg := decodeLogger(opts)

	byType := make(map[FileType][]byte)
	for _, name := range slices.Sorted(maps.Keys(files)) {
		data := files[name]
		t, err := DetectFileType(name, data)
		if err != nil {
			return nil, err
		}
		if _, dup := byType[t]; dup {
			lg.Warn("a109: duplicate file ignored", slog.String("file", name), slog.String("type", t.String()))
			continue
		}
		byType[t] = data
	}

	doc := &flightdoc.Document{}
	tables := contextTables(ctx)
	var err error
	if b, ok := byType[FileAirport]; ok {
		if doc.UserAirports, tables.airportSlots, err = decodeTable(airportCodec, b, lg); err != nil {
			return nil, err
		}
	}
	if b, ok := byType[FileNavaid]; ok {
		if doc.UserNavaids, tables.navaidSlots, err = decodeTable(navaidCodec, b, lg); err != nil {
			return nil, err
		}
	}
	if b, ok := byType[FileWaypoint]; ok {
		if doc.UserWaypoints, tables.waypointSlots, err = decodeTable(waypointCodec, b, lg); err != nil {
			return nil, err
		}
	}
	if b, ok := byType[FileRoute]; ok {
		if doc.Routes, err = decodeRoutes(b, tables, lg); err != nil {
			return nil, err
		}
	}

	for _, r := range doc.Routes {
		for _, p := range r.Points {
			switch p.Kind {
			case flightdoc.KindSystemAirport:
				if i := slices.IndexFunc(ctx.SystemAirports, func(a flightdoc.SystemAirport) bool { return a.ID == p.RefID }); i != -1 && doc.SystemAirportIndex(p.RefID) == -1 {
					doc.SystemAirports = append(doc.SystemAirports, ctx.SystemAirports[i])
				}
			case flightdoc.KindSystemNavaid:
				if i := slices.IndexFunc(ctx.SystemNavaids, func(n flightdoc.SystemNavaid) bool { return n.ID == p.RefID }); i != -1 && doc.SystemNavaidIndex(p.RefID) == -1 {
					doc.SystemNavaids = append(doc.SystemNavaids, ctx.SystemNavaids[i])
				}
			}
		}
	}
	return doc, nil
}
