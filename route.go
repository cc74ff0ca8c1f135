package a109

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/logicossoftware/go-a109/flightdoc"
)

// Route record layout (500 bytes):
//
//	0-7    name (the RouteID), six-bit
//	8-11   start: 3-byte partial id + 1-byte db index
//	12-15  destination: same layout
//	16     (startType<<5) | (destType<<2)
//	17     point count / 8
//	18     (point count % 8) * 32
//	20-499 up to 40 point entries of 12 bytes
//
// Point entry: byte 0 is the 1-based db index doubled (0 if the point is
// not in an exported table), bytes 4-7 the six-bit id and byte 11 the type
// code. A system airport at either end is carried by the logistics header
// only and left out of the point list.
const (
	routeNameOff   = 0
	routeStartOff  = 8
	routeDestOff   = 12
	routeStatusOff = 16
	routeCountOff  = 17
	routePointsOff = 20
	routePointSize = 12

	pointIndexOff = 0
	pointIDOff    = 4
	pointTypeOff  = 11

	pointTypeAirport    = 0x5C
	pointTypeWaypoint   = 0x6C
	pointTypeNavaid     = 0x7C
	pointTypeTerminator = 0x8C
)

// Logistics header endpoint codes.
const (
	endpointNone          = 0b010
	endpointSystemAirport = 0b100
	endpointUserAirport   = 0b101

	// defaultRouteStatus is the status byte with no endpoints.
	defaultRouteStatus = endpointNone<<5 | endpointNone<<2 // 0x48
)

// Function variables for testing injection.
var newRouteID = uuid.NewString

// exportIndex maps user entity ids to their slot in the exported tables.
type exportIndex struct {
	airports  map[string]int
	navaids   map[string]int
	waypoints map[string]int
}

func newExportIndex(doc *flightdoc.Document, nAirports, nNavaids, nWaypoints int) exportIndex {
	ix := exportIndex{
		airports:  make(map[string]int, nAirports),
		navaids:   make(map[string]int, nNavaids),
		waypoints: make(map[string]int, nWaypoints),
	}
	for i := range nAirports {
		ix.airports[doc.UserAirports[i].ID] = i
	}
	for i := range nNavaids {
		ix.navaids[doc.UserNavaids[i].ID] = i
	}
	for i := range nWaypoints {
		ix.waypoints[doc.UserWaypoints[i].ID] = i
	}
	return ix
}

// slot returns the exported table index of the entity ref points at.
func (ix exportIndex) slot(ref flightdoc.RoutePointRef) (int, bool) {
	var m map[string]int
	switch ref.Kind {
	case flightdoc.KindUserAirport:
		m = ix.airports
	case flightdoc.KindUserNavaid:
		m = ix.navaids
	case flightdoc.KindUserWaypoint:
		m = ix.waypoints
	default:
		return 0, false
	}
	i, ok := m[ref.RefID]
	return i, ok
}

func pointTypeCode(k flightdoc.PointKind) byte {
	switch {
	case k.IsAirport():
		return pointTypeAirport
	case k.IsNavaid():
		return pointTypeNavaid
	default:
		return pointTypeWaypoint
	}
}

// routeName is the text written to the record's name field.
func routeName(r flightdoc.Route) string {
	if r.RouteID != "" {
		return r.RouteID
	}
	return r.Name
}

// putEndpoint fills a 4-byte logistics endpoint and returns its type code.
func putEndpoint(dst []byte, ref flightdoc.RoutePointRef, ix exportIndex) byte {
	switch ref.Kind {
	case flightdoc.KindSystemAirport:
		var id [4]byte
		putText(id[:], ref.RefID, flightdoc.MaxUserIDLen)
		copy(dst[:3], id[:3])
		dst[3] = 0
		return endpointSystemAirport
	case flightdoc.KindUserAirport:
		i, ok := ix.slot(ref)
		if !ok {
			return endpointNone
		}
		var id [4]byte
		putText(id[:], ref.RefID, flightdoc.MaxUserIDLen)
		copy(dst[:3], id[:3])
		dst[3] = byte(i + 1)
		return endpointUserAirport
	default:
		return endpointNone
	}
}

// encodeRoute writes one route record and returns how many points did not
// fit.
func encodeRoute(rec []byte, r flightdoc.Route, ix exportIndex) (dropped int) {
	putText(rec[routeNameOff:routeNameOff+recordNameLen], routeName(r), TextCapacity(recordNameLen))

	points := r.Points
	startCode, destCode := byte(endpointNone), byte(endpointNone)
	if len(points) > 0 {
		first := points[0]
		startCode = putEndpoint(rec[routeStartOff:routeStartOff+4], first, ix)
		if first.Kind == flightdoc.KindSystemAirport {
			points = points[1:]
		}
	}
	if len(r.Points) > 1 {
		last := r.Points[len(r.Points)-1]
		destCode = putEndpoint(rec[routeDestOff:routeDestOff+4], last, ix)
		if last.Kind == flightdoc.KindSystemAirport {
			points = points[:len(points)-1]
		}
	}
	rec[routeStatusOff] = startCode<<5 | destCode<<2

	if len(points) > flightdoc.MaxRoutePoints {
		dropped = len(points) - flightdoc.MaxRoutePoints
		points = points[:flightdoc.MaxRoutePoints]
	}
	n := len(points)
	rec[routeCountOff] = byte(n / 8)
	rec[routeCountOff+1] = byte((n % 8) * 32)

	for i, p := range points {
		e := rec[routePointsOff+i*routePointSize : routePointsOff+(i+1)*routePointSize]
		if slot, ok := ix.slot(p); ok {
			e[pointIndexOff] = byte((slot + 1) * 2)
		}
		putText(e[pointIDOff:pointIDOff+4], p.RefID, flightdoc.MaxUserIDLen)
		e[pointTypeOff] = pointTypeCode(p.Kind)
	}
	if n < flightdoc.MaxRoutePoints {
		rec[routePointsOff+n*routePointSize+pointTypeOff] = pointTypeTerminator
	}
	return dropped
}

// routeTables are what route points are resolved against on decode. The
// user tables are indexed by record slot, with "" for empty or skipped
// slots, so that db indices keep their meaning.
type routeTables struct {
	airportSlots   []string
	navaidSlots    []string
	waypointSlots  []string
	systemAirports []flightdoc.SystemAirport
	systemNavaids  []flightdoc.SystemNavaid
	lg             *slog.Logger
}

func userKind(code byte) (flightdoc.PointKind, bool) {
	switch code {
	case pointTypeAirport:
		return flightdoc.KindUserAirport, true
	case pointTypeNavaid:
		return flightdoc.KindUserNavaid, true
	case pointTypeWaypoint:
		return flightdoc.KindUserWaypoint, true
	default:
		return 0, false
	}
}

func (t routeTables) slots(code byte) []string {
	switch code {
	case pointTypeAirport:
		return t.airportSlots
	case pointTypeNavaid:
		return t.navaidSlots
	case pointTypeWaypoint:
		return t.waypointSlots
	default:
		return nil
	}
}

// resolveIndexed resolves a point entry that carries a db index. Indices
// outside the matching table, or naming an empty slot, are dropped.
func (t routeTables) resolveIndexed(code byte, idx int) (flightdoc.RoutePointRef, bool) {
	kind, ok := userKind(code)
	slots := t.slots(code)
	if !ok || idx >= len(slots) || slots[idx] == "" {
		return flightdoc.RoutePointRef{}, false
	}
	return flightdoc.RoutePointRef{Kind: kind, RefID: slots[idx]}, true
}

// resolveByID resolves a point entry without a db index: system entities
// first, then user entities of the same id.
func (t routeTables) resolveByID(code byte, id string) (flightdoc.RoutePointRef, bool) {
	if id == "" {
		return flightdoc.RoutePointRef{}, false
	}
	switch code {
	case pointTypeAirport:
		if slices.ContainsFunc(t.systemAirports, func(a flightdoc.SystemAirport) bool { return a.ID == id }) {
			return flightdoc.RoutePointRef{Kind: flightdoc.KindSystemAirport, RefID: id}, true
		}
	case pointTypeNavaid:
		if slices.ContainsFunc(t.systemNavaids, func(n flightdoc.SystemNavaid) bool { return n.ID == id }) {
			return flightdoc.RoutePointRef{Kind: flightdoc.KindSystemNavaid, RefID: id}, true
		}
	}
	if kind, ok := userKind(code); ok && slices.Contains(t.slots(code), id) {
		return flightdoc.RoutePointRef{Kind: kind, RefID: id}, true
	}
	return flightdoc.RoutePointRef{}, false
}

// systemAirportRef turns a logistics endpoint back into a system airport
// reference. The header only keeps the first four characters: a system
// airport with exactly that id wins, otherwise the one known system airport
// with that prefix supplies the full id. Endpoints naming no known system
// airport, or a prefix shared by several, are not resolved.
func (t routeTables) systemAirportRef(endpoint []byte) (flightdoc.RoutePointRef, bool) {
	var id [4]byte
	copy(id[:3], endpoint[:3])
	short := DecodeText(id[:])
	if short == "" {
		return flightdoc.RoutePointRef{}, false
	}
	var matches []string
	for _, a := range t.systemAirports {
		if a.ID == short {
			return flightdoc.RoutePointRef{Kind: flightdoc.KindSystemAirport, RefID: a.ID}, true
		}
		if strings.HasPrefix(a.ID, short) {
			matches = append(matches, a.ID)
		}
	}
	switch len(matches) {
	case 0:
		return flightdoc.RoutePointRef{}, false
	case 1:
		return flightdoc.RoutePointRef{Kind: flightdoc.KindSystemAirport, RefID: matches[0]}, true
	}
	orDiscard(t.lg).Warn("a109: ambiguous route endpoint", slog.String("prefix", short), slog.Any("candidates", matches))
	return flightdoc.RoutePointRef{}, false
}

// routeAbsent reports whether a route slot is empty.
func routeAbsent(rec []byte) bool {
	return rec[routeNameOff] == 0
}

// decodeRoute reads one route record. dropped counts point entries that
// could not be resolved.
func decodeRoute(rec []byte, t routeTables) (r flightdoc.Route, dropped int) {
	name := DecodeText(rec[routeNameOff : routeNameOff+recordNameLen])
	r = flightdoc.Route{ID: newRouteID(), RouteID: name, Name: name}

	status := rec[routeStatusOff]
	startCode, destCode := (status>>5)&0x7, (status>>2)&0x7

	n := int(rec[routeCountOff])*8 + int(rec[routeCountOff+1])/32
	n = min(n, flightdoc.MaxRoutePoints)
	for i := range n {
		e := rec[routePointsOff+i*routePointSize : routePointsOff+(i+1)*routePointSize]
		code := e[pointTypeOff]
		if code == pointTypeTerminator {
			break
		}
		var ref flightdoc.RoutePointRef
		var ok bool
		if idx := int(e[pointIndexOff])/2 - 1; idx >= 0 {
			ref, ok = t.resolveIndexed(code, idx)
		} else {
			ref, ok = t.resolveByID(code, DecodeText(e[pointIDOff:pointIDOff+4]))
		}
		if !ok {
			dropped++
			continue
		}
		r.Points = append(r.Points, ref)
	}

	if startCode == endpointSystemAirport {
		if ref, ok := t.systemAirportRef(rec[routeStartOff : routeStartOff+4]); ok {
			r.Points = append([]flightdoc.RoutePointRef{ref}, r.Points...)
		} else {
			dropped++
		}
	}
	if destCode == endpointSystemAirport {
		if ref, ok := t.systemAirportRef(rec[routeDestOff : routeDestOff+4]); ok {
			r.Points = append(r.Points, ref)
		} else {
			dropped++
		}
	}
	return r, dropped
}
