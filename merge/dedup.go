package merge

import (
	"math"
	"strings"

	"github.com/logicossoftware/go-a109/flightdoc"
)

// Tolerance is the largest coordinate difference, in degrees on each axis,
// at which two route points are taken to be the same place.
const Tolerance = 0.00001

// placed is a route together with the document its references resolve in.
type placed struct {
	route flightdoc.Route
	doc   *flightdoc.Document
}

func routeName(r flightdoc.Route) string {
	if r.Name != "" {
		return r.Name
	}
	return r.RouteID
}

// duplicate reports whether a and b describe the same route: same name
// ignoring case, same length, and at each position the same kind of point
// with either the same id or coordinates that agree. A point whose
// coordinates cannot be looked up never agrees.
func duplicate(a, b placed) bool {
	if !strings.EqualFold(routeName(a.route), routeName(b.route)) {
		return false
	}
	if len(a.route.Points) != len(b.route.Points) {
		return false
	}
	for i, pa := range a.route.Points {
		pb := b.route.Points[i]
		if pa.Kind != pb.Kind {
			return false
		}
		if pa.RefID == pb.RefID {
			continue
		}
		la, ok := a.doc.Locate(pa)
		if !ok {
			return false
		}
		lb, ok := b.doc.Locate(pb)
		if !ok {
			return false
		}
		if !near(la.Lat, lb.Lat) || !near(la.Lon, lb.Lon) {
			return false
		}
	}
	return true
}

// near compares two float32 coordinates. Tolerance is widened by one
// float32 step at the larger magnitude, since a value entered as exactly
// Tolerance away may be stored slightly further.
func near(a, b float32) bool {
	m := max(abs32(a), abs32(b))
	ulp := float64(math.Nextafter32(m, float32(math.Inf(1))) - m)
	return math.Abs(float64(a)-float64(b)) <= Tolerance+ulp
}

func abs32(f float32) float32 {
	return math.Float32frombits(math.Float32bits(f) &^ (1 << 31))
}
