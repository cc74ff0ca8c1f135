package a109

import (
	"github.com/logicossoftware/go-a109/flightdoc"
)

// Waypoint record layout (28 bytes):
//
//	0-3   latitude
//	4-7   longitude
//	8-19  name, six-bit
//	21    route membership, (first route index + 1) * 8, or 0
//	24-27 id, six-bit through the waypoint id transform
//
// Type and elevation are not stored. On decode the type is inferred from
// the id.
const (
	waypointLatOff    = 0
	waypointLonOff    = 4
	waypointNameOff   = 8
	waypointNameLen   = 12
	waypointRouteOff  = 21
	waypointIDOff     = 24
	noRouteMembership = -1
)

// routeMembershipByte encodes the index of the first exported route that
// uses the waypoint. The product is truncated to a byte.
func routeMembershipByte(firstRoute int) byte {
	if firstRoute < 0 {
		return 0
	}
	return byte((firstRoute + 1) * 8)
}

func encodeWaypoint(rec []byte, w flightdoc.Waypoint, firstRoute int) {
	putFloat(rec[waypointLatOff:], w.Location.Lat)
	putFloat(rec[waypointLonOff:], w.Location.Lon)
	putText(rec[waypointNameOff:waypointNameOff+waypointNameLen], w.Name, flightdoc.MaxWaypointName)
	rec[waypointRouteOff] = routeMembershipByte(firstRoute)
	id := EncodeWaypointID(w.ID)
	copy(rec[waypointIDOff:], id[:])
}

// EncodeWaypoints builds WAYPOINT.P01. firstRoute gives, per waypoint, the
// index of the first exported route it appears on, or -1.
func EncodeWaypoints(waypoints []flightdoc.Waypoint, firstRoute []int) []byte {
	n := min(len(waypoints), TableCapacity)
	buf := newTable(waypointRecordSize, n)
	for i := range n {
		fr := noRouteMembership
		if i < len(firstRoute) {
			fr = firstRoute[i]
		}
		encodeWaypoint(tableRecord(buf, waypointRecordSize, i), waypoints[i], fr)
	}
	return buf
}

// waypointAbsent reports whether a slot is empty: its id field is all zero.
func waypointAbsent(rec []byte) bool {
	return allZero(rec[waypointIDOff : waypointIDOff+4])
}

func decodeWaypoint(rec []byte) (flightdoc.Waypoint, string) {
	id := DecodeWaypointID(rec[waypointIDOff : waypointIDOff+4])
	w := flightdoc.Waypoint{
		ID:   id,
		Name: DecodeText(rec[waypointNameOff : waypointNameOff+waypointNameLen]),
		Type: flightdoc.InferWaypointType(id),
		Location: flightdoc.Point{
			Lat: getFloat(rec[waypointLatOff:]),
			Lon: getFloat(rec[waypointLonOff:]),
		},
	}
	switch {
	case w.ID == "":
		return w, "empty id"
	case !validLocation(w.Location):
		return w, "bad coordinates " + w.Location.String()
	}
	if w.Managed() {
		// Managed waypoints carry their id as name.
		w.Name = w.ID
	}
	return w, ""
}
