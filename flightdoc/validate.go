package flightdoc

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidDocument is wrapped by every error Validate returns.
var ErrInvalidDocument = errors.New("flightdoc: invalid document")

// Validate checks the consistency rules of d and returns the first violation:
//   - user ids are valid and unique within their array
//   - system ids are non-empty and unique within their array
//   - user locations are finite and within range
//   - managed waypoints carry their id as name, with their type's prefix
//   - routes have unique stable IDs and unique, sanitized RouteIDs
//   - routes hold at most MaxRoutePoints points, each of which resolves
//   - ActiveRouteID is empty or names a route
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if err := validateUserIDs("airport", len(d.UserAirports), func(i int) (string, Point) {
		return d.UserAirports[i].ID, d.UserAirports[i].Location
	}); err != nil {
		return err
	}
	if err := validateUserIDs("navaid", len(d.UserNavaids), func(i int) (string, Point) {
		return d.UserNavaids[i].ID, d.UserNavaids[i].Location
	}); err != nil {
		return err
	}
	if err := validateUserIDs("waypoint", len(d.UserWaypoints), func(i int) (string, Point) {
		return d.UserWaypoints[i].ID, d.UserWaypoints[i].Location
	}); err != nil {
		return err
	}
	for _, w := range d.UserWaypoints {
		if !w.Managed() {
			continue
		}
		if w.Name != w.ID {
			return fmt.Errorf("%w: %s waypoint %q has name %q", ErrInvalidDocument, w.Type, w.ID, w.Name)
		}
		if !strings.HasPrefix(w.ID, w.Type.Prefix()) {
			return fmt.Errorf("%w: %s waypoint %q lacks its prefix", ErrInvalidDocument, w.Type, w.ID)
		}
	}
	if err := validateSystemIDs("system airport", len(d.SystemAirports), func(i int) string { return d.SystemAirports[i].ID }); err != nil {
		return err
	}
	if err := validateSystemIDs("system navaid", len(d.SystemNavaids), func(i int) string { return d.SystemNavaids[i].ID }); err != nil {
		return err
	}

	seenIDs := make(map[string]struct{}, len(d.Routes))
	seenRouteIDs := make(map[string]struct{}, len(d.Routes))
	for i, r := range d.Routes {
		if r.ID == "" {
			return fmt.Errorf("%w: route %d has empty ID", ErrInvalidDocument, i)
		}
		if _, ok := seenIDs[r.ID]; ok {
			return fmt.Errorf("%w: duplicate route ID %q", ErrInvalidDocument, r.ID)
		}
		seenIDs[r.ID] = struct{}{}
		if r.RouteID == "" || SanitizeRouteName(r.RouteID) != r.RouteID {
			return fmt.Errorf("%w: route %q has invalid RouteID %q", ErrInvalidDocument, r.ID, r.RouteID)
		}
		if _, ok := seenRouteIDs[r.RouteID]; ok {
			return fmt.Errorf("%w: duplicate RouteID %q", ErrInvalidDocument, r.RouteID)
		}
		seenRouteIDs[r.RouteID] = struct{}{}
		if len(r.Points) > MaxRoutePoints {
			return fmt.Errorf("%w: route %s has %d points", ErrInvalidDocument, r.RouteID, len(r.Points))
		}
		for j, p := range r.Points {
			if !d.Resolve(p) {
				return fmt.Errorf("%w: route %s point %d: dangling %v", ErrInvalidDocument, r.RouteID, j, p)
			}
		}
	}
	if d.ActiveRouteID != "" && d.RouteIndex(d.ActiveRouteID) == -1 {
		return fmt.Errorf("%w: active route %q does not exist", ErrInvalidDocument, d.ActiveRouteID)
	}
	return nil
}

func validateUserIDs(what string, n int, at func(int) (string, Point)) error {
	seen := make(map[string]struct{}, n)
	for i := range n {
		id, loc := at(i)
		if !ValidUserID(id) {
			return fmt.Errorf("%w: %s %d has invalid id %q", ErrInvalidDocument, what, i, id)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: duplicate %s id %q", ErrInvalidDocument, what, id)
		}
		seen[id] = struct{}{}
		if !validPoint(loc) {
			return fmt.Errorf("%w: %s %q is at %v", ErrInvalidDocument, what, id, loc)
		}
	}
	return nil
}

func validateSystemIDs(what string, n int, id func(int) string) error {
	seen := make(map[string]struct{}, n)
	for i := range n {
		s := id(i)
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: %s %d has empty id", ErrInvalidDocument, what, i)
		}
		if _, ok := seen[s]; ok {
			return fmt.Errorf("%w: duplicate %s id %q", ErrInvalidDocument, what, s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

func validPoint(p Point) bool {
	lat, lon := float64(p.Lat), float64(p.Lon)
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
