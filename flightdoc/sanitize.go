package flightdoc

import "strings"

// ValidIDChar reports whether c belongs to the restricted identifier
// alphabet (A-Z, 0-9 and '-').
func ValidIDChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-'
}

// SanitizeID uppercases s, drops characters outside the identifier
// alphabet and truncates the result to max characters. A max <= 0 means no
// truncation.
func SanitizeID(s string, max int) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if r < 0x80 && ValidIDChar(byte(r)) {
			b.WriteByte(byte(r))
			if max > 0 && b.Len() == max {
				break
			}
		}
	}
	return b.String()
}

// SanitizeRouteName applies the route name/RouteID rules.
func SanitizeRouteName(s string) string {
	return SanitizeID(s, MaxRouteIDLen)
}

// ValidUserID reports whether id could be stored as a user entity id
// unchanged.
func ValidUserID(id string) bool {
	return id != "" && len(id) <= MaxUserIDLen && SanitizeID(id, 0) == id
}

// InferWaypointType recovers the managed type of a waypoint from an id of
// the form {prefix}{NN}. Anything else is Custom.
func InferWaypointType(id string) WaypointType {
	for _, t := range ManagedWaypointTypes {
		p := t.Prefix()
		if len(id) != len(p)+2 || !strings.HasPrefix(id, p) {
			continue
		}
		if isDigit(id[len(p)]) && isDigit(id[len(p)+1]) {
			return t
		}
	}
	return WaypointCustom
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
