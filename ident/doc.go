// Package ident allocates and repairs the short identifiers used by user
// waypoints and routes.
//
// Waypoints come in two flavours. Managed waypoints (WPT, IP, TGT, HLD,
// CLI, DES) are named after a type prefix and a two-digit serial, and
// their id and name always agree; NextAvailable and Renumber handle them.
// Custom waypoints are named freely and only need an id that is unique and
// fits in five characters; MakeUnique handles them.
package ident
