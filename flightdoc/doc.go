// Package flightdoc holds the route and point database model shared by the
// A109 codec, the identifier allocator and the merge engine.
//
// A Document is an arena: it owns the route list and every point array.
// Routes refer to points through RoutePointRef values, a (kind, id) pair
// that is looked up on demand and never holds a pointer. Changing or
// removing an entity therefore requires an explicit pass over the routes,
// which the Delete* and Rename* methods perform.
//
// Documents are treated as values. Every mutating method returns a fresh
// deep copy, so a caller holding the previous Document never observes a
// partially applied change.
package flightdoc
