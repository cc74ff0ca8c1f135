// Package merge combines imported flight documents with an existing one.
//
// A merge never fails and never modifies its inputs: Merge returns a fresh
// Document, and callers replace their live document with it in one step.
// Several imports can be folded together first with Accumulate, so the live
// document only ever sees the final result.
package merge
