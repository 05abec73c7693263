// Package structure describes the shape of a dictionary: its key (a single
// UInt64 id or a composite key of typed columns), its attributes, and its
// identity.
//
// A Structure is immutable once validated. Lookups consult it to resolve
// attribute names and to check the types of caller-supplied key columns.
package structure
