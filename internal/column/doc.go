// Package column holds the columnar batch types exchanged between dictionary
// sources and lookups.
//
// A Column is an ordered run of values of one field.Type. Numeric columns are
// typed Vectors, strings are Strings, and a single value repeated N times is a
// Const. A Block groups equally long named columns; sources stream Blocks whose
// key columns come first.
package column
