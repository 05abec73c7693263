// Package field provides the typed scalar values that flow through dictionaries.
//
// A Value is one cell: an attribute value, a key column value, or a configured
// default. Values are deliberately small: unsigned integers of every width are
// carried as UInt64, signed integers as Int64, floats as Float64. The declared
// width lives in Type and is enforced by Type.Convert.
//
// This package imports nothing internal. Every other package may import it.
package field
