// Package direct implements dictionaries that never cache: every lookup goes
// straight to the dictionary's source.
//
// Two layouts are provided. "direct" is keyed by a single UInt64 id and
// supports hierarchy queries through a hierarchical parent attribute.
// "complex_key_direct" is keyed by several typed columns serialized into one
// byte key per row.
//
// # Lookup
//
// GetColumn and HasKeys extract one key per input row, ask the source for
// exactly those keys, and merge the answer back against the request:
//
//	requested: 10 20 30
//	source:    10    30
//	result:    v10 default v30
//
// The source may leave keys out but must return the ones it has in request
// order. Keys it leaves out get the default for that row: the value of the
// caller's defaults column, or the attribute's null value.
//
// # Hierarchy
//
// IsIn walks parent links one source round trip per step until it reaches the
// ancestor, the null value, or the depth bound. Hitting the bound answers
// false.
//
// # Concurrency
//
// Calls are synchronous and share nothing but the query counter, which is
// atomic. Composite keys live in an arena owned by one call and released when
// it returns.
package direct
