// Package arena provides a call-scoped, growable byte arena for composite keys.
//
// A key serialized into the arena is addressed by a Ref, an offset and length
// into the arena buffer. Refs stay valid when the buffer grows because they
// never hold a pointer into it.
//
// # Lifetime
//
// An Arena belongs to exactly one call. The call releases it with
// defer, so every exit path (including errors) drops the buffer. Any access
// after Release panics with ErrReleased.
package arena
