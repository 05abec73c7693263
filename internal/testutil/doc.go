// Package testutil provides test doubles for dictionary tests: a source
// wrapper that counts round trips and streams, and a fixed identity
// generator for deterministic golden output.
package testutil
