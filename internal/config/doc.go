// Package config loads dictionary definition files.
//
// A definition names the dictionary, picks a layout, declares the structure
// (key and attribute columns) and configures exactly one source. Two file
// formats are accepted:
//
//   - YAML (.yaml, .yml), decoded strictly: unknown fields are errors
//   - CUE (.cue), unified with the embedded #Dictionary schema and validated
//     concrete before decoding
//
// Loading is split into three steps so callers can stop early:
//
//	file, err := config.Load("regions.yaml")    // parse
//	def, err := file.Compile(gen)               // structure + identity
//	h, err := config.Open(ctx, "regions.yaml")  // parse, compile, source, dictionary
//
// Attribute names are NFC normalized during compilation so that the names used
// in lookups match regardless of how the file was encoded.
package config
