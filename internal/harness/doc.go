// Package harness runs lookup scenarios against a dictionary and records a
// deterministic trace of every step.
//
// A scenario is a YAML file holding an inline dictionary definition (usually
// with a memory source), a list of steps and optional assertions:
//
//	name: region_hierarchy
//	description: Membership walks the parent chain one round trip per step
//	dictionary:
//	  name: regions
//	  layout: direct
//	  structure:
//	    id: {name: id}
//	    attributes:
//	      - {name: parent, type: UInt64, hierarchical: true}
//	  source:
//	    memory:
//	      rows: [[1, 2], [2, 3], [3, 0]]
//	steps:
//	  - op: isin
//	    child: 1
//	    ancestor: 3
//	    expect: [true]
//	assertions:
//	  - {type: round_trips, step: 0, count: 2}
//
// Each step records its operation, inputs, output (or error) and the number
// of source round trips it caused. The trace is serialized as canonical JSON
// so that it can be compared byte for byte with a golden file.
//
// Scenarios run with a fixed dictionary UUID and a counting source wrapper,
// so the same scenario always produces the same trace.
package harness
