package direct

// DefaultMaxHierarchyDepth bounds parent traversal in IsIn.
const DefaultMaxHierarchyDepth = 1000

type options struct {
	maxDepth int
}

func defaultOptions() options {
	return options{maxDepth: DefaultMaxHierarchyDepth}
}

// Option configures a dictionary.
type Option func(*options)

// WithMaxHierarchyDepth sets how many parent steps IsIn takes before giving up.
//
// Example:
//
//	dict, err := direct.NewSimple(id, s, src, direct.WithMaxHierarchyDepth(64))
func WithMaxHierarchyDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}
