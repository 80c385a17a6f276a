package engine

// Option configures a Save/Load/TrySave/TryLoad call.
type Option func(*context)

// WithMaxDepth overrides the default recursion depth cap (1000) that
// traversal enforces before failing with xerrors.RecursionLimit.
func WithMaxDepth(n int) Option {
	return func(c *context) { c.maxDepth = n }
}
