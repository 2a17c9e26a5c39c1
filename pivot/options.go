package pivot

// ============================================================================
// ENGINE OPTIONS — Functional options for ComputePivot()
// ============================================================================

// Strategy is a host-supplied aggregation. It receives the bucket values and
// the value field's full dataset values, and returns the aggregated result.
// A panic or error resolves to a null cell — it never propagates.
type Strategy func(values []float64, allValues []float64) (float64, error)

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Strategies map[string]Strategy // named custom aggregation strategies
}

// WithCustomAggregation registers a named aggregation strategy.
// A ValueField with Aggregation "custom" selects it by CustomName.
// Strategies stay host-side; configs only carry the opaque name.
func WithCustomAggregation(name string, fn Strategy) Option {
	return func(c *config) {
		if c.Strategies == nil {
			c.Strategies = make(map[string]Strategy)
		}
		c.Strategies[name] = fn
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
