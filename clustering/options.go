package clustering

import "github.com/rs/zerolog"

// Defaults for the k-means search.
const (
	DefaultSeed          int64 = 42
	DefaultRestarts            = 10
	DefaultMaxIterations       = 300
	DefaultTolerance           = 1e-4
)

type options struct {
	seed          int64
	restarts      int
	maxIterations int
	tolerance     float64
	logger        zerolog.Logger
}

// Option configures a clustering run.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		seed:          DefaultSeed,
		restarts:      DefaultRestarts,
		maxIterations: DefaultMaxIterations,
		tolerance:     DefaultTolerance,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.restarts < 1 {
		o.restarts = 1
	}
	if o.maxIterations < 1 {
		o.maxIterations = 1
	}
	return o
}

// WithSeed sets the seed every k-means restart stream is derived from.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithRestarts sets how many independent k-means initializations are tried.
// The run with the lowest inertia is kept.
func WithRestarts(n int) Option {
	return func(o *options) {
		o.restarts = n
	}
}

// WithMaxIterations caps Lloyd iterations per restart.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithTolerance sets the centroid-shift threshold below which a restart stops.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// WithLogger routes debug output of the search and balancing steps.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
