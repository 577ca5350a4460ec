package gocas

import "log/slog"

// Defaults for the engine search bounds.
const (
	DefaultMaxExpandPower = 64
	DefaultFactorBudget   = 20000
	DefaultSeriesOrder    = 6
	DefaultMaxDepth       = 24
)

type options struct {
	logger         *slog.Logger
	maxExpandPower int
	factorBudget   int
	seriesOrder    int
	maxDepth       int
}

func defaultOptions() options {
	return options{
		logger:         slog.New(slog.DiscardHandler),
		maxExpandPower: DefaultMaxExpandPower,
		factorBudget:   DefaultFactorBudget,
		seriesOrder:    DefaultSeriesOrder,
		maxDepth:       DefaultMaxDepth,
	}
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the logger used for strategy tracing at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxExpandPower bounds the exponent up to which Expand multiplies out
// integer powers of sums.
func WithMaxExpandPower(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxExpandPower = n
		}
	}
}

// WithFactorBudget bounds the number of candidate divisors tried by the
// Kronecker search in Factor.
func WithFactorBudget(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.factorBudget = n
		}
	}
}

// WithSeriesOrder sets the starting truncation order used by Limit.
func WithSeriesOrder(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.seriesOrder = n
		}
	}
}

// WithMaxDepth bounds recursion in Integrate, Limit and Solve.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}
