package ioc

import (
	"log/slog"
)

// DefaultMaxDepth is the resolution chain limit used when WithMaxDepth is
// not given.
const DefaultMaxDepth = 64

// Option configures a Container.
type Option interface {
	apply(*options)
}

// options holds container configuration.
type options struct {
	logger   *slog.Logger
	maxDepth int
	strict   bool
	id       string
}

// optionFunc adapts a function to Option.
type optionFunc func(*options)

func (f optionFunc) apply(opts *options) {
	f(opts)
}

func defaultOptions() *options {
	return &options{
		maxDepth: DefaultMaxDepth,
	}
}

// WithLogger sets the logger for resolution events. Records are emitted at
// debug level and carry the container ID. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(opts *options) {
		opts.logger = logger
	})
}

// WithMaxDepth bounds how many constructors, factories and methods may be
// in flight on one resolution chain. Values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return optionFunc(func(opts *options) {
		if depth > 0 {
			opts.maxDepth = depth
		}
	})
}

// WithStrictParameters makes method overrides that name an undeclared
// parameter fail with a ParameterNotFoundError instead of being ignored.
func WithStrictParameters() Option {
	return optionFunc(func(opts *options) {
		opts.strict = true
	})
}

// WithID sets the container ID. A random UUID is used otherwise.
func WithID(id string) Option {
	return optionFunc(func(opts *options) {
		opts.id = id
	})
}
