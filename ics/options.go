package ics

import "go.uber.org/zap"

// Option configures how a File is opened or created.
type Option func(*options)

type options struct {
	version int
	logger  *zap.Logger
}

func defaultOptions() *options {
	return &options{
		version: 2,
		logger:  zap.NewNop(),
	}
}

// WithVersion selects the ICS version (1 or 2) written by Create. Other
// values are ignored.
func WithVersion(v int) Option {
	return func(o *options) {
		if v == 1 || v == 2 {
			o.version = v
		}
	}
}

// WithLogger sets the logger used for debug events. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
