package api

import "github.com/okian/podium/pkg/logger"

// ServerOption applies a configuration option to the Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	corsOrigin   string
	maxBodyBytes int64
	logger       logger.Logger
}

func defaultServerOptions() serverOptions {
	return serverOptions{
		corsOrigin:   "*",
		maxBodyBytes: 1 << 20,
		logger:       logger.Get().Named("http"),
	}
}

// WithCORSOrigin sets the Access-Control-Allow-Origin value.
func WithCORSOrigin(origin string) ServerOption {
	return func(o *serverOptions) {
		if origin != "" {
			o.corsOrigin = origin
		}
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used by handlers and middleware.
func WithLogger(l logger.Logger) ServerOption {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
