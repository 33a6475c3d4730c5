package repository

import (
	"os"
	"time"

	"github.com/okian/podium/pkg/logger"
)

// Option applies a configuration option to a gateway.
type Option func(*options)

type options struct {
	log         logger.Logger
	perm        os.FileMode
	busyTimeout time.Duration
}

func defaultOptions() options {
	return options{
		log:         logger.Get(),
		perm:        0o644,
		busyTimeout: 5 * time.Second,
	}
}

// WithLogger sets the logger used by the gateway.
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithFilePerm sets the permission bits of the snapshot file.
func WithFilePerm(perm os.FileMode) Option {
	return func(o *options) {
		if perm != 0 {
			o.perm = perm
		}
	}
}

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}
