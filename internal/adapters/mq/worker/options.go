package worker

import (
	"github.com/okian/lojista/pkg/logger"
)

// Option configures a worker or a pool.
type Option func(*settings)

type settings struct {
	name     string
	logger   logger.Logger
	capacity int
}

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithQueueCapacity bounds the pool's task queue.
func WithQueueCapacity(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.capacity = n
		}
	}
}
