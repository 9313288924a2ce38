// Package location resolves the viewer's coordinate fix behind a foreground
// permission check.
package location

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/lojista/internal/domain/model"
	"github.com/okian/lojista/pkg/logger"
	"github.com/okian/lojista/pkg/metrics"
)

const defaultFixTimeout = 15 * time.Second

// Status is the answer to a permission request.
type Status int

// Permission answers.
const (
	Denied Status = iota
	Granted
)

func (s Status) String() string {
	if s == Granted {
		return "granted"
	}
	return "denied"
}

// Permissions asks the host for foreground location access.
type Permissions interface {
	RequestForeground(ctx context.Context) (Status, error)
}

// PositionSource produces one current position.
type PositionSource interface {
	CurrentPosition(ctx context.Context) (model.Coordinates, error)
}

// Resolver acquires a single coordinate fix.
type Resolver interface {
	Acquire(ctx context.Context) (model.Coordinates, error)
}

// Option configures a resolver.
type Option func(*resolver)

// WithTimeout bounds the position lookup. Permission prompts are not bounded.
func WithTimeout(d time.Duration) Option {
	return func(r *resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

type resolver struct {
	perms    Permissions
	source   PositionSource
	timeout  time.Duration
	logger   logger.Logger
	validate *validator.Validate
}

// NewResolver combines a permission gate with a position source.
func NewResolver(perms Permissions, source PositionSource, opts ...Option) Resolver {
	r := &resolver{
		perms:    perms,
		source:   source,
		timeout:  defaultFixTimeout,
		logger:   logger.Discard(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire returns ErrPermissionDenied when access is refused and wraps any fix
// failure, including timeouts and out-of-range readings, in ErrFixUnavailable.
func (r *resolver) Acquire(ctx context.Context) (model.Coordinates, error) {
	status, err := r.perms.RequestForeground(ctx)
	if err != nil {
		metrics.RecordLocation(metrics.OutcomeError)
		return model.Coordinates{}, fmt.Errorf("%w: permission request: %w", ErrFixUnavailable, err)
	}
	if status != Granted {
		metrics.RecordLocation(metrics.OutcomeDenied)
		r.logger.Warn(ctx, "location permission denied")
		return model.Coordinates{}, ErrPermissionDenied
	}

	fixCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	coords, err := r.source.CurrentPosition(fixCtx)
	if err != nil {
		outcome := metrics.OutcomeError
		if fixCtx.Err() != nil {
			outcome = metrics.OutcomeTimeout
		}
		metrics.RecordLocation(outcome)
		return model.Coordinates{}, fmt.Errorf("%w: %w", ErrFixUnavailable, err)
	}
	if err := r.validate.Struct(coords); err != nil {
		metrics.RecordLocation(metrics.OutcomeError)
		return model.Coordinates{}, fmt.Errorf("%w: %v", ErrFixUnavailable, err)
	}

	metrics.RecordLocation(metrics.OutcomeSuccess)
	r.logger.Debug(ctx, "location fix acquired", logger.String("coords", coords.String()))
	return coords, nil
}
