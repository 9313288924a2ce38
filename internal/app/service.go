// Package service wires the merchant screen to its collaborators and runs it
// without a terminal: commands execute on a worker pool and their results are
// applied one at a time from a mailbox.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/lojista/internal/adapters/mq/queue"
	"github.com/okian/lojista/internal/adapters/mq/worker"
	"github.com/okian/lojista/internal/app/screen"
	"github.com/okian/lojista/internal/domain/location"
	"github.com/okian/lojista/internal/domain/rating"
	"github.com/okian/lojista/pkg/logger"
)

const (
	defaultWorkerCount = 4
	defaultMailboxSize = 64
	shutdownTimeout    = 5 * time.Second
)

// Sentinel errors.
var (
	ErrNotConfigured = errors.New("service is missing a collaborator")
	ErrRatingBlocked = errors.New("rating unavailable")
)

// Backend is a remote source for both merchant profiles and products.
type Backend interface {
	screen.ProfileFetcher
	screen.ProductsFetcher
}

// Service builds screen controllers and drives them headlessly.
type Service struct {
	resolver  location.Resolver
	profiles  screen.ProfileFetcher
	products  screen.ProductsFetcher
	submitter rating.Submitter
	now       func() time.Time

	workerCount int
	mailboxSize int

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithResolver sets the location resolver.
func WithResolver(r location.Resolver) Option {
	return func(s *Service) { s.resolver = r }
}

// WithBackend sets both the profile and products fetchers.
func WithBackend(b Backend) Option {
	return func(s *Service) {
		if b != nil {
			s.profiles, s.products = b, b
		}
	}
}

// WithProfiles sets the profile fetcher.
func WithProfiles(f screen.ProfileFetcher) Option {
	return func(s *Service) { s.profiles = f }
}

// WithProducts sets the products fetcher.
func WithProducts(f screen.ProductsFetcher) Option {
	return func(s *Service) { s.products = f }
}

// WithSubmitter sets where submitted ratings go. The default only logs.
func WithSubmitter(r rating.Submitter) Option {
	return func(s *Service) { s.submitter = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithWorkerCount sets the number of goroutines running commands.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithMailboxSize bounds the number of completed commands waiting to be applied.
func WithMailboxSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.mailboxSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: defaultWorkerCount,
		mailboxSize: defaultMailboxSize,
		logger:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Controller returns a fresh screen controller bound to the service's
// collaborators.
func (s *Service) Controller() (*screen.Controller, error) {
	if s.resolver == nil || s.profiles == nil || s.products == nil {
		return nil, ErrNotConfigured
	}
	return screen.New(s.resolver, s.profiles, s.products,
		screen.WithSubmitter(s.submitter),
		screen.WithLogger(s.logger.Named("screen")),
		screen.WithClock(s.now),
	), nil
}

// Show opens the screen for merchantID and returns its state once every flow
// has completed.
func (s *Service) Show(ctx context.Context, merchantID string) (screen.State, error) {
	ctrl, err := s.Controller()
	if err != nil {
		return screen.State{}, err
	}
	loop := s.newLoop(ctx, ctrl)
	defer loop.close()

	if err := loop.run(ctrl.Open(merchantID)); err != nil {
		return ctrl.State(), err
	}
	return ctrl.State(), nil
}

// Rate opens the screen, waits for the profile, then submits stars and
// feedback through the rating modal. Feedback longer than the modal allows is
// cut like typed input would be.
func (s *Service) Rate(ctx context.Context, merchantID string, stars int, feedback string) (screen.State, error) {
	ctrl, err := s.Controller()
	if err != nil {
		return screen.State{}, err
	}
	loop := s.newLoop(ctx, ctrl)
	defer loop.close()

	if err := loop.run(ctrl.Open(merchantID)); err != nil {
		return ctrl.State(), err
	}
	if err := ctrl.OpenRating(); err != nil {
		st := ctrl.State()
		return st, fmt.Errorf("%w: %s", ErrRatingBlocked, st.ErrorMessage)
	}
	if err := ctrl.SetStars(stars); err != nil {
		ctrl.CloseRating()
		return ctrl.State(), err
	}
	if _, err := ctrl.SetFeedback(feedback); err != nil {
		return ctrl.State(), err
	}
	cmds, err := ctrl.SubmitRating()
	if err != nil {
		return ctrl.State(), err
	}
	if err := loop.run(cmds); err != nil {
		return ctrl.State(), err
	}
	st := ctrl.State()
	if st.Notice == screen.TextRatingFailed {
		return st, fmt.Errorf("%w: %s", ErrRatingBlocked, st.Notice)
	}
	return st, nil
}

// loop is the single goroutine that applies messages to a controller. Commands
// run on the pool and post their messages to the mailbox.
type loop struct {
	ctx     context.Context
	cancel  context.CancelFunc
	ctrl    *screen.Controller
	mailbox *queue.InMemoryQueue[screen.Msg]
	pool    *worker.Pool[screen.Msg]
	logger  logger.Logger
}

func (s *Service) newLoop(ctx context.Context, ctrl *screen.Controller) *loop {
	ctx, cancel := context.WithCancel(ctx)
	mailbox := queue.NewInMemoryQueue[screen.Msg](queue.WithCapacity(s.mailboxSize), queue.WithDepthGauge())
	pool := worker.NewPool[screen.Msg](s.workerCount, mailbox,
		worker.WithQueueCapacity(s.mailboxSize),
		worker.WithLogger(s.logger),
	)
	pool.Start(ctx)
	return &loop{ctx: ctx, cancel: cancel, ctrl: ctrl, mailbox: mailbox, pool: pool, logger: s.logger}
}

func (l *loop) run(cmds []screen.Cmd) error {
	if err := l.dispatch(cmds); err != nil {
		return err
	}
	for !l.ctrl.Settled() {
		select {
		case <-l.ctx.Done():
			return l.ctx.Err()
		case msg, ok := <-l.mailbox.Dequeue():
			if !ok {
				return queue.ErrClosed
			}
			if err := l.dispatch(l.ctrl.Update(msg)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *loop) dispatch(cmds []screen.Cmd) error {
	for _, cmd := range cmds {
		if err := l.pool.Submit(l.ctx, worker.Task[screen.Msg](cmd)); err != nil {
			return fmt.Errorf("dispatch command: %w", err)
		}
	}
	return nil
}

func (l *loop) close() {
	l.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := l.pool.Shutdown(ctx); err != nil {
		l.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	_ = l.mailbox.Close()
}
