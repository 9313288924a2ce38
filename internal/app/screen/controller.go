// Package screen implements the merchant profile screen state machine.
//
// The controller is not safe for concurrent use. Commands it returns may run on
// any goroutine, but their messages must be fed back through Update from one
// loop: bubbletea's Update in the terminal UI, the mailbox loop when headless.
package screen

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/okian/lojista/internal/domain/location"
	"github.com/okian/lojista/internal/domain/model"
	"github.com/okian/lojista/internal/domain/rating"
	"github.com/okian/lojista/pkg/logger"
	"github.com/okian/lojista/pkg/metrics"
)

// Sentinel errors for user actions.
var (
	ErrNotReady       = errors.New("merchant profile not loaded")
	ErrUnknownProduct = errors.New("unknown product")
)

// ProfileFetcher retrieves a merchant profile relative to a coordinate fix.
type ProfileFetcher interface {
	Merchant(ctx context.Context, id string, at model.Coordinates) (model.MerchantProfile, error)
}

// ProductsFetcher retrieves a merchant's products.
type ProductsFetcher interface {
	Products(ctx context.Context, merchantID string) ([]model.Product, error)
}

// Controller owns the screen state and orchestrates location, profile,
// products and rating flows.
type Controller struct {
	resolver  location.Resolver
	profiles  ProfileFetcher
	products  ProductsFetcher
	submitter rating.Submitter
	logger    logger.Logger
	now       func() time.Time

	state State
	modal rating.Modal
	// epoch is the generation Open started with. Rating completions are
	// tagged with it so a Reload does not discard them.
	epoch uint64

	locating         bool
	fetchingProfile  bool
	fetchingProducts bool
	submitting       int
}

// Option configures a Controller.
type Option func(*Controller)

// WithSubmitter replaces the default log-only rating submitter.
func WithSubmitter(s rating.Submitter) Option {
	return func(c *Controller) {
		if s != nil {
			c.submitter = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides time.Now for submission timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// New builds a controller. Open must be called before anything is fetched.
func New(resolver location.Resolver, profiles ProfileFetcher, products ProductsFetcher, opts ...Option) *Controller {
	c := &Controller{
		resolver: resolver,
		profiles: profiles,
		products: products,
		logger:   logger.Discard(),
		now:      time.Now,
		modal:    rating.NewModal(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.submitter == nil {
		c.submitter = rating.LogSubmitter{Logger: c.logger}
	}
	return c
}

// Open (re)initializes the screen for merchant id. All state from a previous
// merchant is dropped and in-flight completions for it will be discarded. It
// returns the location and products commands, which are independent.
func (c *Controller) Open(id string) []Cmd {
	gen := c.state.Generation + 1
	c.state = State{MerchantID: id, Generation: gen}
	c.epoch = gen
	c.modal = rating.NewModal()
	c.locating, c.fetchingProfile, c.fetchingProducts, c.submitting = false, false, false, 0
	metrics.RecordScreenOpen()

	if id == "" {
		c.state.Profile.Status = PaneError
		c.state.ErrorMessage = TextMissingMerchant
		return nil
	}

	c.logger.Info(context.Background(), "screen opened", logger.String("merchant", id), logger.Uint64("generation", gen))
	c.locating = true
	c.fetchingProducts = true
	return []Cmd{c.locate(gen), c.fetchProducts(gen, id)}
}

// Reload re-runs both flows for the current merchant while keeping what is on
// screen. A coordinate fix already obtained is reused. Ratings in flight are
// still applied when they complete.
func (c *Controller) Reload() []Cmd {
	id := c.state.MerchantID
	if id == "" {
		return nil
	}
	c.state.Generation++
	gen := c.state.Generation

	cmds := []Cmd{c.fetchProducts(gen, id)}
	c.fetchingProducts = true
	if c.state.Coordinates != nil {
		c.locating = false
		c.fetchingProfile = true
		cmds = append(cmds, c.fetchProfile(gen, id, *c.state.Coordinates))
	} else {
		c.locating = true
		c.fetchingProfile = false
		cmds = append(cmds, c.locate(gen))
	}
	if c.state.Profile.Status == PaneError {
		c.state.Profile.Status = PaneLoading
		c.state.ErrorMessage = ""
	}
	return cmds
}

// Update applies a completed command and returns any follow-up commands.
func (c *Controller) Update(msg Msg) []Cmd {
	if msg == nil {
		return nil
	}
	ctx := context.Background()
	if !c.current(msg) {
		metrics.RecordStaleDiscard(kindOf(msg))
		c.logger.Debug(ctx, "discarding stale completion",
			logger.String("kind", kindOf(msg)),
			logger.Uint64("generation", msg.generation()),
			logger.Uint64("current", c.state.Generation),
		)
		return nil
	}

	switch m := msg.(type) {
	case LocationMsg:
		return c.onLocation(ctx, m)
	case ProfileMsg:
		c.onProfile(ctx, m)
	case ProductsMsg:
		c.onProducts(ctx, m)
	case SubmitMsg:
		c.onSubmit(ctx, m)
	}
	return nil
}

// current reports whether msg belongs to what is on screen. Fetches are bound
// to the latest generation, ratings only to the merchant that was opened.
func (c *Controller) current(msg Msg) bool {
	if _, ok := msg.(SubmitMsg); ok {
		return msg.generation() == c.epoch
	}
	return msg.generation() == c.state.Generation
}

func (c *Controller) onLocation(ctx context.Context, m LocationMsg) []Cmd {
	c.locating = false
	if m.Err != nil {
		if errors.Is(m.Err, location.ErrPermissionDenied) {
			c.state.ErrorMessage = TextPermissionDenied
		} else {
			c.state.ErrorMessage = TextFixUnavailable
		}
		c.logger.Warn(ctx, "no coordinate fix, profile not requested",
			logger.String("merchant", c.state.MerchantID), logger.Error(m.Err))
		if c.state.Profile.Status != PaneReady {
			c.state.Profile.Status = PaneError
		}
		return nil
	}

	coords := m.Coords
	c.state.Coordinates = &coords
	c.fetchingProfile = true
	return []Cmd{c.fetchProfile(m.Gen, c.state.MerchantID, coords)}
}

func (c *Controller) onProfile(ctx context.Context, m ProfileMsg) {
	c.fetchingProfile = false
	if m.Err != nil {
		c.logger.Error(ctx, "failed to fetch merchant profile",
			logger.String("merchant", m.ID), logger.Error(m.Err))
		c.state.ErrorMessage = TextProfileError
		if c.state.Profile.Status != PaneReady {
			c.state.Profile.Status = PaneError
		}
		return
	}
	c.state.Profile = ProfilePane{Status: PaneReady, Profile: m.Profile}
	c.state.ErrorMessage = ""
}

func (c *Controller) onProducts(ctx context.Context, m ProductsMsg) {
	c.fetchingProducts = false
	if m.Err != nil {
		c.logger.Error(ctx, "failed to fetch products",
			logger.String("merchant", m.ID), logger.Error(m.Err))
		c.state.ProductsNotice = TextProductsError
		return
	}
	c.state.Products = slices.Clone(m.Products)
	c.state.ProductsNotice = ""
}

func (c *Controller) onSubmit(ctx context.Context, m SubmitMsg) {
	if c.submitting > 0 {
		c.submitting--
	}
	if m.Err != nil {
		c.logger.Error(ctx, "rating submission failed",
			logger.String("merchant", m.Submission.MerchantID), logger.Error(m.Err))
		c.state.Notice = TextRatingFailed
		return
	}
	c.modal.Acknowledge(m.Submission)
	c.state.Notice = TextRatingSent
}

// Settled reports that no command of the current generation is outstanding.
func (c *Controller) Settled() bool {
	return !c.locating && !c.fetchingProfile && !c.fetchingProducts && c.submitting == 0
}

// State returns a snapshot safe to keep across updates.
func (c *Controller) State() State {
	s := c.state
	s.Products = slices.Clone(c.state.Products)
	if c.state.Coordinates != nil {
		coords := *c.state.Coordinates
		s.Coordinates = &coords
	}
	d := c.modal.Draft()
	s.RatingOpen = c.modal.IsOpen()
	s.Stars = d.Stars
	s.Feedback = d.Feedback
	return s
}

// OpenRating shows the rating modal. The rating entry only exists on a loaded
// profile card.
func (c *Controller) OpenRating() error {
	if c.state.Profile.Status != PaneReady {
		return ErrNotReady
	}
	c.modal.Open()
	c.state.Notice = ""
	return nil
}

// CloseRating dismisses the modal, keeping the draft.
func (c *Controller) CloseRating() { c.modal.Close() }

// SetStars overwrites the draft's stars.
func (c *Controller) SetStars(k int) error { return c.modal.SetStars(k) }

// SetFeedback replaces the draft's feedback, capped at rating.MaxFeedbackRunes.
func (c *Controller) SetFeedback(s string) (bool, error) { return c.modal.SetFeedback(s) }

// SubmitRating closes the modal and hands the draft to the submitter.
func (c *Controller) SubmitRating() ([]Cmd, error) {
	sub, err := c.modal.Submit(c.state.MerchantID, c.now())
	if err != nil {
		return nil, err
	}
	c.submitting++
	epoch := c.epoch
	submitter := c.submitter
	return []Cmd{func(ctx context.Context) Msg {
		ack, err := submitter.SubmitRating(ctx, sub)
		return SubmitMsg{Epoch: epoch, Submission: sub, Ack: ack, Err: err}
	}}, nil
}

// Follow marks the merchant as followed. It is local only.
func (c *Controller) Follow() error {
	if c.state.Profile.Status != PaneReady {
		return ErrNotReady
	}
	c.state.Following = true
	c.state.Notice = TextFollowing
	c.logger.Info(context.Background(), "following merchant", logger.String("merchant", c.state.MerchantID))
	return nil
}

// OpenSpecifications looks up a listed product for the specifications view.
func (c *Controller) OpenSpecifications(id model.FlexID) (model.Product, error) {
	for _, p := range c.state.Products {
		if p.ID == id {
			c.logger.Info(context.Background(), "opening product specifications",
				logger.String("merchant", c.state.MerchantID), logger.String("product", id.String()))
			return p, nil
		}
	}
	return model.Product{}, ErrUnknownProduct
}

func (c *Controller) locate(gen uint64) Cmd {
	resolver := c.resolver
	return func(ctx context.Context) Msg {
		coords, err := resolver.Acquire(ctx)
		return LocationMsg{Gen: gen, Coords: coords, Err: err}
	}
}

func (c *Controller) fetchProfile(gen uint64, id string, at model.Coordinates) Cmd {
	profiles := c.profiles
	return func(ctx context.Context) Msg {
		p, err := profiles.Merchant(ctx, id, at)
		return ProfileMsg{Gen: gen, ID: id, Profile: p, Err: err}
	}
}

func (c *Controller) fetchProducts(gen uint64, id string) Cmd {
	products := c.products
	return func(ctx context.Context) Msg {
		ps, err := products.Products(ctx, id)
		return ProductsMsg{Gen: gen, ID: id, Products: ps, Err: err}
	}
}
