// Package rating holds the in-progress star rating and feedback collected by the
// rating modal.
//
// Draft lifecycle: cancelling or dismissing the modal keeps the draft, so
// reopening shows the last values. A draft is reset only once its submission is
// acknowledged, and only if it was not edited in the meantime.
package rating

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/okian/lojista/pkg/logger"
	"github.com/okian/lojista/pkg/metrics"
)

// Bounds of a draft.
const (
	MinStars         = 1
	MaxStars         = 5
	DefaultStars     = 1
	MaxFeedbackRunes = 50
)

// Draft is the in-progress rating.
type Draft struct {
	Stars    int
	Feedback string
}

// NewDraft returns the initial draft.
func NewDraft() Draft { return Draft{Stars: DefaultStars} }

// Submission is a captured draft ready to hand to a Submitter.
type Submission struct {
	MerchantID     string    `json:"idLojista" validate:"required"`
	Stars          int       `json:"nota" validate:"min=1,max=5"`
	Feedback       string    `json:"feedback" validate:"max=50"`
	IdempotencyKey string    `json:"-"`
	SubmittedAt    time.Time `json:"dataAvaliacao"`
}

// Ack confirms a submission.
type Ack struct {
	Key       string `json:"key"`
	Duplicate bool   `json:"duplicate"`
}

// Submitter delivers a submission somewhere.
type Submitter interface {
	SubmitRating(ctx context.Context, s Submission) (Ack, error)
}

// Modal is the rating dialog: a visibility flag plus the draft it edits.
type Modal struct {
	open  bool
	draft Draft
}

// NewModal returns a closed modal with the initial draft.
func NewModal() Modal { return Modal{draft: NewDraft()} }

// Open shows the modal. The draft is not touched.
func (m *Modal) Open() { m.open = true }

// Close hides the modal (close control, backdrop or back). The draft is kept.
func (m *Modal) Close() { m.open = false }

// IsOpen reports visibility.
func (m *Modal) IsOpen() bool { return m.open }

// Draft returns a copy of the current draft.
func (m *Modal) Draft() Draft { return m.draft }

// SetStars overwrites the star count.
func (m *Modal) SetStars(k int) error {
	if !m.open {
		return ErrNotOpen
	}
	if k < MinStars || k > MaxStars {
		return ErrStarsOutOfRange
	}
	m.draft.Stars = k
	return nil
}

// SetFeedback replaces the feedback text, keeping at most MaxFeedbackRunes code
// points. It reports whether input was cut.
func (m *Modal) SetFeedback(s string) (truncated bool, err error) {
	if !m.open {
		return false, ErrNotOpen
	}
	m.draft.Feedback, truncated = Truncate(s, MaxFeedbackRunes)
	return truncated, nil
}

// Submit captures the draft for merchantID and closes the modal.
func (m *Modal) Submit(merchantID string, now time.Time) (Submission, error) {
	if !m.open {
		return Submission{}, ErrNotOpen
	}
	if merchantID == "" {
		return Submission{}, ErrNoMerchant
	}
	m.open = false
	return Submission{
		MerchantID:     merchantID,
		Stars:          m.draft.Stars,
		Feedback:       m.draft.Feedback,
		IdempotencyKey: uuid.NewString(),
		SubmittedAt:    now,
	}, nil
}

// Acknowledge resets the draft after s was accepted, unless the draft has been
// edited since s was captured.
func (m *Modal) Acknowledge(s Submission) {
	if m.draft.Stars == s.Stars && m.draft.Feedback == s.Feedback {
		m.draft = NewDraft()
	}
}

// Truncate keeps the first limit runes of s.
func Truncate(s string, limit int) (string, bool) {
	if utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i], true
		}
		n++
	}
	return s, false
}

// LogSubmitter records submissions to the log and never leaves the process.
type LogSubmitter struct {
	Logger logger.Logger
}

// SubmitRating implements Submitter.
func (l LogSubmitter) SubmitRating(ctx context.Context, s Submission) (Ack, error) {
	log := l.Logger
	if log == nil {
		log = logger.Discard()
	}
	log.Info(ctx, "rating submitted",
		logger.String("merchant", s.MerchantID),
		logger.Int("stars", s.Stars),
		logger.String("feedback", s.Feedback),
		logger.String("key", s.IdempotencyKey),
	)
	metrics.RecordRatingSubmission("log", metrics.OutcomeSuccess)
	return Ack{Key: s.IdempotencyKey}, nil
}
