package screen

import (
	"context"

	"github.com/okian/lojista/internal/domain/model"
	"github.com/okian/lojista/internal/domain/rating"
)

// Msg is the completion of a Cmd. Every message carries the generation it was
// issued for; the controller drops messages from older generations. Rating
// completions carry the generation of the Open that preceded them instead.
type Msg interface {
	generation() uint64
}

// Cmd is one unit of asynchronous work. It must honour ctx and always return a
// message, failures included.
type Cmd func(ctx context.Context) Msg

// LocationMsg completes a coordinate fix attempt.
type LocationMsg struct {
	Gen    uint64
	Coords model.Coordinates
	Err    error
}

// ProfileMsg completes a merchant profile fetch.
type ProfileMsg struct {
	Gen     uint64
	ID      string
	Profile model.MerchantProfile
	Err     error
}

// ProductsMsg completes a product list fetch.
type ProductsMsg struct {
	Gen      uint64
	ID       string
	Products []model.Product
	Err      error
}

// SubmitMsg completes a rating submission.
type SubmitMsg struct {
	Epoch      uint64
	Submission rating.Submission
	Ack        rating.Ack
	Err        error
}

func (m LocationMsg) generation() uint64 { return m.Gen }
func (m ProfileMsg) generation() uint64  { return m.Gen }
func (m ProductsMsg) generation() uint64 { return m.Gen }
func (m SubmitMsg) generation() uint64   { return m.Epoch }

func kindOf(msg Msg) string {
	switch msg.(type) {
	case LocationMsg:
		return "location"
	case ProfileMsg:
		return "profile"
	case ProductsMsg:
		return "products"
	case SubmitMsg:
		return "rating"
	default:
		return "unknown"
	}
}
