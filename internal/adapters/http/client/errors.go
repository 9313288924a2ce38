package client

import (
	"errors"
	"fmt"
)

// Kind classifies a FetchError.
type Kind int

// Fetch failure kinds.
const (
	KindNetwork Kind = iota
	KindStatus
	KindDecode
	KindInvalid
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindInvalid:
		return "invalid"
	case KindTimeout:
		return "timeout"
	default:
		return "network"
	}
}

// ErrFetch matches every FetchError with errors.Is.
var ErrFetch = errors.New("fetch failed")

// FetchError describes a failed call to the merchant backend.
type FetchError struct {
	Op     string // endpoint, e.g. "lojistas"
	Kind   Kind
	Status int // HTTP status for KindStatus
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *FetchError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFetch) true for any FetchError.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }
