package ratingload

import "errors"

// Sentinel errors.
var (
	ErrNoMerchants    = errors.New("no merchants to rate")
	ErrUnhealthy      = errors.New("backend is not healthy")
	ErrLostRatings    = errors.New("ratings were not accepted")
	ErrDuplicateCount = errors.New("replays were not reported as duplicates")
	ErrAverageDrift   = errors.New("average moved outside the expected range")
)
