package repository

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrNotFound       = errors.New("merchant not found")
	ErrInvalidStars   = errors.New("stars must be between 1 and 5")
	ErrInvalidFixture = errors.New("invalid catalog fixture")
)
