package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest     = errors.New("bad request")
	ErrMissingKey     = errors.New("missing Idempotency-Key header")
	ErrBadCoordinates = errors.New("latitude and longitude must be given together and be valid")
)
