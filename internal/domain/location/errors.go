package location

import "errors"

// Sentinel kinds for location errors.
var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrFixUnavailable   = errors.New("location fix unavailable")
)
