package rating

import "errors"

// Sentinel kinds for rating errors.
var (
	ErrStarsOutOfRange = errors.New("stars must be between 1 and 5")
	ErrNotOpen         = errors.New("rating modal is not open")
	ErrNoMerchant      = errors.New("no merchant to rate")
)
