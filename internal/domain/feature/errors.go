package feature

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidProfile        = errors.New("invalid profile")
	ErrMissingRequiredSignal = errors.New("missing required signal")
)
