package trainer

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrFeatureShapeMismatch = errors.New("feature shape mismatch")
	ErrInsufficientData     = errors.New("insufficient training data")
	ErrUnknownModelType     = errors.New("unknown model type")
	ErrUnknownValidation    = errors.New("unknown validation method")
)
