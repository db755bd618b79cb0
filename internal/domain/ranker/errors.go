package ranker

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrModelShapeMismatch = errors.New("model shape mismatch")
	ErrEmptyActionSpace   = errors.New("empty candidate action space")
)
