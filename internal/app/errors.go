package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrTrainingInProgress = errors.New("training already in progress")
	ErrModelNotTrained    = errors.New("no trained model available")
	ErrNotStarted         = errors.New("service not started")
)
