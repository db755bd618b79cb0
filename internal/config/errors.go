package config

import (
	"errors"
)

// Sentinel error kinds for this package, matchable with errors.Is.
var (
	// ErrInvalidConfig wraps any validation failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps provider and unmarshal failures during Load.
	ErrLoadConfig = errors.New("load config failed")
)
