package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("horse not found")
	ErrDuplicateID = errors.New("duplicate horse id")
	ErrInvalidRow  = errors.New("invalid record")
)
