package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrInvalidRange  = errors.New("invalid time range")
	ErrInvalidRecord = errors.New("invalid record")
)
