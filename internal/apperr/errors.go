// Package apperr defines sentinel errors shared across layers.
package apperr

import "errors"

var (
	ErrInvalidSelector   = errors.New("invalid selector")
	ErrSourceUnavailable = errors.New("source unavailable")
)
