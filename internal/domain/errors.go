package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrQueryFailed      = errors.New("query failed")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnsupported      = errors.New("unsupported for location")
)
