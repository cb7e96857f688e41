package errors

import "errors"

var (
	ErrNotFound = errors.New("service type not found")

	ErrInvalidID = errors.New("invalid service type ID format")
)
