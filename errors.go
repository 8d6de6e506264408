package edgegate

import "errors"

var (
	// ErrInvalidPrefix is returned when a policy prefix is not an absolute path
	ErrInvalidPrefix = errors.New("invalid policy prefix")
	// ErrDuplicatePrefix is returned when a snapshot contains the same prefix twice
	ErrDuplicatePrefix = errors.New("duplicate policy prefix")
	// ErrNilSnapshot is returned when a nil snapshot is published
	ErrNilSnapshot = errors.New("nil snapshot")
)
