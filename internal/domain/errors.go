package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a content id is malformed or the registry has no such record.
	ErrNotFound = errors.New("content not found")

	// ErrInvalidQuery is returned for queries that can never be sent to a registry.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrSourceUnavailable marks network, timeout, rate-limit and decoding failures of a registry.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// SourceError is a registry failure tagged with the source and operation that produced it.
type SourceError struct {
	Source Source
	Op     string
	Err    error
}

// NewSourceError wraps err as a failure of op against src.
func NewSourceError(src Source, op string, err error) *SourceError {
	return &SourceError{Source: src, Op: op, Err: err}
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Source, e.Op, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is makes every SourceError match ErrSourceUnavailable.
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable
}
