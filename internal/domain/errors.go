package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFingerprint = errors.New("invalid request fingerprint")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrNoSources          = errors.New("no article sources configured")
)

// RetrievalError is fatal to a request and surfaced unchanged to the caller.
type RetrievalError struct {
	Source string
	Err    error
}

func (e *RetrievalError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("retrieval failed: %v", e.Err)
	}
	return fmt.Sprintf("retrieval failed (%s): %v", e.Source, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// IsRetrieval reports whether err carries a RetrievalError.
func IsRetrieval(err error) bool {
	var target *RetrievalError
	return errors.As(err, &target)
}
