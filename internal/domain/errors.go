package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery is returned when the ingredient name normalizes to nothing
	ErrInvalidQuery = errors.New("invalid ingredient query")

	// ErrSearchUnavailable is returned when every configured catalog source failed
	ErrSearchUnavailable = errors.New("product search unavailable")

	// ErrSourceUnavailable is returned by a single catalog source that could not answer
	ErrSourceUnavailable = errors.New("catalog source unavailable")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)

// SourceError records why one catalog source contributed nothing to a search.
// errors.Is(err, ErrSourceUnavailable) holds for every SourceError.
type SourceError struct {
	Store StoreRef
	Err   error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrSourceUnavailable, e.Store.Name, e.Err)
}

func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}
