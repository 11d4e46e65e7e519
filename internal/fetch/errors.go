package fetch

import (
	"errors"
	"fmt"
)

// ErrUnroutable means the URL starts with no prefix the fetcher serves.
// It is the only failure a fixture fetcher produces; a missing key under a
// known prefix is not an error.
var ErrUnroutable = errors.New("unroutable request")

// UnroutableError carries the URL that could not be routed.
type UnroutableError struct {
	URL string
}

func (e *UnroutableError) Error() string {
	return fmt.Sprintf("%s: %q matches no known prefix", ErrUnroutable, e.URL)
}

func (e *UnroutableError) Unwrap() error { return ErrUnroutable }

// IsUnroutable reports whether err (or anything it wraps) is ErrUnroutable.
func IsUnroutable(err error) bool {
	return errors.Is(err, ErrUnroutable)
}
