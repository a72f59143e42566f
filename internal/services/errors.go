package services

import (
	"errors"
	"fmt"
)

// ErrJobNotFound is returned when the upstream reports no posting for an id.
var ErrJobNotFound = errors.New("job not found")

// UpstreamError is a non-success HTTP status from the third-party API. The
// status code is for logs only; handlers translate it to a generic message so
// upstream internals never leak to the visitor.
type UpstreamError struct {
	StatusCode int
	Op         string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: status %d", e.Op, e.StatusCode)
}
