package errors

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredentials = errors.New("amadeus credentials are not configured")
	ErrAuthFailed         = errors.New("token exchange failed")
	ErrSearchTimeout      = errors.New("flight offers request timed out")
	ErrReportNotFound     = errors.New("report not found")
)

// UpstreamError carries a non-success HTTP status and the raw error body
// of one search call, verbatim. It is recorded into the owning pair's
// result and never aborts sibling searches.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}
