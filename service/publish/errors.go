package publish

import (
	"errors"
	"fmt"
)

// ErrNotFound is the store sentinel for absent records.
var ErrNotFound = errors.New("record not found")

// ErrorClass buckets provider HTTP failures once, at the call boundary.
// Everything downstream branches on the class instead of sniffing status
// codes or message substrings.
type ErrorClass int

const (
	ClassNone ErrorClass = iota
	ClassUnauthorized
	ClassRateLimited
	ClassClientError
	ClassServerError
)

func ClassifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == 401:
		return ClassUnauthorized
	case statusCode == 429:
		return ClassRateLimited
	case statusCode >= 500:
		return ClassServerError
	case statusCode >= 400:
		return ClassClientError
	}
	return ClassNone
}

// APIError is a provider rejection with the verbatim status and body retained
// for diagnosis and retry decisions.
type APIError struct {
	Op         string // "post", "media/init", ...
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider %s call failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *APIError) Class() ErrorClass {
	return ClassifyStatus(e.StatusCode)
}

// TokenRefreshError reports a failed refresh exchange. Either the provider
// rejected it (StatusCode/Body set) or the response was incomplete (Reason).
type TokenRefreshError struct {
	StatusCode int
	Body       string
	Reason     string
}

func (e *TokenRefreshError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("token refresh failed: %s", e.Reason)
	}
	return fmt.Sprintf("token refresh failed with status %d: %s", e.StatusCode, e.Body)
}

// MediaPhase names the media upload step that failed.
type MediaPhase string

const (
	MediaPhaseFetch      MediaPhase = "fetch"
	MediaPhaseInit       MediaPhase = "init"
	MediaPhaseAppend     MediaPhase = "append"
	MediaPhaseFinalize   MediaPhase = "finalize"
	MediaPhaseProcessing MediaPhase = "processing"
)

// MediaUploadError wraps a failure from any media upload phase.
type MediaUploadError struct {
	Phase MediaPhase
	Err   error
}

func (e *MediaUploadError) Error() string {
	return fmt.Sprintf("media upload failed during %s: %s", e.Phase, e.Err)
}

func (e *MediaUploadError) Unwrap() error {
	return e.Err
}

// TokenExpiredError marks a call that stayed unauthorized after the single
// refresh-and-retry cycle. Terminal; the user must reconnect the account.
type TokenExpiredError struct {
	Err error
}

func (e *TokenExpiredError) Error() string {
	return fmt.Sprintf("provider call unauthorized after token refresh: %s", e.Err)
}

func (e *TokenExpiredError) Unwrap() error {
	return e.Err
}

// isUnauthorized reports whether err carries a 401-class provider rejection,
// looking through media upload wrapping.
func isUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class() == ClassUnauthorized
	}
	return false
}
