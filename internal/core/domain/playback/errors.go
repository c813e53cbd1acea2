package playback

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTrackID = errors.New("invalid track id")
	ErrNotFound       = errors.New("resource not found upstream")
	ErrNothingPlaying = errors.New("nothing is currently playing")
	ErrUnauthorized   = errors.New("upstream rejected credentials")
)

// UpstreamError reports a non-success response from an upstream endpoint.
type UpstreamError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: upstream status %d", e.Op, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
