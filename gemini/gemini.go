// Package gemini provides model-backed implementations of
// skywatch.Extractor and skywatch.Geocoder using Google Gemini.
//
// Every model response is validated against a JSON schema before it is
// trusted; a response that fails validation is a permanent ESCHEMA error
// and triggers the caller's deterministic fallback.
package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/skywatch"
)

const model = "gemini-2.5-flash"

// DefaultCallTimeout bounds a single model call. Model calls are slower
// than plain HTTP fetches but a call that runs this long is a hang, and a
// hang must surface as ETIMEOUT so the caller can retry or fall back.
const DefaultCallTimeout = 60 * time.Second

// Option configures the model-backed services.
type Option func(*settings)

type settings struct {
	timeout time.Duration
}

func newSettings(opts []Option) settings {
	s := settings{timeout: DefaultCallTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithTimeout sets the per-call timeout for model requests.
// Defaults to DefaultCallTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = d
	}
}

// callContext derives the bounded context for one model call.
func (s settings) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// classifyErr maps Gemini service failures onto the application error
// taxonomy. The service signals overload with 503/429 status text.
func classifyErr(op string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return skywatch.Errorf(skywatch.ECANCELED, "%s canceled", op)
	case errors.Is(err, context.DeadlineExceeded):
		return skywatch.Errorf(skywatch.ETIMEOUT, "%s timed out", op)
	}

	msg := err.Error()
	for _, marker := range []string{"503", "429", "overloaded", "UNAVAILABLE", "RESOURCE_EXHAUSTED"} {
		if strings.Contains(msg, marker) {
			return skywatch.Errorf(skywatch.EUNAVAILABLE, "%s: %v", op, err)
		}
	}
	return skywatch.Errorf(skywatch.EINTERNAL, "%s: %v", op, err)
}
