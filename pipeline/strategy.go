package pipeline

import (
	"context"
	"time"

	"github.com/fwojciec/skywatch"
)

// DefaultPrimaryRetryDelays returns the backoff used before abandoning the
// primary strategy: a single 1s retry for service overload.
func DefaultPrimaryRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second}
}

// Ensure the strategy selectors implement the domain interfaces.
var (
	_ skywatch.Extractor = (*Extractor)(nil)
	_ skywatch.Geocoder  = (*Geocoder)(nil)
)

// Extractor selects between the primary and fallback extraction
// strategies. The primary is tried first and retried with backoff on
// transient errors; the fallback runs when the primary's retries are
// exhausted or it fails permanently (malformed input, schema violation).
type Extractor struct {
	Primary     skywatch.Extractor // may be nil to force the fallback
	Fallback    skywatch.Extractor
	RetryDelays []time.Duration
}

// Extract applies the selection policy. The winning strategy is recorded
// on the result; when the fallback rescued a primary failure the result
// note carries the primary's error for auditability.
func (e *Extractor) Extract(ctx context.Context, doc *skywatch.Document, text string) (*skywatch.Extraction, error) {
	var primaryErr error

	if e.Primary != nil {
		var result *skywatch.Extraction
		err := Retry(ctx, e.delays(), func(ctx context.Context) error {
			var err error
			result, err = e.Primary.Extract(ctx, doc, text)
			return err
		})
		if err == nil {
			return result, nil
		}
		if skywatch.ErrorCode(err) == skywatch.ECANCELED {
			return nil, err
		}
		primaryErr = err
	}

	result, err := e.Fallback.Extract(ctx, doc, text)
	if err != nil {
		return nil, err
	}
	if primaryErr != nil {
		result.Note = "primary extraction failed: " + skywatch.ErrorMessage(primaryErr)
	}
	return result, nil
}

func (e *Extractor) delays() []time.Duration {
	if e.RetryDelays == nil {
		return DefaultPrimaryRetryDelays()
	}
	return e.RetryDelays
}

// Geocoder selects between the primary and fallback geocoding strategies.
// A record that fails both strategies keeps the unresolved sentinel rather
// than being dropped, so the invariant holds: coordinates are the sentinel
// if and only if both strategies failed.
type Geocoder struct {
	Primary     skywatch.Geocoder // may be nil to force the fallback
	Fallback    skywatch.Geocoder
	RetryDelays []time.Duration
}

// Geocode applies the selection policy. Only cancellation propagates as an
// error; resolution failures degrade to the sentinel.
func (g *Geocoder) Geocode(ctx context.Context, town, area string) (skywatch.Coordinates, error) {
	if g.Primary != nil {
		var c skywatch.Coordinates
		err := Retry(ctx, g.delays(), func(ctx context.Context) error {
			var err error
			c, err = g.Primary.Geocode(ctx, town, area)
			return err
		})
		if err == nil {
			return c, nil
		}
		if skywatch.ErrorCode(err) == skywatch.ECANCELED {
			return skywatch.Unresolved(), err
		}
	}

	if g.Fallback != nil {
		c, err := g.Fallback.Geocode(ctx, town, area)
		if err == nil {
			return c, nil
		}
		if skywatch.ErrorCode(err) == skywatch.ECANCELED {
			return skywatch.Unresolved(), err
		}
	}

	return skywatch.Unresolved(), nil
}

func (g *Geocoder) delays() []time.Duration {
	if g.RetryDelays == nil {
		return DefaultPrimaryRetryDelays()
	}
	return g.RetryDelays
}
