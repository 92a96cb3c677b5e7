package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/skywatch"
	"github.com/fwojciec/skywatch/mock"
	"github.com/fwojciec/skywatch/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func primaryRecords() []*skywatch.Sighting {
	return []*skywatch.Sighting{
		{Date: "16-Feb-09", Town: "Leigh", Area: "Manchester", Incident: "orange ball of light"},
	}
}

func TestExtractor_PrimarySucceeds(t *testing.T) {
	t.Parallel()

	e := &pipeline.Extractor{
		Primary: &mock.Extractor{
			ExtractFn: func(context.Context, *skywatch.Document, string) (*skywatch.Extraction, error) {
				return &skywatch.Extraction{Records: primaryRecords(), Strategy: skywatch.StrategyPrimary}, nil
			},
		},
		Fallback: &mock.Extractor{
			ExtractFn: func(context.Context, *skywatch.Document, string) (*skywatch.Extraction, error) {
				t.Fatal("fallback must not run when primary succeeds")
				return nil, nil
			},
		},
		RetryDelays: []time.Duration{0},
	}

	result, err := e.Extract(context.Background(), &skywatch.Document{URL: "a.pdf"}, "text")

	require.NoError(t, err)
	assert.Equal(t, skywatch.StrategyPrimary, result.Strategy)
	assert.Len(t, result.Records, 1)
	assert.Empty(t, result.Note)
}

func TestExtractor_TransientPrimaryRetriedThenSucceeds(t *testing.T) {
	t.Parallel()

	calls := 0
	e := &pipeline.Extractor{
		Primary: &mock.Extractor{
			ExtractFn: func(context.Context, *skywatch.Document, string) (*skywatch.Extraction, error) {
				calls++
				if calls == 1 {
					return nil, skywatch.Errorf(skywatch.EUNAVAILABLE, "503 overloaded")
				}
				return &skywatch.Extraction{Records: primaryRecords(), Strategy: skywatch.StrategyPrimary}, nil
			},
		},
		Fallback:    &mock.Extractor{},
		RetryDelays: []time.Duration{0},
	}

	result, err := e.Extract(context.Background(), &skywatch.Document{}, "text")

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, skywatch.StrategyPrimary, result.Strategy)
}

func TestExtractor_FallsBackOnPermanentPrimaryError(t *testing.T) {
	t.Parallel()

	primaryCalls := 0
	e := &pipeline.Extractor{
		Primary: &mock.Extractor{
			ExtractFn: func(context.Context, *skywatch.Document, string) (*skywatch.Extraction, error) {
				primaryCalls++
				return nil, skywatch.Errorf(skywatch.ESCHEMA, "response failed schema validation")
			},
		},
		Fallback: &mock.Extractor{
			ExtractFn: func(context.Context, *skywatch.Document, string) (*skywatch.Extraction, error) {
				return &skywatch.Extraction{Records: primaryRecords(), Strategy: skywatch.StrategyFallback}, nil
			},
		},
		RetryDelays: []time.Duration{0},
	}

	result, err := e.Extract(context.Background(), &skywatch.Document{}, "text")

	require.NoError(t, err)
	// Schema violations are permanent: no retry before falling back.
	assert.Equal(t, 1, primaryCalls)
	assert.Equal(t, skywatch.StrategyFallback, result.Strategy)
	assert.Contains(t, result.Note, "primary extraction failed")
}

func TestExtractor_FallsBackAfterTransientRetriesExhausted(t *testing.T) {
	t.Parallel()

	primaryCalls := 0
	e := &pipeline.Extractor{
		Primary: &mock.Extractor{
			ExtractFn: func(context.Context, *skywatch.Document, string) (*skywatch.Extraction, error) {
				primaryCalls++
				return nil, skywatch.Errorf(skywatch.EUNAVAILABLE, "503 overloaded")
			},
		},
		Fallback: &mock.Extractor{
			ExtractFn: func(context.Context, *skywatch.Document, string) (*skywatch.Extraction, error) {
				return &skywatch.Extraction{Records: primaryRecords()[:1], Strategy: skywatch.StrategyFallback}, nil
			},
		},
		RetryDelays: []time.Duration{0},
	}

	result, err := e.Extract(context.Background(), &skywatch.Document{}, "text")

	require.NoError(t, err)
	assert.Equal(t, 2, primaryCalls) // 1 initial + 1 retry
	assert.Equal(t, skywatch.StrategyFallback, result.Strategy)
}

func TestExtractor_NilPrimaryUsesFallbackDirectly(t *testing.T) {
	t.Parallel()

	e := &pipeline.Extractor{
		Fallback: &mock.Extractor{
			ExtractFn: func(context.Context, *skywatch.Document, string) (*skywatch.Extraction, error) {
				return &skywatch.Extraction{Strategy: skywatch.StrategyFallback}, nil
			},
		},
	}

	result, err := e.Extract(context.Background(), &skywatch.Document{}, "text")

	require.NoError(t, err)
	assert.Equal(t, skywatch.StrategyFallback, result.Strategy)
	assert.Empty(t, result.Note)
}

func TestGeocoder_SentinelOnlyWhenBothStrategiesFail(t *testing.T) {
	t.Parallel()

	t.Run("primary resolves", func(t *testing.T) {
		t.Parallel()

		g := &pipeline.Geocoder{
			Primary: &mock.Geocoder{
				GeocodeFn: func(context.Context, string, string) (skywatch.Coordinates, error) {
					return skywatch.Coordinates{Lat: "53.49", Lon: "-2.51"}, nil
				},
			},
			Fallback:    &mock.Geocoder{},
			RetryDelays: []time.Duration{0},
		}

		c, err := g.Geocode(context.Background(), "Leigh", "Manchester")

		require.NoError(t, err)
		assert.True(t, c.IsResolved())
	})

	t.Run("fallback rescues a primary failure", func(t *testing.T) {
		t.Parallel()

		g := &pipeline.Geocoder{
			Primary: &mock.Geocoder{
				GeocodeFn: func(context.Context, string, string) (skywatch.Coordinates, error) {
					return skywatch.Unresolved(), skywatch.Errorf(skywatch.EUNAVAILABLE, "503 overloaded")
				},
			},
			Fallback: &mock.Geocoder{
				GeocodeFn: func(context.Context, string, string) (skywatch.Coordinates, error) {
					return skywatch.Coordinates{Lat: "51.48", Lon: "-3.17"}, nil
				},
			},
			RetryDelays: []time.Duration{0},
		}

		c, err := g.Geocode(context.Background(), "Cardiff", "")

		require.NoError(t, err)
		assert.True(t, c.IsResolved())
	})

	t.Run("both fail yields sentinel without error", func(t *testing.T) {
		t.Parallel()

		g := &pipeline.Geocoder{
			Primary: &mock.Geocoder{
				GeocodeFn: func(context.Context, string, string) (skywatch.Coordinates, error) {
					return skywatch.Unresolved(), skywatch.Errorf(skywatch.EINTERNAL, "model error")
				},
			},
			Fallback: &mock.Geocoder{
				GeocodeFn: func(context.Context, string, string) (skywatch.Coordinates, error) {
					return skywatch.Unresolved(), skywatch.Errorf(skywatch.ENOTFOUND, "unknown place")
				},
			},
			RetryDelays: []time.Duration{0},
		}

		c, err := g.Geocode(context.Background(), "Atlantis", "")

		require.NoError(t, err)
		assert.Equal(t, skywatch.Unresolved(), c)
		assert.False(t, c.IsResolved())
	})

	t.Run("cancellation propagates as an error", func(t *testing.T) {
		t.Parallel()

		g := &pipeline.Geocoder{
			Primary: &mock.Geocoder{
				GeocodeFn: func(context.Context, string, string) (skywatch.Coordinates, error) {
					return skywatch.Unresolved(), skywatch.Errorf(skywatch.ECANCELED, "geocoding canceled")
				},
			},
			Fallback:    &mock.Geocoder{},
			RetryDelays: []time.Duration{0},
		}

		_, err := g.Geocode(context.Background(), "Leigh", "")

		require.Error(t, err)
		assert.Equal(t, skywatch.ECANCELED, skywatch.ErrorCode(err))
	})
}
