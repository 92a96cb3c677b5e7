package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/skywatch"
	"github.com/fwojciec/skywatch/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zeroDelays keeps retry tests fast.
var zeroDelays = []time.Duration{0, 0, 0}

func TestRetry(t *testing.T) {
	t.Parallel()

	t.Run("returns immediately on success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := pipeline.Retry(context.Background(), zeroDelays, func(context.Context) error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient errors until success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := pipeline.Retry(context.Background(), zeroDelays, func(context.Context) error {
			calls++
			if calls < 3 {
				return skywatch.Errorf(skywatch.EUNAVAILABLE, "overloaded")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := pipeline.Retry(context.Background(), zeroDelays, func(context.Context) error {
			calls++
			return skywatch.Errorf(skywatch.EINVALID, "corrupt document")
		})

		require.Error(t, err)
		assert.Equal(t, skywatch.EINVALID, skywatch.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("transient error survives all retries", func(t *testing.T) {
		t.Parallel()

		calls := 0
		err := pipeline.Retry(context.Background(), zeroDelays, func(context.Context) error {
			calls++
			return skywatch.Errorf(skywatch.EUNAVAILABLE, "still overloaded")
		})

		require.Error(t, err)
		assert.Equal(t, skywatch.EUNAVAILABLE, skywatch.ErrorCode(err))
		assert.Equal(t, 4, calls) // 1 initial + 3 retries
	})

	t.Run("cancellation stops retrying", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := pipeline.Retry(ctx, []time.Duration{time.Hour}, func(context.Context) error {
			calls++
			cancel()
			return skywatch.Errorf(skywatch.EUNAVAILABLE, "overloaded")
		})

		require.Error(t, err)
		assert.Equal(t, skywatch.ECANCELED, skywatch.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})
}

func TestDefaultRetryDelays(t *testing.T) {
	t.Parallel()

	delays := pipeline.DefaultRetryDelays()

	require.Len(t, delays, 3)
	assert.Equal(t, time.Second, delays[0])
	assert.Equal(t, 2*time.Second, delays[1])
	assert.Equal(t, 4*time.Second, delays[2])
}
