package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/skywatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallContext_AppliesDeadline(t *testing.T) {
	t.Parallel()

	t.Run("default timeout bounds every call", func(t *testing.T) {
		t.Parallel()

		s := newSettings(nil)
		assert.Equal(t, DefaultCallTimeout, s.timeout)

		ctx, cancel := s.callContext(context.Background())
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok, "model calls must always carry a deadline")
		assert.WithinDuration(t, time.Now().Add(DefaultCallTimeout), deadline, time.Second)
	})

	t.Run("WithTimeout overrides the default", func(t *testing.T) {
		t.Parallel()

		s := newSettings([]Option{WithTimeout(10 * time.Millisecond)})

		ctx, cancel := s.callContext(context.Background())
		defer cancel()

		_, ok := ctx.Deadline()
		require.True(t, ok)

		// A call that outlives the timeout observes the expired context.
		<-ctx.Done()
		assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
	})

	t.Run("constructors thread options through", func(t *testing.T) {
		t.Parallel()

		e := NewExtractor(nil, WithTimeout(5*time.Second))
		assert.Equal(t, 5*time.Second, e.settings.timeout)

		g := NewGeocoder(nil, WithTimeout(5*time.Second))
		assert.Equal(t, 5*time.Second, g.settings.timeout)

		assert.Equal(t, DefaultCallTimeout, NewExtractor(nil).settings.timeout)
	})
}

func TestClassifyErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		wantCode  string
		transient bool
	}{
		{name: "expired call deadline is a transient timeout", err: context.DeadlineExceeded, wantCode: skywatch.ETIMEOUT, transient: true},
		{name: "cancellation", err: context.Canceled, wantCode: skywatch.ECANCELED, transient: false},
		{name: "503 overload", err: errors.New("googleapi: Error 503: the model is overloaded"), wantCode: skywatch.EUNAVAILABLE, transient: true},
		{name: "429 rate limit", err: errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED"), wantCode: skywatch.EUNAVAILABLE, transient: true},
		{name: "anything else", err: errors.New("invalid argument"), wantCode: skywatch.EINTERNAL, transient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := classifyErr("extraction", tt.err)

			assert.Equal(t, tt.wantCode, skywatch.ErrorCode(err))
			assert.Equal(t, tt.transient, skywatch.IsTransient(err))
		})
	}
}
