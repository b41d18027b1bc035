package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacer(t *testing.T) {
	t.Run("Zero interval never waits", func(t *testing.T) {
		p := NewPacer(0, nil)
		start := time.Now()
		for range 5 {
			require.NoError(t, p.Wait(context.Background(), "test"))
		}
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("Spaces calls by the interval", func(t *testing.T) {
		p := NewPacer(30*time.Millisecond, nil)
		start := time.Now()
		for range 3 {
			require.NoError(t, p.Wait(context.Background(), "test"))
		}
		assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond, "Expected two pauses after the first call")
	})

	t.Run("Wait is cancellable", func(t *testing.T) {
		p := NewPacer(time.Hour, nil)
		require.NoError(t, p.Wait(context.Background(), "first"), "Expected the first call to pass immediately")

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := p.Wait(ctx, "second")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("Zero interval honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, NewPacer(0, nil).Wait(ctx, "test"), context.Canceled)
	})

	t.Run("Item gates do not share reservations", func(t *testing.T) {
		p := NewPacer(time.Hour, nil)
		require.NoError(t, p.Wait(context.Background(), "first"))

		first := p.ForItem()
		second := p.ForItem()
		start := time.Now()
		require.NoError(t, first.Wait(context.Background(), "first item"))
		require.NoError(t, second.Wait(context.Background(), "second item"))
		assert.Less(t, time.Since(start), 50*time.Millisecond, "Expected fresh gates to pass immediately")

		gate, ok := first.(*Pacer)
		require.True(t, ok)
		assert.Equal(t, time.Hour, gate.Interval())
	})
}
