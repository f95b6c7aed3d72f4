package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBucket(capacity int, period time.Duration) (*TokenBucket, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	tb := NewTokenBucket(capacity, period)
	tb.now = clock.now
	tb.last = clock.t
	return tb, clock
}

func TestTokenBucket_BurstThenRefill(t *testing.T) {
	tb, clock := newTestBucket(5, 5*time.Second)

	for i := 0; i < 5; i++ {
		assert.True(t, tb.Allow(), "token %d", i+1)
	}
	assert.False(t, tb.Allow())

	clock.advance(500 * time.Millisecond)
	assert.False(t, tb.Allow())

	clock.advance(500 * time.Millisecond)
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	clock.advance(time.Hour)
	for i := 0; i < 5; i++ {
		assert.True(t, tb.Allow())
	}
	assert.False(t, tb.Allow(), "refill is capped at capacity")
}

func TestTokenBucket_Reset(t *testing.T) {
	tb, _ := newTestBucket(2, time.Minute)
	tb.Allow()
	tb.Allow()
	require.False(t, tb.Allow())

	tb.Reset()

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
}

func TestTokenBucket_WaitRespectsContext(t *testing.T) {
	tb := NewTokenBucket(1, time.Hour)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := tb.Wait(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestTokenBucket_WaitReturnsWhenRefilled(t *testing.T) {
	tb := NewTokenBucket(10, 200*time.Millisecond)
	for tb.Allow() {
	}

	start := time.Now()
	require.NoError(t, tb.Wait(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestPerMinute(t *testing.T) {
	assert.IsType(t, Unlimited{}, PerMinute(0))
	assert.IsType(t, &TokenBucket{}, PerMinute(60))

	u := PerMinute(-1)
	for i := 0; i < 100; i++ {
		assert.True(t, u.Allow())
	}
	assert.NoError(t, u.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, u.Wait(ctx), context.Canceled)
}
