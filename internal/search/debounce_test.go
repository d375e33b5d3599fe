package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_BurstRunsLastOnce(t *testing.T) {
	clock := newFakeClock()
	d := NewDebouncer(clock, 300*time.Millisecond)

	var got []string
	for _, q := range []string{"a", "ab", "abc"} {
		q := q
		d.Trigger(func() { got = append(got, q) })
		clock.Advance(100 * time.Millisecond)
	}
	assert.Empty(t, got, "nothing fires inside the window")
	assert.True(t, d.Pending())

	clock.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"abc"}, got)
	assert.False(t, d.Pending())

	clock.Advance(time.Second)
	assert.Len(t, got, 1)
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := newFakeClock()
	d := NewDebouncer(clock, 300*time.Millisecond)

	fired := false
	d.Trigger(func() { fired = true })
	d.Cancel()
	assert.False(t, d.Pending())

	clock.Advance(time.Second)
	assert.False(t, fired)
}

func TestDebouncer_RealClock(t *testing.T) {
	d := NewDebouncer(nil, 10*time.Millisecond)
	done := make(chan struct{})
	d.Trigger(func() { t.Error("superseded run fired") })
	d.Trigger(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.Fail(t, "debounced function never ran")
	}
}
