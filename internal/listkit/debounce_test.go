package listkit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerLastCallWins(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	var got []string
	record := func(v string) func(context.Context) {
		return func(context.Context) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, v)
		}
	}

	d.Do(context.Background(), record("a"))
	d.Do(context.Background(), record("ab"))
	d.Do(context.Background(), record("abc"))

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"abc"}, got)
}

func TestDebouncerCancelsInFlightContext(t *testing.T) {
	d := NewDebouncer(5 * time.Millisecond)
	defer d.Stop()

	started := make(chan context.Context, 1)
	d.Do(context.Background(), func(ctx context.Context) {
		started <- ctx
		<-ctx.Done()
	})

	var firstCtx context.Context
	select {
	case firstCtx = <-started:
	case <-time.After(time.Second):
		t.Fatal("first invocation never started")
	}

	// A newer keystroke invalidates the in-flight invocation.
	done := make(chan struct{})
	d.Do(context.Background(), func(ctx context.Context) { close(done) })

	select {
	case <-firstCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("first context was not cancelled")
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second invocation never ran")
	}
}

func TestDebouncerStopPreventsExecution(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	ran := false
	d.Do(context.Background(), func(context.Context) { ran = true })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.False(t, ran)
}
