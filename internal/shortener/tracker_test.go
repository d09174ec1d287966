package shortener_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrrizaldi/shortener-link/internal"
	"github.com/mrrizaldi/shortener-link/internal/shortener"
)

type recordingWriter struct {
	mu     sync.Mutex
	err    error
	gate   chan struct{}
	clicks []internal.Click
}

func (w *recordingWriter) RecordClick(_ context.Context, c internal.Click) error {
	if w.gate != nil {
		<-w.gate
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.clicks = append(w.clicks, c)
	return nil
}

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.clicks)
}

func TestBackgroundTracker_CloseDrains(t *testing.T) {
	w := &recordingWriter{}
	tr := shortener.NewBackgroundTracker(w, shortener.BackgroundOptions{QueueSize: 64, Workers: 2})

	for i := 0; i < 50; i++ {
		require.NoError(t, tr.Track(context.Background(), internal.ClickEvent{LinkID: 1, ClickedAt: time.Now().UTC()}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tr.Close(ctx))
	assert.Equal(t, 50, w.count())

	// After Close clicks are written inline.
	require.NoError(t, tr.Track(context.Background(), internal.ClickEvent{LinkID: 1}))
	assert.Equal(t, 51, w.count())
}

func TestBackgroundTracker_FullQueueWritesInline(t *testing.T) {
	gate := make(chan struct{})
	w := &recordingWriter{gate: gate}
	tr := shortener.NewBackgroundTracker(w, shortener.BackgroundOptions{QueueSize: 1, Workers: 1})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			_ = tr.Track(context.Background(), internal.ClickEvent{LinkID: 1})
		}
		close(done)
	}()

	close(gate)
	<-done
	require.NoError(t, tr.Close(context.Background()))
	assert.Equal(t, 3, w.count())
}

func TestBackgroundTracker_FailureIsSwallowed(t *testing.T) {
	w := &recordingWriter{err: errors.New("db down")}
	tr := shortener.NewBackgroundTracker(w, shortener.BackgroundOptions{})

	require.NoError(t, tr.Track(context.Background(), internal.ClickEvent{LinkID: 1}))
	require.NoError(t, tr.Close(context.Background()))
	assert.Zero(t, w.count())
}

func TestSyncTracker_ReturnsFailure(t *testing.T) {
	w := &recordingWriter{err: errors.New("db down")}
	tr := shortener.NewSyncTracker(w)
	require.Error(t, tr.Track(context.Background(), internal.ClickEvent{LinkID: 1}))
}
