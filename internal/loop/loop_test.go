package loop

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollAndFrameTick(t *testing.T) {
	var polls, frames atomic.Int32
	l := New(Opts{
		Poll:          func() error { polls.Add(1); return nil },
		PollInterval:  time.Millisecond,
		Frame:         func(time.Duration) error { frames.Add(1); return nil },
		FrameInterval: 2 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	assert.Eventually(t, func() bool { return polls.Load() >= 3 && frames.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPollErrorsDoNotStop(t *testing.T) {
	var polls atomic.Int32
	l := New(Opts{
		Poll:         func() error { polls.Add(1); return errors.New("nack") },
		PollInterval: time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	assert.Eventually(t, func() bool { return polls.Load() >= 5 }, time.Second, time.Millisecond)
}

func TestDoRunsOnLoop(t *testing.T) {
	inPoll := atomic.Bool{}
	overlap := atomic.Bool{}
	l := New(Opts{
		Poll: func() error {
			inPoll.Store(true)
			time.Sleep(100 * time.Microsecond)
			inPoll.Store(false)
			return nil
		},
		PollInterval: time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	for i := 0; i < 20; i++ {
		require.NoError(t, l.Do(ctx, func() {
			if inPoll.Load() {
				overlap.Store(true)
			}
		}))
	}
	assert.False(t, overlap.Load())
}

func TestDoAfterStop(t *testing.T) {
	l := New(Opts{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = l.Run(ctx)

	err := l.Do(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrStopped)
}
