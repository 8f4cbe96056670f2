// Package loop drives a seesaw session: periodic polls, frame flushes and
// control commands, all on one goroutine.
package loop

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultPollInterval  = 20 * time.Millisecond
	DefaultFrameInterval = time.Second / 30
)

var ErrStopped = errors.New("loop: not running")

type Opts struct {
	// Poll runs every PollInterval. Errors are logged and the next tick
	// polls again.
	Poll         func() error
	PollInterval time.Duration

	// Frame renders and flushes one frame every FrameInterval. Nil disables
	// the frame ticker.
	Frame         func(elapsed time.Duration) error
	FrameInterval time.Duration

	// Signals stop Run when received.
	Signals []os.Signal
	Logger  *zerolog.Logger
}

type Looper struct {
	opts  Opts
	log   zerolog.Logger
	cmds  chan func()
	done  chan struct{}
	start time.Time
}

func New(opts Opts) *Looper {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	l := zerolog.Nop()
	if opts.Logger != nil {
		l = opts.Logger.With().Str("component", "loop").Logger()
	}
	return &Looper{
		opts: opts,
		log:  l,
		cmds: make(chan func(), 16),
		done: make(chan struct{}),
	}
}

// Do queues fn to run on the loop goroutine and waits until it ran.
func (l *Looper) Do(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	select {
	case l.cmds <- func() { fn(); close(ran) }:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ran:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run blocks until ctx is done or one of the configured signals arrives.
// It can only be called once.
func (l *Looper) Run(ctx context.Context) error {
	defer close(l.done)

	var sig chan os.Signal
	if len(l.opts.Signals) > 0 {
		sig = make(chan os.Signal, 1)
		signal.Notify(sig, l.opts.Signals...)
		defer signal.Stop(sig)
	}

	poll := time.NewTicker(l.opts.PollInterval)
	defer poll.Stop()

	var frameC <-chan time.Time
	if l.opts.Frame != nil {
		frame := time.NewTicker(l.opts.FrameInterval)
		defer frame.Stop()
		frameC = frame.C
	}

	l.start = time.Now()
	failing := false
	for {
		select {
		case <-poll.C:
			if l.opts.Poll == nil {
				continue
			}
			if err := l.opts.Poll(); err != nil {
				if !failing {
					l.log.Warn().Err(err).Msg("poll failed")
				}
				failing = true
			} else if failing {
				l.log.Info().Msg("poll recovered")
				failing = false
			}

		case <-frameC:
			if err := l.opts.Frame(time.Since(l.start)); err != nil {
				l.log.Debug().Err(err).Msg("frame")
			}

		case fn := <-l.cmds:
			fn()

		case s := <-sig:
			l.log.Info().Str("signal", s.String()).Msg("stopping")
			return nil

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
