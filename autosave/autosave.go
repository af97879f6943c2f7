// Package autosave debounces snapshot writes.
package autosave

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/xeptore/beatpulse/log"
)

type Options struct {
	// Debounce is how long Save waits for a newer value before writing.
	Debounce time.Duration
	// MaxRetries bounds the extra attempts of a failed write.
	MaxRetries    uint64
	RetryInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		Debounce:      500 * time.Millisecond,
		MaxRetries:    2,
		RetryInterval: 100 * time.Millisecond,
	}
}

// Saver writes the last value handed to Save once no newer value arrived
// for the debounce window. Write failures are logged, never returned.
type Saver[T any] struct {
	write  func(T) error
	opts   Options
	logger zerolog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *T
	closed  bool

	// writeMu keeps writes in Save order.
	writeMu sync.Mutex
}

func New[T any](write func(T) error, opts Options, logger zerolog.Logger) *Saver[T] {
	return &Saver[T]{
		write:  write,
		opts:   opts,
		logger: logger.With().Str("module", "autosave").Logger(),
	}
}

// Save schedules v to be written. It never blocks on I/O, except after
// Close, where v is written right away.
func (s *Saver[T]) Save(v T) {
	s.mu.Lock()
	s.pending = &v
	if s.closed {
		s.mu.Unlock()
		s.Flush()
		return
	}
	if nil == s.timer {
		s.timer = time.AfterFunc(s.opts.Debounce, s.Flush)
	} else {
		s.timer.Reset(s.opts.Debounce)
	}
	s.mu.Unlock()
}

// Flush writes the pending value, if any, before returning.
func (s *Saver[T]) Flush() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	v := s.pending
	s.pending = nil
	if nil != s.timer {
		s.timer.Stop()
	}
	s.mu.Unlock()

	if nil == v {
		return
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.RetryInterval
	b.MaxElapsedTime = 0
	attempt := 0
	op := func() error {
		attempt++
		return s.write(*v)
	}
	if err := backoff.Retry(op, backoff.WithMaxRetries(b, s.opts.MaxRetries)); nil != err {
		s.logger.Error().Func(log.Flaw(err)).Int("attempts", attempt).Msg("Failed to save snapshot")
		return
	}
	s.logger.Debug().Int("attempts", attempt).Msg("Snapshot saved")
}

// Pending reports whether a value is waiting to be written.
func (s *Saver[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nil != s.pending
}

// Close stops the debounce timer and writes whatever is pending.
func (s *Saver[T]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.Flush()
}
