package autosave_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/beatpulse/autosave"
)

type recorder struct {
	mu     sync.Mutex
	writes []int
	fail   int
}

func (r *recorder) write(v int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail > 0 {
		r.fail--
		return errors.New("disk full")
	}
	r.writes = append(r.writes, v)
	return nil
}

func (r *recorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.writes...)
}

func options(debounce time.Duration) autosave.Options {
	return autosave.Options{Debounce: debounce, MaxRetries: 2, RetryInterval: time.Millisecond}
}

func TestSaver(t *testing.T) {
	t.Parallel()

	t.Run("coalesces_within_window", func(t *testing.T) {
		t.Parallel()

		r := &recorder{}
		s := autosave.New(r.write, options(50*time.Millisecond), zerolog.Nop())
		for i := 1; i <= 5; i++ {
			s.Save(i)
		}
		assert.True(t, s.Pending())
		assert.Empty(t, r.snapshot())

		require.Eventually(t, func() bool { return len(r.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, []int{5}, r.snapshot())
		assert.False(t, s.Pending())
	})

	t.Run("flush_writes_synchronously", func(t *testing.T) {
		t.Parallel()

		r := &recorder{}
		s := autosave.New(r.write, options(time.Hour), zerolog.Nop())
		s.Save(1)
		s.Save(2)
		s.Flush()
		assert.Equal(t, []int{2}, r.snapshot())

		s.Flush()
		assert.Equal(t, []int{2}, r.snapshot())
	})

	t.Run("close_flushes_pending", func(t *testing.T) {
		t.Parallel()

		r := &recorder{}
		s := autosave.New(r.write, options(time.Hour), zerolog.Nop())
		s.Save(7)
		s.Close()
		assert.Equal(t, []int{7}, r.snapshot())

		s.Save(8)
		assert.Equal(t, []int{7, 8}, r.snapshot())
	})

	t.Run("retries_then_succeeds", func(t *testing.T) {
		t.Parallel()

		r := &recorder{fail: 2}
		s := autosave.New(r.write, options(time.Hour), zerolog.Nop())
		s.Save(3)
		s.Flush()
		assert.Equal(t, []int{3}, r.snapshot())
	})

	t.Run("failures_are_swallowed", func(t *testing.T) {
		t.Parallel()

		r := &recorder{fail: 10}
		s := autosave.New(r.write, options(time.Hour), zerolog.Nop())
		s.Save(3)
		assert.NotPanics(t, s.Flush)
		assert.Empty(t, r.snapshot())
		assert.False(t, s.Pending())
	})
}
