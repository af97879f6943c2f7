package session

import (
	"sync"
)

// Saver persists snapshots of the state. Save must not block.
type Saver interface {
	Save(State)
}

// Coordinator is the single owner of a session State. Mutations run one at
// a time on a working copy that replaces the state only when they succeed.
type Coordinator struct {
	mu    sync.Mutex
	state State
	saver Saver
}

func NewCoordinator(state State, saver Saver) *Coordinator {
	return &Coordinator{state: state, saver: saver}
}

// Apply runs fn against the state. On success the new state is handed to
// the saver; on error the state is left as it was.
func (c *Coordinator) Apply(fn func(*State) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	work := c.state.Clone()
	if err := fn(&work); nil != err {
		return err
	}
	c.state = work
	if nil != c.saver {
		c.saver.Save(work.Clone())
	}
	return nil
}

// Snapshot returns a deep copy that later mutations do not affect.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}
