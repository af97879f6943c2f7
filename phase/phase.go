package phase

import (
	"fmt"
	"slices"
)

// Phase is a step of the per-track annotation workflow.
type Phase string

const (
	Select    Phase = "select"
	Ready     Phase = "ready"
	Listening Phase = "listening"
	MarkEntry Phase = "mark_entry"
	Global    Phase = "global"
	Review    Phase = "review"
)

var all = []Phase{Select, Ready, Listening, MarkEntry, Global, Review}

func All() []Phase {
	return slices.Clone(all)
}

func Parse(s string) (Phase, error) {
	p := Phase(s)
	if !slices.Contains(all, p) {
		return "", fmt.Errorf("unknown phase %q", s)
	}
	return p, nil
}

func (p Phase) String() string {
	return string(p)
}
