package annotation

import (
	"fmt"
	"slices"
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
	StatusSkipped    Status = "skipped"
)

var transitions = map[Status][]Status{
	StatusNotStarted: {StatusInProgress, StatusSkipped},
	StatusInProgress: {StatusComplete, StatusSkipped},
}

// CanTransitionTo reports whether the normal workflow allows moving from s
// to next. Complete and skipped are left only through a reset.
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusSkipped
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusNotStarted, StatusInProgress, StatusComplete, StatusSkipped:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}
