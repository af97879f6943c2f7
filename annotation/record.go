package annotation

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/xeptore/beatpulse/catalog"
	"github.com/xeptore/beatpulse/phase"
	"github.com/xeptore/beatpulse/timeline"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// TrackAnnotation is the per-track record of a session.
type TrackAnnotation struct {
	Track          catalog.Track    `json:"track"`
	Annotator      string           `json:"annotator"`
	Timeline       []timeline.Entry `json:"timeline"`
	Global         GlobalAnalysis   `json:"global"`
	Status         Status           `json:"status"`
	SkipReason     string           `json:"skipReason,omitempty"`
	StartedAt      *time.Time       `json:"startedAt,omitempty"`
	CompletedAt    *time.Time       `json:"completedAt,omitempty"`
	ElapsedSeconds int              `json:"elapsedSeconds"`
	LastSavedAt    *time.Time       `json:"lastSavedAt,omitempty"`
	ResumePhase    phase.Phase      `json:"resumePhase,omitempty"`
}

func NewTrackAnnotation(track catalog.Track, annotator string) *TrackAnnotation {
	return &TrackAnnotation{
		Track:     track,
		Annotator: annotator,
		Timeline:  []timeline.Entry{},
		Status:    StatusNotStarted,
	}
}

func (a *TrackAnnotation) Clone() *TrackAnnotation {
	out := *a
	out.Timeline = slices.Clone(a.Timeline)
	if nil == out.Timeline {
		out.Timeline = []timeline.Entry{}
	}
	out.StartedAt = cloneTime(a.StartedAt)
	out.CompletedAt = cloneTime(a.CompletedAt)
	out.LastSavedAt = cloneTime(a.LastSavedAt)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if nil == t {
		return nil
	}
	v := *t
	return &v
}

// UpdateTimeline replaces the full timeline. The first timeline mutation
// of a not started record moves it to in progress.
func (a *TrackAnnotation) UpdateTimeline(entries []timeline.Entry, now time.Time) {
	a.Timeline = timeline.Reorder(entries)
	if nil == a.Timeline {
		a.Timeline = []timeline.Entry{}
	}
	if a.Status == StatusNotStarted {
		a.Status = StatusInProgress
		a.StartedAt = &now
	}
	a.LastSavedAt = &now
}

func (a *TrackAnnotation) UpdateGlobal(partial GlobalAnalysis, now time.Time) {
	a.Global.Merge(partial)
	a.LastSavedAt = &now
}

type StatusExtra struct {
	SkipReason  string
	CompletedAt time.Time
}

// SetStatus moves the record to status and records extra in the same step.
func (a *TrackAnnotation) SetStatus(status Status, extra StatusExtra) error {
	if a.Status != status && !a.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, status)
	}

	a.Status = status
	switch status {
	case StatusSkipped:
		a.SkipReason = extra.SkipReason
	case StatusComplete:
		if !extra.CompletedAt.IsZero() {
			t := extra.CompletedAt
			a.CompletedAt = &t
		}
	}
	return nil
}

func (a *TrackAnnotation) UpdateElapsedSeconds(n int) {
	a.ElapsedSeconds = max(n, 0)
}
