// Package session owns the annotation state of one annotator across the
// catalog tracks.
package session

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/xeptore/beatpulse/annotation"
	"github.com/xeptore/beatpulse/catalog"
	"github.com/xeptore/beatpulse/lint"
	"github.com/xeptore/beatpulse/mathutil"
	"github.com/xeptore/beatpulse/phase"
	"github.com/xeptore/beatpulse/timeline"
)

var (
	ErrUnknownTrack  = errors.New("unknown track")
	ErrNoActiveTrack = errors.New("no active track")
	ErrTrackSkipped  = errors.New("track was skipped, reset it to annotate again")
	ErrNoDraft       = errors.New("no entry is being edited")
	ErrDraftOpen     = errors.New("an entry is already being edited")
)

// BlockedError is returned when the validator stops a track from being
// completed.
type BlockedError struct {
	TrackID int
	Issues  []lint.Issue
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("track %d has %d blocking issue(s)", e.TrackID, len(e.Issues))
}

type State struct {
	Annotations         map[int]*annotation.TrackAnnotation `json:"annotations"`
	ActiveTrackID       *int                                `json:"activeTrackId"`
	Phase               phase.Phase                         `json:"phase"`
	Draft               *timeline.Draft                     `json:"markEntryDraft"`
	GlobalCategoryIndex int                                 `json:"globalCategoryIndex"`
	GlobalOnSummary     bool                                `json:"globalOnSummary"`
	TimerRunning        bool                                `json:"timerRunning"`
	Annotator           string                              `json:"annotator"`
}

func NewState(cat *catalog.Catalog, annotator string) State {
	s := State{
		Annotations: make(map[int]*annotation.TrackAnnotation),
		Phase:       phase.Select,
		Annotator:   annotator,
	}
	s.EnsureTracks(cat)
	return s
}

// EnsureTracks adds empty records for catalog tracks a restored snapshot
// does not know about yet.
func (s *State) EnsureTracks(cat *catalog.Catalog) {
	if nil == s.Annotations {
		s.Annotations = make(map[int]*annotation.TrackAnnotation)
	}
	for _, t := range cat.Tracks() {
		if _, ok := s.Annotations[t.ID]; !ok {
			s.Annotations[t.ID] = annotation.NewTrackAnnotation(t, s.Annotator)
		}
	}
}

func (s State) Clone() State {
	out := s
	out.Annotations = make(map[int]*annotation.TrackAnnotation, len(s.Annotations))
	for id, a := range s.Annotations {
		out.Annotations[id] = a.Clone()
	}
	if nil != s.ActiveTrackID {
		id := *s.ActiveTrackID
		out.ActiveTrackID = &id
	}
	if nil != s.Draft {
		d := *s.Draft
		out.Draft = &d
	}
	return out
}

// TrackIDs returns the ids of all records in ascending order.
func (s *State) TrackIDs() []int {
	return slices.Sorted(maps.Keys(s.Annotations))
}

// Ordered returns all records ordered by track id.
func (s *State) Ordered() []*annotation.TrackAnnotation {
	ids := s.TrackIDs()
	out := make([]*annotation.TrackAnnotation, len(ids))
	for i, id := range ids {
		out[i] = s.Annotations[id]
	}
	return out
}

func (s *State) Track(id int) (*annotation.TrackAnnotation, error) {
	a, ok := s.Annotations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTrack, id)
	}
	return a, nil
}

func (s *State) Active() (*annotation.TrackAnnotation, error) {
	if nil == s.ActiveTrackID {
		return nil, ErrNoActiveTrack
	}
	return s.Track(*s.ActiveTrackID)
}

// SetPhase moves the workflow to p. Any phase but select is remembered on
// the active track so that selecting it again resumes there.
func (s *State) SetPhase(p phase.Phase) {
	s.Phase = p
	if p == phase.Select {
		return
	}
	if a, err := s.Active(); nil == err {
		a.ResumePhase = p
	}
}

// NextTrack leaves the active track and returns to track selection.
func (s *State) NextTrack() {
	s.ActiveTrackID = nil
	s.Draft = nil
	s.TimerRunning = false
	s.GlobalCategoryIndex = 0
	s.GlobalOnSummary = false
	s.SetPhase(phase.Select)
}

// SelectTrack makes id the active track and returns the phase it resumes at.
func (s *State) SelectTrack(id int) (phase.Phase, error) {
	a, err := s.Track(id)
	if nil != err {
		return "", err
	}

	if a.Status == annotation.StatusSkipped {
		return "", ErrTrackSkipped
	}

	if !s.isActive(id) {
		s.Draft = nil
		s.TimerRunning = false
		s.GlobalCategoryIndex = 0
		s.GlobalOnSummary = false
	}

	var next phase.Phase
	switch a.Status {
	case annotation.StatusComplete:
		next = phase.Review
	case annotation.StatusInProgress:
		next = s.resumePhase(a)
	default:
		next = phase.Ready
	}

	s.ActiveTrackID = &id
	s.SetPhase(next)
	return next, nil
}

func (s *State) resumePhase(a *annotation.TrackAnnotation) phase.Phase {
	switch p := a.ResumePhase; {
	case p == phase.MarkEntry && nil == s.Draft:
		return phase.Listening
	case p != "" && p != phase.Select:
		return p
	case len(a.Timeline) > 0:
		return phase.Listening
	default:
		return phase.Ready
	}
}

// EnterReview moves the active track to review and returns its lint
// result. Export is allowed only when the result says so.
func (s *State) EnterReview(rules lint.Rules) (lint.Result, error) {
	a, err := s.Active()
	if nil != err {
		return lint.Result{}, err
	}
	s.TimerRunning = false
	s.SetPhase(phase.Review)
	return lint.Lint(a, rules), nil
}

// Complete marks track id complete when the validator finds no blocking
// issue.
func (s *State) Complete(id int, now time.Time, rules lint.Rules) error {
	a, err := s.Track(id)
	if nil != err {
		return err
	}
	if res := lint.Lint(a, rules); !res.CanExport {
		return &BlockedError{TrackID: id, Issues: res.Errors()}
	}
	if err := a.SetStatus(annotation.StatusComplete, annotation.StatusExtra{CompletedAt: now}); nil != err {
		return err
	}
	if s.isActive(id) {
		s.TimerRunning = false
	}
	return nil
}

// ExportTrack returns track id for a single-track export. It refuses with
// a *BlockedError while the validator finds blocking issues.
func (s *State) ExportTrack(id int, rules lint.Rules) (*annotation.TrackAnnotation, error) {
	a, err := s.Track(id)
	if nil != err {
		return nil, err
	}
	if res := lint.Lint(a, rules); !res.CanExport {
		return nil, &BlockedError{TrackID: id, Issues: res.Errors()}
	}
	return a, nil
}

// Exportable returns the skipped records and the complete records that
// still pass validation, ordered by track id. Complete records edited into
// an invalid state since completion are returned as blocked instead.
func (s *State) Exportable(rules lint.Rules) ([]*annotation.TrackAnnotation, []*BlockedError) {
	var (
		out     []*annotation.TrackAnnotation
		blocked []*BlockedError
	)
	for _, a := range s.Ordered() {
		switch a.Status {
		case annotation.StatusSkipped:
			out = append(out, a)
		case annotation.StatusComplete:
			if res := lint.Lint(a, rules); !res.CanExport {
				blocked = append(blocked, &BlockedError{TrackID: a.Track.ID, Issues: res.Errors()})
				continue
			}
			out = append(out, a)
		}
	}
	return out, blocked
}

// Skip marks track id skipped and, when it is the active track, returns to
// track selection.
func (s *State) Skip(id int, reason string) error {
	a, err := s.Track(id)
	if nil != err {
		return err
	}
	if err := a.SetStatus(annotation.StatusSkipped, annotation.StatusExtra{SkipReason: strings.TrimSpace(reason)}); nil != err {
		return err
	}
	if s.isActive(id) {
		s.NextTrack()
	}
	return nil
}

// Reset recreates the record of track id empty. Only the session's
// annotator name carries over.
func (s *State) Reset(id int) error {
	a, err := s.Track(id)
	if nil != err {
		return err
	}
	s.Annotations[id] = annotation.NewTrackAnnotation(a.Track, s.Annotator)
	s.Draft = nil
	s.GlobalCategoryIndex = 0
	s.GlobalOnSummary = false
	s.TimerRunning = false
	s.Phase = phase.Ready
	return nil
}

func (s *State) SetAnnotator(name string) {
	name = strings.TrimSpace(name)
	s.Annotator = name
	for _, a := range s.Annotations {
		a.Annotator = name
	}
}

func (s *State) SetTimer(running bool) {
	s.TimerRunning = running
}

func (s *State) SetElapsedSeconds(id, seconds int) error {
	a, err := s.Track(id)
	if nil != err {
		return err
	}
	a.UpdateElapsedSeconds(seconds)
	return nil
}

// OpenDraft starts a new timeline entry on the active track at ts and
// pauses the timer until the draft is saved or discarded.
func (s *State) OpenDraft(ts, narrative string, dictated bool) error {
	if _, err := s.Active(); nil != err {
		return err
	}
	if nil != s.Draft {
		return ErrDraftOpen
	}
	s.Draft = timeline.NewDraft(ts, narrative, dictated, s.TimerRunning)
	s.TimerRunning = false
	s.SetPhase(phase.MarkEntry)
	return nil
}

// EditEntry opens the draft editor on an existing entry of the active
// track.
func (s *State) EditEntry(entryID string) error {
	a, err := s.Active()
	if nil != err {
		return err
	}
	if nil != s.Draft {
		return ErrDraftOpen
	}
	e, ok := timeline.Find(a.Timeline, entryID)
	if !ok {
		return timeline.ErrEntryNotFound
	}
	s.Draft = timeline.EditDraft(e)
	s.Draft.WasTimerRunning = s.TimerRunning
	s.TimerRunning = false
	s.SetPhase(phase.MarkEntry)
	return nil
}

// SaveDraft folds the open draft into the active track's timeline and
// returns to listening.
func (s *State) SaveDraft(now time.Time, newID func() string) error {
	a, err := s.Active()
	if nil != err {
		return err
	}
	if nil == s.Draft {
		return ErrNoDraft
	}
	entries, err := s.Draft.Save(a.Timeline, newID)
	if nil != err {
		return err
	}
	a.UpdateTimeline(entries, now)
	s.closeDraft()
	return nil
}

func (s *State) DiscardDraft() error {
	if nil == s.Draft {
		return ErrNoDraft
	}
	s.closeDraft()
	return nil
}

func (s *State) closeDraft() {
	s.TimerRunning = s.Draft.WasTimerRunning
	s.Draft = nil
	s.SetPhase(phase.Listening)
}

func (s *State) RemoveEntry(entryID string, now time.Time) error {
	a, err := s.Active()
	if nil != err {
		return err
	}
	entries, err := timeline.Remove(a.Timeline, entryID)
	if nil != err {
		return err
	}
	a.UpdateTimeline(entries, now)
	return nil
}

// SetGlobal stores value in category c of the active track and moves the
// global editor to that category.
func (s *State) SetGlobal(c annotation.Category, value string, now time.Time) error {
	a, err := s.Active()
	if nil != err {
		return err
	}
	var partial annotation.GlobalAnalysis
	partial.Set(c, value)
	a.UpdateGlobal(partial, now)
	s.moveGlobalCursor(c)
	return nil
}

func (s *State) MarkGlobalNotApplicable(c annotation.Category, now time.Time) error {
	a, err := s.Active()
	if nil != err {
		return err
	}
	var partial annotation.GlobalAnalysis
	if err := partial.MarkNotApplicable(c); nil != err {
		return err
	}
	a.UpdateGlobal(partial, now)
	s.moveGlobalCursor(c)
	return nil
}

func (s *State) moveGlobalCursor(c annotation.Category) {
	s.GlobalCategoryIndex = mathutil.Clamp(int(c)+1, 0, annotation.NumCategories-1)
	s.GlobalOnSummary = int(c) == annotation.NumCategories-1
	if s.Phase != phase.Global {
		s.SetPhase(phase.Global)
	}
}

func (s *State) isActive(id int) bool {
	return nil != s.ActiveTrackID && *s.ActiveTrackID == id
}
