package session_test

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/beatpulse/annotation"
	"github.com/xeptore/beatpulse/catalog"
	"github.com/xeptore/beatpulse/lint"
	"github.com/xeptore/beatpulse/phase"
	"github.com/xeptore/beatpulse/session"
	"github.com/xeptore/beatpulse/timeline"
)

var now = time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "e" + strconv.Itoa(n)
	}
}

func newState(t *testing.T) session.State {
	t.Helper()
	return session.NewState(catalog.Default(), "Jo")
}

func addEntry(t *testing.T, s *session.State, ts, section, narrative string, ids func() string) {
	t.Helper()
	require.NoError(t, s.OpenDraft(ts, "", false))
	s.Draft.SectionType = section
	s.Draft.SetNarrative(narrative)
	s.Draft.AddTag("synth")
	require.NoError(t, s.SaveDraft(now, ids))
}

func fillGlobals(t *testing.T, s *session.State) {
	t.Helper()
	text := strings.Repeat("Punchy layered drums drive the arrangement ", 3)
	for _, c := range annotation.Categories() {
		require.NoError(t, s.SetGlobal(c, text, now))
	}
}

func TestNewState(t *testing.T) {
	t.Parallel()

	s := newState(t)
	assert.Equal(t, phase.Select, s.Phase)
	assert.Nil(t, s.ActiveTrackID)
	assert.Equal(t, []int{1, 2, 3}, s.TrackIDs())
	for _, a := range s.Ordered() {
		assert.Equal(t, annotation.StatusNotStarted, a.Status)
		assert.Equal(t, "Jo", a.Annotator)
	}
}

func TestSelectTrack(t *testing.T) {
	t.Parallel()

	t.Run("not_started_goes_to_ready", func(t *testing.T) {
		t.Parallel()
		s := newState(t)
		p, err := s.SelectTrack(1)
		require.NoError(t, err)
		assert.Equal(t, phase.Ready, p)
		assert.Equal(t, phase.Ready, s.Phase)
	})

	t.Run("unknown_track", func(t *testing.T) {
		t.Parallel()
		s := newState(t)
		_, err := s.SelectTrack(42)
		require.ErrorIs(t, err, session.ErrUnknownTrack)
	})

	t.Run("in_progress_resumes_recorded_phase", func(t *testing.T) {
		t.Parallel()
		s := newState(t)
		ids := sequentialIDs()

		_, err := s.SelectTrack(1)
		require.NoError(t, err)
		addEntry(t, &s, "0:10", "Intro", "Pads swell", ids)
		s.SetPhase(phase.Global)
		assert.Equal(t, phase.Global, s.Annotations[1].ResumePhase)

		s.NextTrack()
		assert.Equal(t, phase.Select, s.Phase)
		assert.Nil(t, s.ActiveTrackID)
		assert.Equal(t, phase.Global, s.Annotations[1].ResumePhase)

		p, err := s.SelectTrack(1)
		require.NoError(t, err)
		assert.Equal(t, phase.Global, p)
	})

	t.Run("in_progress_without_resume_phase", func(t *testing.T) {
		t.Parallel()
		s := newState(t)
		s.Annotations[2].UpdateTimeline([]timeline.Entry{{ID: "x", Timestamp: "0:05"}}, now)
		p, err := s.SelectTrack(2)
		require.NoError(t, err)
		assert.Equal(t, phase.Listening, p)

		s = newState(t)
		s.Annotations[2].Status = annotation.StatusInProgress
		p, err = s.SelectTrack(2)
		require.NoError(t, err)
		assert.Equal(t, phase.Ready, p)
	})

	t.Run("mark_entry_without_draft_resumes_listening", func(t *testing.T) {
		t.Parallel()
		s := newState(t)
		_, err := s.SelectTrack(1)
		require.NoError(t, err)
		require.NoError(t, s.OpenDraft("0:10", "", false))
		s.NextTrack()
		assert.Nil(t, s.Draft)

		s.Annotations[1].Status = annotation.StatusInProgress
		p, err := s.SelectTrack(1)
		require.NoError(t, err)
		assert.Equal(t, phase.Listening, p)
	})

	t.Run("complete_goes_to_review", func(t *testing.T) {
		t.Parallel()
		s := newState(t)
		s.Annotations[3].Status = annotation.StatusComplete
		p, err := s.SelectTrack(3)
		require.NoError(t, err)
		assert.Equal(t, phase.Review, p)
	})

	t.Run("skipped_requires_reset", func(t *testing.T) {
		t.Parallel()
		s := newState(t)
		require.NoError(t, s.Skip(3, "explicit"))
		_, err := s.SelectTrack(3)
		require.ErrorIs(t, err, session.ErrTrackSkipped)

		require.NoError(t, s.Reset(3))
		_, err = s.SelectTrack(3)
		require.NoError(t, err)
	})
}

func TestDraftFlow(t *testing.T) {
	t.Parallel()

	t.Run("save_sorts_and_promotes", func(t *testing.T) {
		t.Parallel()
		s := newState(t)
		ids := sequentialIDs()
		_, err := s.SelectTrack(1)
		require.NoError(t, err)
		s.SetTimer(true)

		require.NoError(t, s.OpenDraft("1:30", "", false))
		assert.False(t, s.TimerRunning)
		assert.Equal(t, phase.MarkEntry, s.Phase)
		require.ErrorIs(t, s.OpenDraft("1:40", "", false), session.ErrDraftOpen)
		s.Draft.SectionType = "Chorus"
		s.Draft.SetNarrative("Full band")
		require.NoError(t, s.SaveDraft(now, ids))

		assert.True(t, s.TimerRunning)
		assert.Equal(t, phase.Listening, s.Phase)
		assert.Equal(t, annotation.StatusInProgress, s.Annotations[1].Status)

		addEntry(t, &s, "0:05", "Intro", "Bells", ids)
		tl := s.Annotations[1].Timeline
		require.Len(t, tl, 2)
		assert.Equal(t, "0:05", tl[0].Timestamp)
		assert.Equal(t, "1:30", tl[1].Timestamp)
	})

	t.Run("invalid_draft_stays_open", func(t *testing.T) {
		t.Parallel()
		s := newState(t)
		_, err := s.SelectTrack(1)
		require.NoError(t, err)
		require.NoError(t, s.OpenDraft("0:10", "", false))
		require.ErrorIs(t, s.SaveDraft(now, nil), timeline.ErrMissingSectionType)
		assert.NotNil(t, s.Draft)
		assert.Equal(t, phase.MarkEntry, s.Phase)
		assert.Empty(t, s.Annotations[1].Timeline)
	})

	t.Run("edit_keeps_raw_and_id", func(t *testing.T) {
		t.Parallel()
		s := newState(t)
		ids := sequentialIDs()
		_, err := s.SelectTrack(1)
		require.NoError(t, err)
		require.NoError(t, s.OpenDraft("0:10", "kick drum and um bass", true))
		s.Draft.SectionType = "Intro"
		require.NoError(t, s.SaveDraft(now, ids))

		require.NoError(t, s.EditEntry("e1"))
		s.Draft.AcceptPolished("Kick drum and bass")
		require.NoError(t, s.SaveDraft(now, ids))

		e := s.Annotations[1].Timeline[0]
		assert.Equal(t, "e1", e.ID)
		assert.Equal(t, "Kick drum and bass", e.Narrative)
		assert.Equal(t, "kick drum and um bass", e.NarrativeRaw)
		assert.True(t, e.WasPolished)
		assert.True(t, e.IsDictated)
	})

	t.Run("discard_restores_timer", func(t *testing.T) {
		t.Parallel()
		s := newState(t)
		_, err := s.SelectTrack(1)
		require.NoError(t, err)
		s.SetTimer(true)
		require.NoError(t, s.OpenDraft("0:10", "", false))
		require.NoError(t, s.DiscardDraft())
		assert.True(t, s.TimerRunning)
		assert.Nil(t, s.Draft)
		require.ErrorIs(t, s.DiscardDraft(), session.ErrNoDraft)
	})

	t.Run("remove_entry", func(t *testing.T) {
		t.Parallel()
		s := newState(t)
		ids := sequentialIDs()
		_, err := s.SelectTrack(1)
		require.NoError(t, err)
		addEntry(t, &s, "0:10", "Intro", "Pads", ids)
		require.NoError(t, s.RemoveEntry("e1", now))
		assert.Empty(t, s.Annotations[1].Timeline)
		require.ErrorIs(t, s.RemoveEntry("e1", now), timeline.ErrEntryNotFound)
	})

	t.Run("requires_active_track", func(t *testing.T) {
		t.Parallel()
		s := newState(t)
		require.ErrorIs(t, s.OpenDraft("0:10", "", false), session.ErrNoActiveTrack)
		require.ErrorIs(t, s.SetGlobal(annotation.Genre, "Pop", now), session.ErrNoActiveTrack)
	})
}

func TestCompleteAndReview(t *testing.T) {
	t.Parallel()

	t.Run("blocked_by_validator", func(t *testing.T) {
		t.Parallel()
		s := newState(t)
		_, err := s.SelectTrack(1)
		require.NoError(t, err)
		addEntry(t, &s, "0:10", "Intro", "Pads", sequentialIDs())

		err = s.Complete(1, now, lint.DefaultRules())
		var blocked *session.BlockedError
		require.ErrorAs(t, err, &blocked)
		assert.Len(t, blocked.Issues, annotation.NumCategories)
		assert.Equal(t, annotation.StatusInProgress, s.Annotations[1].Status)

		res, err := s.EnterReview(lint.DefaultRules())
		require.NoError(t, err)
		assert.False(t, res.CanExport)
		assert.Equal(t, phase.Review, s.Phase)
	})

	t.Run("completes_when_clean", func(t *testing.T) {
		t.Parallel()
		s := newState(t)
		ids := sequentialIDs()
		_, err := s.SelectTrack(1)
		require.NoError(t, err)
		addEntry(t, &s, "0:10", "Intro", "Pads", ids)
		addEntry(t, &s, "0:40", "Verse", "Vocal line", ids)
		addEntry(t, &s, "1:20", "Chorus", "Drums enter", ids)
		fillGlobals(t, &s)
		assert.True(t, s.GlobalOnSummary)

		res, err := s.EnterReview(lint.DefaultRules())
		require.NoError(t, err)
		assert.True(t, res.CanExport)

		require.NoError(t, s.Complete(1, now, lint.DefaultRules()))
		a := s.Annotations[1]
		assert.Equal(t, annotation.StatusComplete, a.Status)
		require.NotNil(t, a.CompletedAt)
		assert.Equal(t, now, *a.CompletedAt)

		require.ErrorIs(t, s.Skip(1, ""), annotation.ErrInvalidTransition)
	})
}

func TestExportGate(t *testing.T) {
	t.Parallel()

	s := newState(t)
	ids := sequentialIDs()
	_, err := s.SelectTrack(1)
	require.NoError(t, err)
	addEntry(t, &s, "0:10", "Intro", "Pads", ids)
	addEntry(t, &s, "0:40", "Verse", "Vocal line", ids)
	addEntry(t, &s, "1:20", "Chorus", "Drums enter", ids)
	fillGlobals(t, &s)
	require.NoError(t, s.Complete(1, now, lint.DefaultRules()))
	require.NoError(t, s.Skip(2, "wrong audio"))

	a, err := s.ExportTrack(1, lint.DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, 1, a.Track.ID)

	out, blocked := s.Exportable(lint.DefaultRules())
	assert.Empty(t, blocked)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].Track.ID)
	assert.Equal(t, 2, out[1].Track.ID)

	t.Run("edited_after_completion", func(t *testing.T) {
		t.Parallel()
		s := s.Clone()
		for _, id := range []string{"e1", "e2", "e3"} {
			require.NoError(t, s.RemoveEntry(id, now))
		}
		require.Equal(t, annotation.StatusComplete, s.Annotations[1].Status)

		_, err := s.ExportTrack(1, lint.DefaultRules())
		var be *session.BlockedError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, 1, be.TrackID)
		assert.NotEmpty(t, be.Issues)

		out, blocked := s.Exportable(lint.DefaultRules())
		require.Len(t, out, 1)
		assert.Equal(t, 2, out[0].Track.ID)
		require.Len(t, blocked, 1)
		assert.Equal(t, 1, blocked[0].TrackID)
	})

	t.Run("unknown_track", func(t *testing.T) {
		t.Parallel()
		s := s.Clone()
		_, err := s.ExportTrack(9, lint.DefaultRules())
		require.ErrorIs(t, err, session.ErrUnknownTrack)
	})
}

func TestResetAndAnnotator(t *testing.T) {
	t.Parallel()

	s := newState(t)
	ids := sequentialIDs()
	_, err := s.SelectTrack(2)
	require.NoError(t, err)
	addEntry(t, &s, "0:10", "Intro", "Pads", ids)
	require.NoError(t, s.SetGlobal(annotation.Mix, "Wide", now))
	require.NoError(t, s.OpenDraft("0:20", "", false))
	s.SetAnnotator("  Jo Ann ")

	for _, a := range s.Ordered() {
		assert.Equal(t, "Jo Ann", a.Annotator)
	}

	require.NoError(t, s.Reset(2))
	a := s.Annotations[2]
	assert.Equal(t, annotation.StatusNotStarted, a.Status)
	assert.Empty(t, a.Timeline)
	assert.Zero(t, a.Global.Filled())
	assert.Equal(t, "Jo Ann", a.Annotator)
	assert.Empty(t, a.ResumePhase)
	assert.Nil(t, s.Draft)
	assert.Zero(t, s.GlobalCategoryIndex)
	assert.False(t, s.TimerRunning)
	assert.Equal(t, phase.Ready, s.Phase)
}

func TestSkipActiveTrack(t *testing.T) {
	t.Parallel()

	s := newState(t)
	_, err := s.SelectTrack(1)
	require.NoError(t, err)
	require.NoError(t, s.Skip(1, "  wrong audio  "))
	assert.Equal(t, "wrong audio", s.Annotations[1].SkipReason)
	assert.Nil(t, s.ActiveTrackID)
	assert.Equal(t, phase.Select, s.Phase)
}

func TestClone(t *testing.T) {
	t.Parallel()

	s := newState(t)
	_, err := s.SelectTrack(1)
	require.NoError(t, err)
	require.NoError(t, s.OpenDraft("0:10", "draft text", false))

	c := s.Clone()
	*c.ActiveTrackID = 3
	c.Draft.Narrative = "changed"
	c.Annotations[1].Annotator = "Someone"

	assert.Equal(t, 1, *s.ActiveTrackID)
	assert.Equal(t, "draft text", s.Draft.Narrative)
	assert.Equal(t, "Jo", s.Annotations[1].Annotator)
}
