package lint_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/beatpulse/annotation"
	"github.com/xeptore/beatpulse/catalog"
	"github.com/xeptore/beatpulse/lint"
	"github.com/xeptore/beatpulse/phase"
	"github.com/xeptore/beatpulse/timeline"
)

const longText = "Layered analog synth pads swell beneath a syncopated bass line while brushed snare accents keep the groove light and forward moving"

func track(t *testing.T) catalog.Track {
	t.Helper()
	tr, ok := catalog.Default().ByID(1)
	require.True(t, ok)
	return tr
}

func cleanAnnotation(t *testing.T) *annotation.TrackAnnotation {
	t.Helper()
	a := annotation.NewTrackAnnotation(track(t), "Jo")
	a.Timeline = []timeline.Entry{
		{ID: "1", Timestamp: "0:00", SectionType: "Intro", Narrative: "Filtered piano chords fade in over vinyl crackle", Tags: "piano,lo-fi"},
		{ID: "2", Timestamp: "0:32", SectionType: "Verse", Narrative: "Vocal enters with a close, breathy delivery", Tags: "vocals"},
		{ID: "3", Timestamp: "1:10", SectionType: "Chorus", Narrative: "Full drum kit and doubled vocals lift the energy", Tags: "drums,vocals"},
	}
	for _, c := range annotation.Categories() {
		a.Global.Set(c, longText)
	}
	return a
}

func TestLint(t *testing.T) {
	t.Parallel()

	t.Run("empty_record_has_eleven_errors", func(t *testing.T) {
		t.Parallel()

		a := annotation.NewTrackAnnotation(track(t), "")
		res := lint.Lint(a, lint.DefaultRules())
		assert.False(t, res.CanExport)
		assert.GreaterOrEqual(t, len(res.Errors()), 11)
		for _, issue := range res.Errors() {
			assert.NotEmpty(t, issue.Phase, issue.Field)
		}
		assert.Equal(t, phase.Ready, res.Errors()[0].Phase)
	})

	t.Run("clean_record_can_export", func(t *testing.T) {
		t.Parallel()

		a := cleanAnnotation(t)
		res := lint.Lint(a, lint.DefaultRules())
		assert.Empty(t, res.Errors())
		assert.Empty(t, res.Warnings())
		assert.True(t, res.CanExport)
	})

	t.Run("does_not_mutate", func(t *testing.T) {
		t.Parallel()

		a := cleanAnnotation(t)
		before := a.Clone()
		lint.Lint(a, lint.DefaultRules())
		assert.Equal(t, before, a)
	})

	t.Run("not_applicable_satisfies_optional_category", func(t *testing.T) {
		t.Parallel()

		a := cleanAnnotation(t)
		a.Global.Clear(annotation.Vocals)
		res := lint.Lint(a, lint.DefaultRules())
		require.Len(t, res.Errors(), 1)
		assert.Equal(t, annotation.Vocals.Def().DisplayLabel, res.Errors()[0].Field)

		require.NoError(t, a.Global.MarkNotApplicable(annotation.Vocals))
		res = lint.Lint(a, lint.DefaultRules())
		assert.True(t, res.CanExport)
	})

	t.Run("row_errors", func(t *testing.T) {
		t.Parallel()

		a := cleanAnnotation(t)
		a.Timeline[1].SectionType = " "
		a.Timeline[2].Narrative = ""
		res := lint.Lint(a, lint.DefaultRules())
		require.Len(t, res.Errors(), 2)
		assert.Equal(t, "Timeline row 2", res.Errors()[0].Field)
		assert.Equal(t, "Timeline row 3", res.Errors()[1].Field)
		assert.False(t, res.CanExport)
	})

	t.Run("too_many_entries", func(t *testing.T) {
		t.Parallel()

		a := cleanAnnotation(t)
		for i := range 8 {
			a.Timeline = append(a.Timeline, timeline.Entry{
				ID:          strings.Repeat("x", i+1),
				Timestamp:   timeline.FormatTimestamp(120 + i*10),
				SectionType: "Bridge",
				Narrative:   "Strings answer the lead melody",
				Tags:        "strings",
			})
		}
		res := lint.Lint(a, lint.DefaultRules())
		require.Len(t, res.Errors(), 1)
		assert.Contains(t, res.Errors()[0].Message, "(11)")
	})

	t.Run("warnings_never_block", func(t *testing.T) {
		t.Parallel()

		a := cleanAnnotation(t)
		a.Timeline = a.Timeline[:1]
		a.Timeline[0].Narrative = "I think the intro is nice"
		a.Timeline[0].Tags = ""
		a.Global.Set(annotation.Genre, "This track is pop")
		a.Global.Set(annotation.Wow, "Catchy hook")
		a.ElapsedSeconds = 1801

		res := lint.Lint(a, lint.DefaultRules())
		assert.True(t, res.CanExport)
		assert.Empty(t, res.Errors())

		msgs := make([]string, 0, len(res.Warnings()))
		for _, w := range res.Warnings() {
			msgs = append(msgs, w.Field+": "+w.Message)
		}
		assert.Contains(t, msgs, "Timeline: Only 1 section logged, consider adding more structural detail")
		assert.Contains(t, msgs, "Timeline row 1: Appears to use first-person, check before submitting")
		assert.Contains(t, msgs, "Timeline row 1: Vague adjective detected, be more specific")
		assert.Contains(t, msgs, "Timeline row 1: No tags, add instrument and vibe context")
		assert.Contains(t, msgs, "Genre: Avoid referential openers ('In this song', 'This track')")
		assert.Contains(t, msgs, "The 'Wow' Factor: Wow Factor seems brief, this is a critical field")
		assert.Contains(t, msgs, "Session Timer: Session exceeded 30 minutes, try to stay under that")
	})

	t.Run("global_fields_use_display_labels", func(t *testing.T) {
		t.Parallel()

		a := cleanAnnotation(t)
		a.Global.Clear(annotation.Genre)
		a.Global.Set(annotation.Mix, "A cool wide mix")
		a.Global.Set(annotation.Wow, "Short")

		res := lint.Lint(a, lint.DefaultRules())
		fields := make(map[string]bool)
		for _, i := range res.Issues {
			fields[i.Field] = true
		}
		for _, c := range []annotation.Category{annotation.Genre, annotation.Mix, annotation.Wow} {
			assert.True(t, fields[c.Def().DisplayLabel], c.String())
			assert.False(t, fields[c.Def().ExcelLabel] && c.Def().ExcelLabel != c.Def().DisplayLabel, c.String())
		}
	})

	t.Run("vague_adjective_needs_word_boundary", func(t *testing.T) {
		t.Parallel()

		a := cleanAnnotation(t)
		a.Timeline[0].Narrative = "A goodbye refrain over coolant-cold synths"
		res := lint.Lint(a, lint.DefaultRules())
		assert.Empty(t, res.Warnings())
	})

	t.Run("custom_patterns", func(t *testing.T) {
		t.Parallel()

		rules := lint.DefaultRules()
		rules.Patterns = []lint.Pattern{{
			Name:     "no_banger",
			Expr:     `(?i)\bbanger\b`,
			Severity: lint.SeverityError,
			Message:  "Describe the track instead of rating it",
			Scope:    lint.ScopeGlobal,
		}}
		require.NoError(t, rules.Validate())

		a := cleanAnnotation(t)
		a.Global.Set(annotation.Quality, "A total BANGER from start to finish")
		a.Timeline[0].Narrative = "banger"
		res := lint.Lint(a, rules)
		require.Len(t, res.Errors(), 1)
		assert.Equal(t, phase.Global, res.Errors()[0].Phase)
		assert.False(t, res.CanExport)
	})
}

func TestRulesValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, lint.DefaultRules().Validate())

	rules := lint.DefaultRules()
	rules.Patterns = append(rules.Patterns, lint.Pattern{Name: "broken", Expr: "(", Severity: lint.SeverityWarning, Message: "x", Scope: lint.ScopeAll})
	require.Error(t, rules.Validate())

	rules = lint.DefaultRules()
	rules.MaxTimelineEntries = 0
	require.Error(t, rules.Validate())
}
