package timeline

import (
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrMissingSectionType = errors.New("section type is required")
	ErrMissingNarrative   = errors.New("narrative is required")
	ErrInvalidTimestamp   = errors.New("timestamp must use M:SS format")
)

type DraftMode string

const (
	DraftModeNew  DraftMode = "new"
	DraftModeEdit DraftMode = "edit"
)

// Draft is the state of the mark-entry editor. It survives reloads as
// part of the session snapshot.
type Draft struct {
	Mode        DraftMode `json:"mode"`
	EntryID     string    `json:"entryId,omitempty"`
	Timestamp   string    `json:"timestamp"`
	SectionType string    `json:"sectionType"`
	Narrative   string    `json:"narrative"`
	// NarrativeRaw is captured when the draft is opened and never follows
	// later narrative edits.
	NarrativeRaw        string `json:"narrativeRaw"`
	Tags                string `json:"tags"`
	WasTimerRunning     bool   `json:"wasTimerRunning"`
	IsDictated          bool   `json:"isDictated,omitempty"`
	DictationTranscript string `json:"dictationTranscript,omitempty"`
	PolishedThisSession bool   `json:"polishedThisSession,omitempty"`
}

// NewDraft opens the editor for a new entry at ts. A dictated transcript
// becomes both the starting narrative and the raw snapshot.
func NewDraft(ts, initialNarrative string, dictated, timerRunning bool) *Draft {
	d := &Draft{
		Mode:            DraftModeNew,
		Timestamp:       ts,
		Narrative:       initialNarrative,
		NarrativeRaw:    initialNarrative,
		WasTimerRunning: timerRunning,
		IsDictated:      dictated,
	}
	if dictated {
		d.DictationTranscript = initialNarrative
	}
	return d
}

// EditDraft opens the editor on an existing entry, carrying its raw
// snapshot forward untouched.
func EditDraft(e Entry) *Draft {
	return &Draft{
		Mode:         DraftModeEdit,
		EntryID:      e.ID,
		Timestamp:    e.Timestamp,
		SectionType:  e.SectionType,
		Narrative:    e.Narrative,
		NarrativeRaw: e.NarrativeRaw,
		Tags:         e.Tags,
		IsDictated:   e.IsDictated,
	}
}

func (d *Draft) SetNarrative(text string) {
	d.Narrative = text
}

// AcceptPolished replaces the narrative with cleaned up text. The raw
// snapshot keeps the text as it was before any cleanup.
func (d *Draft) AcceptPolished(text string) {
	if d.NarrativeRaw == "" {
		d.NarrativeRaw = strings.TrimSpace(d.Narrative)
	}
	d.Narrative = text
	d.PolishedThisSession = true
}

func (d *Draft) Nudge(delta int) {
	d.Timestamp = Nudge(d.Timestamp, delta)
}

// AddTag appends tag unless it is already present.
func (d *Draft) AddTag(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	existing := SplitTags(d.Tags)
	if slices.Contains(existing, tag) {
		return
	}
	d.Tags = strings.Join(append(existing, tag), ", ")
}

func (d *Draft) Validate() error {
	switch {
	case !IsValidTimestamp(d.Timestamp):
		return ErrInvalidTimestamp
	case strings.TrimSpace(d.SectionType) == "":
		return ErrMissingSectionType
	case strings.TrimSpace(d.Narrative) == "":
		return ErrMissingNarrative
	default:
		return nil
	}
}

func (d *Draft) CanSave() bool {
	return nil == d.Validate()
}

// Save folds the draft into entries and returns the reordered timeline.
// New entries get an ID from newID, or a random UUID when newID is nil.
func (d *Draft) Save(entries []Entry, newID func() string) ([]Entry, error) {
	if err := d.Validate(); nil != err {
		return nil, err
	}

	narrative := strings.TrimSpace(d.Narrative)
	raw := d.NarrativeRaw
	if raw == "" {
		raw = narrative
	}

	entry := Entry{
		Timestamp:    d.Timestamp,
		SectionType:  strings.TrimSpace(d.SectionType),
		Narrative:    narrative,
		NarrativeRaw: raw,
		Tags:         strings.TrimSpace(d.Tags),
		WasPolished:  d.PolishedThisSession,
		IsDictated:   d.IsDictated,
	}

	if d.Mode == DraftModeEdit && d.EntryID != "" {
		existing, ok := Find(entries, d.EntryID)
		if !ok {
			return nil, ErrEntryNotFound
		}
		entry.ID = existing.ID
		entry.WasPolished = entry.WasPolished || existing.WasPolished
		if existing.NarrativeRaw != "" {
			entry.NarrativeRaw = existing.NarrativeRaw
		}
		return Replace(entries, entry)
	}

	if nil == newID {
		newID = uuid.NewString
	}
	entry.ID = newID()
	return Reorder(append(slices.Clone(entries), entry)), nil
}
