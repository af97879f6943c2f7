package timeline

import (
	"cmp"
	"errors"
	"slices"
	"strings"

	"github.com/samber/lo"
)

var ErrEntryNotFound = errors.New("timeline entry not found")

// Entry is a single timestamped observation about a track.
type Entry struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	SectionType string `json:"sectionType"`
	Narrative   string `json:"narrative"`
	// NarrativeRaw is the unedited narrative as first drafted. It is set
	// once per entry and carried forward by every later edit.
	NarrativeRaw string `json:"narrativeRaw"`
	// Tags is the comma joined tag text written to the workbook verbatim.
	Tags        string `json:"tags"`
	WasPolished bool   `json:"wasPolished"`
	IsDictated  bool   `json:"isDictated,omitempty"`
}

func (e Entry) TagList() []string {
	return SplitTags(e.Tags)
}

// SplitTags splits comma joined tag text into trimmed, non-empty labels.
func SplitTags(tags string) []string {
	return lo.FilterMap(strings.Split(tags, ","), func(t string, _ int) (string, bool) {
		t = strings.TrimSpace(t)
		return t, t != ""
	})
}

// Reorder returns entries sorted by timestamp. The sort is stable and
// entries with unparseable timestamps go last in their input order.
func Reorder(entries []Entry) []Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b Entry) int {
		return cmp.Compare(sortKey(a.Timestamp), sortKey(b.Timestamp))
	})
	return out
}

// Replace swaps the entry with the same ID and reorders the result.
func Replace(entries []Entry, entry Entry) ([]Entry, error) {
	idx := slices.IndexFunc(entries, func(e Entry) bool { return e.ID == entry.ID })
	if idx < 0 {
		return nil, ErrEntryNotFound
	}
	out := slices.Clone(entries)
	out[idx] = entry
	return Reorder(out), nil
}

func Remove(entries []Entry, id string) ([]Entry, error) {
	idx := slices.IndexFunc(entries, func(e Entry) bool { return e.ID == id })
	if idx < 0 {
		return nil, ErrEntryNotFound
	}
	return slices.Delete(slices.Clone(entries), idx, idx+1), nil
}

func Find(entries []Entry, id string) (Entry, bool) {
	return lo.Find(entries, func(e Entry) bool { return e.ID == id })
}
