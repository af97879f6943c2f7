package tagpack

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Library is the persisted tag vocabulary together with the visibility
// choices the annotator made.
type Library struct {
	Packs              []Pack           `json:"packs"`
	Tags               []Tag            `json:"tags"`
	EnabledPackIDs     []string         `json:"enabledPackIds"`
	HiddenBuiltinIDs   []string         `json:"hiddenBuiltinTagIds"`
	SessionHiddenIDs   map[int][]string `json:"sessionHiddenTagIdsByTrack"`
	CustomSectionTypes []string         `json:"customSectionTypes"`
}

// NewLibrary returns the builtin vocabulary with only the general pack
// enabled.
func NewLibrary() *Library {
	return &Library{
		Packs:              BuiltinPacks(),
		Tags:               BuiltinTags(),
		EnabledPackIDs:     []string{"general"},
		HiddenBuiltinIDs:   []string{},
		SessionHiddenIDs:   map[int][]string{},
		CustomSectionTypes: []string{},
	}
}

type ImportStats struct {
	Added  int `json:"added"`
	Merged int `json:"merged"`
}

// Import adds pack and its tags. A tag whose normalized label already
// exists is not duplicated; the existing tag joins the pack instead.
// Imported packs are enabled.
func (l *Library) Import(pack ImportPack) ImportStats {
	var stats ImportStats

	if i := slices.IndexFunc(l.Packs, func(p Pack) bool { return p.ID == pack.PackID }); i >= 0 {
		l.Packs[i].Label = pack.Label
		l.Packs[i].Version = pack.Version
	} else {
		l.Packs = append(l.Packs, Pack{ID: pack.PackID, Label: pack.Label, Version: pack.Version})
	}
	l.EnablePack(pack.PackID)

	for _, row := range pack.Tags {
		norm := Normalize(row.Label)
		i := slices.IndexFunc(l.Tags, func(t Tag) bool { return t.Normalized == norm })
		if i >= 0 {
			if !slices.Contains(l.Tags[i].PackIDs, pack.PackID) {
				l.Tags[i].PackIDs = append(l.Tags[i].PackIDs, pack.PackID)
			}
			stats.Merged++
			continue
		}
		l.Tags = append(l.Tags, Tag{
			ID:         "imported_" + pack.PackID + "_" + slug(row.Label),
			Label:      strings.TrimSpace(row.Label),
			Normalized: norm,
			Type:       row.Type,
			Category:   row.Category,
			Source:     SourceImported,
			PackIDs:    []string{pack.PackID},
		})
		stats.Added++
	}
	return stats
}

// AddCustomTag adds a tag that belongs to no pack and is therefore always
// shown. It returns the existing tag when the label is already known.
func (l *Library) AddCustomTag(label string, typ Type, category string) Tag {
	norm := Normalize(label)
	if t, ok := lo.Find(l.Tags, func(t Tag) bool { return t.Normalized == norm }); ok {
		return t
	}
	if !typ.Valid() {
		typ = TypeCustom
	}
	if strings.TrimSpace(category) == "" {
		category = "Custom"
	}
	t := Tag{
		ID:         "custom_" + slug(label),
		Label:      strings.TrimSpace(label),
		Normalized: norm,
		Type:       typ,
		Category:   category,
		Source:     SourceCustom,
		PackIDs:    []string{},
	}
	l.Tags = append(l.Tags, t)
	return t
}

func (l *Library) EnablePack(id string) {
	if !slices.Contains(l.EnabledPackIDs, id) {
		l.EnabledPackIDs = append(l.EnabledPackIDs, id)
	}
}

func (l *Library) DisablePack(id string) {
	l.EnabledPackIDs = lo.Without(l.EnabledPackIDs, id)
}

func (l *Library) HideBuiltin(tagID string) {
	if !slices.Contains(l.HiddenBuiltinIDs, tagID) {
		l.HiddenBuiltinIDs = append(l.HiddenBuiltinIDs, tagID)
	}
}

func (l *Library) RestoreBuiltin(tagID string) {
	l.HiddenBuiltinIDs = lo.Without(l.HiddenBuiltinIDs, tagID)
}

// HideForSession hides a tag from the picker of one track only.
func (l *Library) HideForSession(trackID int, tagID string) {
	if nil == l.SessionHiddenIDs {
		l.SessionHiddenIDs = map[int][]string{}
	}
	if !slices.Contains(l.SessionHiddenIDs[trackID], tagID) {
		l.SessionHiddenIDs[trackID] = append(l.SessionHiddenIDs[trackID], tagID)
	}
}

func (l *Library) AddCustomSectionType(name string) {
	name = strings.TrimSpace(name)
	if name != "" && !slices.Contains(l.CustomSectionTypes, name) {
		l.CustomSectionTypes = append(l.CustomSectionTypes, name)
	}
}

// SessionTags returns the tags offered while annotating trackID: tags of
// enabled packs plus pack-less ones, minus hidden builtins and tags hidden
// for the track, filtered by query.
func (l *Library) SessionTags(trackID int, query string) []Tag {
	hidden := l.SessionHiddenIDs[trackID]
	tags := lo.Filter(l.Tags, func(t Tag, _ int) bool {
		if l.builtinHidden(t) || slices.Contains(hidden, t.ID) {
			return false
		}
		if len(t.PackIDs) > 0 {
			return lo.Some(t.PackIDs, l.EnabledPackIDs)
		}
		return true
	})
	return search(tags, query)
}

// LibraryTags returns every tag except hidden builtins, filtered by query.
func (l *Library) LibraryTags(query string) []Tag {
	return search(lo.Reject(l.Tags, func(t Tag, _ int) bool { return l.builtinHidden(t) }), query)
}

func (l *Library) HiddenBuiltins() []Tag {
	return lo.Filter(l.Tags, func(t Tag, _ int) bool { return l.builtinHidden(t) })
}

func (l *Library) builtinHidden(t Tag) bool {
	return t.Source == SourceBuiltin && slices.Contains(l.HiddenBuiltinIDs, t.ID)
}

// IDsToString joins the labels of ids the way timeline entries store tags.
// Unknown ids are dropped.
func (l *Library) IDsToString(ids []string) string {
	labels := lo.FilterMap(ids, func(id string, _ int) (string, bool) {
		t, ok := lo.Find(l.Tags, func(t Tag) bool { return t.ID == id })
		return t.Label, ok
	})
	return strings.Join(labels, ", ")
}

func search(tags []Tag, query string) []Tag {
	q := Normalize(query)
	if q == "" {
		return tags
	}
	return lo.Filter(tags, func(t Tag, _ int) bool {
		return strings.Contains(t.Normalized, q) ||
			strings.Contains(strings.ToLower(t.Category), q) ||
			strings.Contains(string(t.Type), q)
	})
}

type CategoryGroup struct {
	Category string
	Tags     []Tag
}

// GroupByCategory groups tags by category in order of first appearance.
func GroupByCategory(tags []Tag) []CategoryGroup {
	var out []CategoryGroup
	index := make(map[string]int)
	for _, t := range tags {
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryGroup{Category: t.Category})
		}
		out[i].Tags = append(out[i].Tags, t)
	}
	return out
}
