package tagpack

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

const defaultCategory = "Imported"

type ImportRow struct {
	Label    string `json:"label"`
	Type     Type   `json:"type"`
	Category string `json:"category"`
}

// ImportPack is a tag pack as users paste or load it.
type ImportPack struct {
	PackID  string      `json:"packId"`
	Label   string      `json:"label"`
	Version float64     `json:"version"`
	Tags    []ImportRow `json:"tags"`
}

// ImportResult carries either a pack with non-fatal row warnings in
// Errors, or, when OK is false, the reasons the input was rejected.
type ImportResult struct {
	OK     bool
	Pack   *ImportPack
	Errors []string
}

var spaces = regexp.MustCompile(`\s+`)

func normalizePackID(id string) string {
	return spaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(id)), "_")
}

func nonBlankString(r gjson.Result) (string, bool) {
	if r.Type != gjson.String {
		return "", false
	}
	s := strings.TrimSpace(r.String())
	return s, s != ""
}

// ParseImport validates a pasted tag pack. It never fails on individual
// rows: rows without a label are dropped and unknown types become custom,
// each with a warning.
func ParseImport(raw []byte) ImportResult {
	if !gjson.ValidBytes(raw) {
		return ImportResult{Errors: []string{"Invalid JSON, could not parse."}}
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return ImportResult{Errors: []string{"Expected a JSON object at the top level."}}
	}

	var errs []string
	packID, ok := nonBlankString(root.Get("packId"))
	if !ok {
		errs = append(errs, `Missing or empty "packId" field.`)
	}
	label, ok := nonBlankString(root.Get("label"))
	if !ok {
		errs = append(errs, `Missing or empty "label" field.`)
	}
	tags := root.Get("tags")
	if !tags.IsArray() {
		errs = append(errs, `"tags" must be an array.`)
	}
	if len(errs) > 0 {
		return ImportResult{Errors: errs}
	}

	pack := &ImportPack{
		PackID:  normalizePackID(packID),
		Label:   label,
		Version: 1,
		Tags:    []ImportRow{},
	}
	if v := root.Get("version"); v.Type == gjson.Number {
		pack.Version = v.Float()
	}

	var warnings []string
	for i, row := range tags.Array() {
		if !row.IsObject() {
			warnings = append(warnings, fmt.Sprintf("Row %d: not an object, skipped.", i+1))
			continue
		}
		rowLabel, ok := nonBlankString(row.Get("label"))
		if !ok {
			warnings = append(warnings, fmt.Sprintf(`Row %d: missing or empty "label", skipped.`, i+1))
			continue
		}
		typ := TypeCustom
		if t := row.Get("type"); t.Type == gjson.String {
			if Type(t.String()).Valid() {
				typ = Type(t.String())
			} else {
				warnings = append(warnings, fmt.Sprintf(`Row %d (%q): unknown type %q, mapped to "custom".`, i+1, rowLabel, t.String()))
			}
		}
		category, ok := nonBlankString(row.Get("category"))
		if !ok {
			category = defaultCategory
		}
		pack.Tags = append(pack.Tags, ImportRow{Label: rowLabel, Type: typ, Category: category})
	}

	return ImportResult{OK: true, Pack: pack, Errors: warnings}
}

// AdaptResearched converts a pack in the researched format, which names
// the tag list "terms" and the category "group", into an ImportPack. Both
// spellings are accepted. It reports false when the pack lacks an id or a
// label.
func AdaptResearched(raw gjson.Result) (*ImportPack, bool) {
	if !raw.IsObject() {
		return nil, false
	}
	packID, ok := nonBlankString(raw.Get("packId"))
	if !ok {
		return nil, false
	}
	label, ok := nonBlankString(raw.Get("label"))
	if !ok {
		return nil, false
	}

	terms := raw.Get("terms")
	if !terms.IsArray() {
		terms = raw.Get("tags")
	}

	pack := &ImportPack{PackID: normalizePackID(packID), Label: label, Version: 1, Tags: []ImportRow{}}
	if v := raw.Get("version"); v.Type == gjson.Number {
		pack.Version = v.Float()
	}
	for _, t := range terms.Array() {
		if !t.IsObject() {
			continue
		}
		rowLabel, ok := nonBlankString(t.Get("label"))
		if !ok {
			continue
		}
		typ := Type(t.Get("type").String())
		if !typ.Valid() {
			typ = TypeCustom
		}
		category, ok := nonBlankString(t.Get("group"))
		if !ok {
			if category, ok = nonBlankString(t.Get("category")); !ok {
				category = defaultCategory
			}
		}
		pack.Tags = append(pack.Tags, ImportRow{Label: rowLabel, Type: typ, Category: category})
	}
	return pack, true
}

// ParseResearchedFile reads a file of the form {"packs": [...]}. Packs
// that cannot be adapted are dropped.
func ParseResearchedFile(raw []byte) ([]ImportPack, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid JSON")
	}
	packs := gjson.GetBytes(raw, "packs")
	if !packs.IsArray() {
		return nil, fmt.Errorf(`expected a top-level "packs" array`)
	}
	var out []ImportPack
	for _, p := range packs.Array() {
		if adapted, ok := AdaptResearched(p); ok {
			out = append(out, *adapted)
		}
	}
	return out, nil
}
