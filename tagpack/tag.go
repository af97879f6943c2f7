// Package tagpack manages the tag vocabulary offered while annotating.
package tagpack

import (
	"regexp"
	"slices"
	"strings"
)

type Type string

const (
	TypeSection     Type = "section"
	TypeSource      Type = "source"
	TypeAction      Type = "action"
	TypeQuality     Type = "quality"
	TypeMix         Type = "mix"
	TypeGenreMarker Type = "genre_marker"
	TypeTiming      Type = "timing"
	TypeCustom      Type = "custom"
)

var types = []Type{TypeSection, TypeSource, TypeAction, TypeQuality, TypeMix, TypeGenreMarker, TypeTiming, TypeCustom}

func (t Type) Valid() bool {
	return slices.Contains(types, t)
}

type Source string

const (
	SourceBuiltin  Source = "builtin"
	SourceCustom   Source = "custom"
	SourceImported Source = "imported"
)

type Tag struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Normalized string   `json:"normalized"`
	Type       Type     `json:"type"`
	Category   string   `json:"category"`
	Source     Source   `json:"source"`
	PackIDs    []string `json:"packIds"`
}

type Pack struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description,omitempty"`
	Version     float64 `json:"version"`
	Builtin     bool    `json:"builtin"`
}

// Normalize is the form labels are compared in.
func Normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func slug(label string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(label), "_")
}
