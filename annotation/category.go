package annotation

import (
	"fmt"
)

// Category is one of the nine whole-track judgments.
type Category int

const (
	Genre Category = iota
	Instrumentation
	Mix
	Playing
	Vocals
	Emotion
	Lyrics
	Quality
	Wow

	NumCategories = int(Wow) + 1
)

type CategoryDef struct {
	Key           string
	ExcelLabel    string
	DisplayLabel  string
	Guidance      string
	SuggestedTags []string
	CanBeNA       bool
}

var categories = [NumCategories]CategoryDef{
	Genre: {
		Key:           "genre",
		ExcelLabel:    "GENRE",
		DisplayLabel:  "Genre",
		Guidance:      "Primary genre and notable sub-genre influences, with the cues that place it there.",
		SuggestedTags: []string{"hybrid", "regional", "retro", "contemporary"},
	},
	Instrumentation: {
		Key:           "instrumentation",
		ExcelLabel:    "INSTRUMENTATION",
		DisplayLabel:  "Instrumentation",
		Guidance:      "Which instruments and sound sources carry the track, and how they are layered.",
		SuggestedTags: []string{"synth", "drums", "bass", "guitar", "piano", "strings", "samples"},
	},
	Mix: {
		Key:           "mix",
		ExcelLabel:    "MIX & PRODUCTION",
		DisplayLabel:  "Mix & Production",
		Guidance:      "Balance, stereo image, dynamics and production techniques that stand out.",
		SuggestedTags: []string{"wide", "compressed", "dry", "reverb-heavy", "lo-fi", "polished"},
	},
	Playing: {
		Key:           "playing",
		ExcelLabel:    "PLAYING STYLE",
		DisplayLabel:  "Playing Style",
		Guidance:      "Technique, groove and feel of the performers or programming.",
		SuggestedTags: []string{"syncopated", "laid-back", "tight", "improvised", "quantized"},
	},
	Vocals: {
		Key:           "vocals",
		ExcelLabel:    "VOCALS",
		DisplayLabel:  "Vocals",
		Guidance:      "Vocal timbre, delivery, processing and arrangement. Mark N/A for instrumentals.",
		SuggestedTags: []string{"falsetto", "autotune", "harmonies", "spoken", "ad-libs"},
		CanBeNA:       true,
	},
	Emotion: {
		Key:           "emotion",
		ExcelLabel:    "EMOTION & MOOD",
		DisplayLabel:  "Emotion & Mood",
		Guidance:      "The mood the track conveys and how it shifts over time.",
		SuggestedTags: []string{"melancholic", "euphoric", "tense", "playful", "calm"},
	},
	Lyrics: {
		Key:           "lyrics",
		ExcelLabel:    "LYRICS & THEMES",
		DisplayLabel:  "Lyrics & Themes",
		Guidance:      "Lyrical themes, language and storytelling. Mark N/A when there are no lyrics.",
		SuggestedTags: []string{"narrative", "abstract", "repetitive", "bilingual"},
		CanBeNA:       true,
	},
	Quality: {
		Key:           "quality",
		ExcelLabel:    "OVERALL QUALITY",
		DisplayLabel:  "Overall Quality",
		Guidance:      "Craft and execution compared with strong releases in the same genre.",
		SuggestedTags: []string{"professional", "demo", "ambitious", "derivative"},
	},
	Wow: {
		Key:          "wow",
		ExcelLabel:   "THE 'WOW' FACTOR",
		DisplayLabel: "The 'Wow' Factor",
		Guidance:     "What makes this track memorable or distinct. Be specific and write at least a few sentences.",
	},
}

func Categories() []Category {
	out := make([]Category, NumCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

func (c Category) Valid() bool {
	return c >= 0 && int(c) < NumCategories
}

// Def panics on an out-of-range category.
func (c Category) Def() CategoryDef {
	return categories[c]
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categories[c].Key
}

func ParseCategory(key string) (Category, error) {
	for i, def := range categories {
		if def.Key == key {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown global category %q", key)
}
