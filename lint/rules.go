package lint

import (
	"fmt"
	"regexp"
	"sync"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Scope selects which free text a Pattern is matched against.
type Scope string

const (
	ScopeTimeline Scope = "timeline"
	ScopeGlobal   Scope = "global"
	ScopeAll      Scope = "all"
)

// Pattern flags free text matching Expr (RE2 syntax).
type Pattern struct {
	Name     string   `yaml:"name"`
	Expr     string   `yaml:"expr"`
	Severity Severity `yaml:"severity"`
	Message  string   `yaml:"message"`
	Scope    Scope    `yaml:"scope"`
}

func (p Pattern) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("pattern name is empty")
	}
	switch p.Severity {
	case SeverityError, SeverityWarning:
	default:
		return fmt.Errorf("pattern %s: unknown severity %q", p.Name, p.Severity)
	}
	switch p.Scope {
	case ScopeTimeline, ScopeGlobal, ScopeAll:
	default:
		return fmt.Errorf("pattern %s: unknown scope %q", p.Name, p.Scope)
	}
	if p.Message == "" {
		return fmt.Errorf("pattern %s: message is empty", p.Name)
	}
	if _, err := compile(p.Expr); nil != err {
		return fmt.Errorf("pattern %s: %v", p.Name, err)
	}
	return nil
}

func (p Pattern) appliesTo(s Scope) bool {
	return p.Scope == ScopeAll || p.Scope == s
}

type Rules struct {
	MaxTimelineEntries  int       `yaml:"max_timeline_entries"`
	MinSuggestedEntries int       `yaml:"min_suggested_entries"`
	MinWowWords         int       `yaml:"min_wow_words"`
	MaxSessionSeconds   int       `yaml:"max_session_seconds"`
	Patterns            []Pattern `yaml:"patterns"`
}

func DefaultRules() Rules {
	return Rules{
		MaxTimelineEntries:  10,
		MinSuggestedEntries: 3,
		MinWowWords:         15,
		MaxSessionSeconds:   1800,
		Patterns: []Pattern{
			{
				Name:     "first_person",
				Expr:     `\bI\b`,
				Severity: SeverityWarning,
				Message:  "Appears to use first-person, check before submitting",
				Scope:    ScopeTimeline,
			},
			{
				Name:     "referential_opener",
				Expr:     `(?i)^(In this song|This track|The song)`,
				Severity: SeverityWarning,
				Message:  "Avoid referential openers ('In this song', 'This track')",
				Scope:    ScopeAll,
			},
			{
				Name:     "vague_adjective",
				Expr:     `(?i)\b(nice|cool|good)\b`,
				Severity: SeverityWarning,
				Message:  "Vague adjective detected, be more specific",
				Scope:    ScopeAll,
			},
		},
	}
}

func (r Rules) Validate() error {
	if r.MaxTimelineEntries <= 0 {
		return fmt.Errorf("max timeline entries must be positive")
	}
	if r.MinSuggestedEntries < 0 || r.MinWowWords < 0 || r.MaxSessionSeconds < 0 {
		return fmt.Errorf("lint thresholds must not be negative")
	}
	for _, p := range r.Patterns {
		if err := p.Validate(); nil != err {
			return err
		}
	}
	return nil
}

var compiled sync.Map

func compile(expr string) (*regexp.Regexp, error) {
	if re, ok := compiled.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if nil != err {
		return nil, err
	}
	compiled.Store(expr, re)
	return re, nil
}
