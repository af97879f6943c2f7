// Package phrase turns who/what/where/when fields into a narrative
// sentence.
package phrase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Input struct {
	Who   string `json:"who"`
	What  string `json:"what"`
	Where string `json:"where"`
	When  string `json:"when"`
}

var (
	templatesAll     = []string{"{who} {what} {where} {when}.", "{when}, {who} {what} {where}.", "{where}, {who} {what} {when}."}
	templatesNoWhen  = []string{"{who} {what} {where}.", "{where}, {who} {what}."}
	templatesNoWhere = []string{"{who} {what} {when}.", "{when}, {who} {what}."}
	templatesMinimal = []string{"{who} {what}."}
)

var (
	WhoSuggestions   = []string{"Bass", "Sub", "Kick", "Snare", "Hats", "Percussion", "Lead", "Pad", "Chords", "Arp", "Vocal lead", "Backing vocal", "Guitar", "Keys", "Strings", "Brass", "FX", "Ambience"}
	WhatSuggestions  = []string{"enters", "drops out", "builds", "resolves", "swells", "cuts through", "doubles", "widens", "narrows", "pushes", "drags", "tightens", "distorts", "clips", "masks", "gets more syncopated", "gets sparser", "gets denser", "takes centre stage", "sits in the background"}
	WhereSuggestions = []string{"in the intro", "in the verse", "in the chorus", "in the bridge", "in the drop", "in the breakdown", "in the build", "in the outro", "across the mix", "in the low end", "in the midrange", "at the top"}
	WhenSuggestions  = []string{"after the fill", "before the drop", "at the transition", "from bar 1", "midway through", "at the end", "on beat 1", "on the offbeat", "early in the section", "late in the section"}
)

func templates(in Input) []string {
	hasWhere := strings.TrimSpace(in.Where) != ""
	hasWhen := strings.TrimSpace(in.When) != ""
	switch {
	case hasWhere && hasWhen:
		return templatesAll
	case hasWhere:
		return templatesNoWhen
	case hasWhen:
		return templatesNoWhere
	default:
		return templatesMinimal
	}
}

// Build renders variant of the templates that fit the filled fields.
// Variants wrap around. Who and what are required; Build returns "" when
// either is blank.
func Build(in Input, variant int) string {
	if strings.TrimSpace(in.Who) == "" || strings.TrimSpace(in.What) == "" {
		return ""
	}
	ts := templates(in)
	tpl := ts[((variant%len(ts))+len(ts))%len(ts)]

	r := strings.NewReplacer(
		"{who}", strings.ToLower(strings.TrimSpace(in.Who)),
		"{what}", strings.ToLower(strings.TrimSpace(in.What)),
		"{where}", strings.ToLower(strings.TrimSpace(in.Where)),
		"{when}", strings.ToLower(strings.TrimSpace(in.When)),
	)
	return capitalize(clean(r.Replace(tpl)))
}

// Variants returns every sentence Build can produce for in.
func Variants(in Input) []string {
	var out []string
	for i := range templates(in) {
		if s := Build(in, i); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var (
	multiSpace       = regexp.MustCompile(`\s{2,}`)
	spaceBeforeDot   = regexp.MustCompile(`\s+\.`)
	spaceBeforeComma = regexp.MustCompile(`\s+,`)
)

func clean(s string) string {
	s = multiSpace.ReplaceAllString(s, " ")
	s = spaceBeforeDot.ReplaceAllString(s, ".")
	s = spaceBeforeComma.ReplaceAllString(s, ",")
	return strings.TrimSpace(s)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
