// Package lint checks a track annotation before it is completed or exported.
package lint

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/xeptore/beatpulse/annotation"
	"github.com/xeptore/beatpulse/phase"
)

type Issue struct {
	Field    string      `json:"field"`
	Severity Severity    `json:"severity"`
	Message  string      `json:"message"`
	Phase    phase.Phase `json:"phase,omitempty"`
}

type Result struct {
	Issues    []Issue `json:"issues"`
	CanExport bool    `json:"canExport"`
}

func (r Result) Errors() []Issue {
	return lo.Filter(r.Issues, func(i Issue, _ int) bool { return i.Severity == SeverityError })
}

func (r Result) Warnings() []Issue {
	return lo.Filter(r.Issues, func(i Issue, _ int) bool { return i.Severity == SeverityWarning })
}

// Lint reports blocking errors followed by advisory warnings. It does not
// modify a. Patterns that fail to compile are ignored; Rules.Validate
// reports them up front.
func Lint(a *annotation.TrackAnnotation, rules Rules) Result {
	var issues []Issue
	add := func(field string, sev Severity, p phase.Phase, msg string) {
		issues = append(issues, Issue{Field: field, Severity: sev, Message: msg, Phase: p})
	}

	n := len(a.Timeline)

	if strings.TrimSpace(a.Annotator) == "" {
		add("Annotator Name", SeverityError, phase.Ready, "Annotator name is required")
	}
	if n == 0 {
		add("Timeline", SeverityError, phase.Listening, "No sections logged, add at least one timeline entry")
	}
	if n > rules.MaxTimelineEntries {
		add("Timeline", SeverityError, phase.Listening, fmt.Sprintf("Too many sections (%d), maximum is %d", n, rules.MaxTimelineEntries))
	}
	for i, e := range a.Timeline {
		if strings.TrimSpace(e.SectionType) == "" {
			add(rowLabel(i), SeverityError, phase.Listening, "Missing section type")
		}
		if strings.TrimSpace(e.Narrative) == "" {
			add(rowLabel(i), SeverityError, phase.Listening, "Missing narrative description")
		}
	}
	for _, c := range annotation.Categories() {
		slot := a.Global[c]
		if slot.NotApplicable || strings.TrimSpace(slot.Value) != "" {
			continue
		}
		msg := "Required global category is empty"
		if c.Def().CanBeNA {
			msg = "Global category is empty, fill it in or mark it N/A"
		}
		add(globalField(c), SeverityError, phase.Global, msg)
	}

	if n > 0 && n < rules.MinSuggestedEntries {
		add("Timeline", SeverityWarning, phase.Listening, fmt.Sprintf("Only %d %s logged, consider adding more structural detail", n, plural(n, "section", "sections")))
	}
	for i, e := range a.Timeline {
		for _, p := range rules.Patterns {
			if p.appliesTo(ScopeTimeline) && matches(p, e.Narrative) {
				add(rowLabel(i), p.Severity, phase.Listening, p.Message)
			}
		}
		if strings.TrimSpace(e.Tags) == "" {
			add(rowLabel(i), SeverityWarning, phase.Listening, "No tags, add instrument and vibe context")
		}
	}
	for _, c := range annotation.Categories() {
		slot := a.Global[c]
		if slot.NotApplicable || slot.Value == "" {
			continue
		}
		for _, p := range rules.Patterns {
			if p.appliesTo(ScopeGlobal) && matches(p, slot.Value) {
				add(globalField(c), p.Severity, phase.Global, p.Message)
			}
		}
	}

	if wow := strings.TrimSpace(a.Global[annotation.Wow].Value); wow != "" && len(strings.Fields(wow)) < rules.MinWowWords {
		add(globalField(annotation.Wow), SeverityWarning, phase.Global, "Wow Factor seems brief, this is a critical field")
	}
	if rules.MaxSessionSeconds > 0 && a.ElapsedSeconds > rules.MaxSessionSeconds {
		add("Session Timer", SeverityWarning, phase.Listening, fmt.Sprintf("Session exceeded %d minutes, try to stay under that", rules.MaxSessionSeconds/60))
	}

	canExport := !lo.ContainsBy(issues, func(i Issue) bool { return i.Severity == SeverityError })
	return Result{Issues: issues, CanExport: canExport}
}

func matches(p Pattern, text string) bool {
	re, err := compile(p.Expr)
	if nil != err {
		return false
	}
	return re.MatchString(text)
}

// globalField names global issues by the label the annotator sees, never
// the workbook label.
func globalField(c annotation.Category) string {
	return c.Def().DisplayLabel
}

func rowLabel(i int) string {
	return fmt.Sprintf("Timeline row %d", i+1)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
