package annotation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

var ErrNotApplicableForbidden = errors.New("category cannot be marked not applicable")

// NotApplicableText is the cell text of a slot marked not applicable.
const NotApplicableText = "N/A"

type Slot struct {
	Value         string
	Set           bool
	NotApplicable bool
}

// GlobalAnalysis holds the nine category slots, indexed by Category.
// The zero value has every slot unset.
type GlobalAnalysis [NumCategories]Slot

// Get returns the slot text. Not applicable slots read as NotApplicableText.
func (g *GlobalAnalysis) Get(c Category) (string, bool) {
	s := g[c]
	switch {
	case s.NotApplicable:
		return NotApplicableText, true
	case s.Set:
		return s.Value, true
	default:
		return "", false
	}
}

func (g *GlobalAnalysis) Set(c Category, value string) {
	g[c] = Slot{Value: value, Set: true}
}

func (g *GlobalAnalysis) Clear(c Category) {
	g[c] = Slot{}
}

func (g *GlobalAnalysis) MarkNotApplicable(c Category) error {
	if !c.Def().CanBeNA {
		return fmt.Errorf("%w: %s", ErrNotApplicableForbidden, c)
	}
	g[c] = Slot{NotApplicable: true}
	return nil
}

// Merge copies every set slot of partial over g. Unset slots of partial
// leave g untouched.
func (g *GlobalAnalysis) Merge(partial GlobalAnalysis) {
	for i, s := range partial {
		if s.Set || s.NotApplicable {
			g[i] = s
		}
	}
}

// Filled counts slots holding non-blank text or marked not applicable.
func (g *GlobalAnalysis) Filled() int {
	n := 0
	for _, s := range g {
		if s.NotApplicable || strings.TrimSpace(s.Value) != "" {
			n++
		}
	}
	return n
}

func (g GlobalAnalysis) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, NumCategories)
	for i := range g {
		if v, ok := g.Get(Category(i)); ok {
			m[Category(i).String()] = v
		}
	}
	return json.Marshal(m)
}

func (g *GlobalAnalysis) UnmarshalJSON(b []byte) error {
	var m map[string]string
	if err := json.Unmarshal(b, &m); nil != err {
		return err
	}

	var out GlobalAnalysis
	for k, v := range m {
		c, err := ParseCategory(k)
		if nil != err {
			return err
		}
		if v == NotApplicableText && c.Def().CanBeNA {
			out[c] = Slot{NotApplicable: true}
			continue
		}
		out.Set(c, v)
	}
	*g = out
	return nil
}
