// Package classifier decides which highlighting grammar a code snippet
// embedded in a tutorial page should use. Decisions are made from lexical
// evidence only: override rules run first, then per-category indicator
// counts are compared under a fixed precedence.
package classifier

import "strings"

type Category string

const (
	CategoryCpp       Category = "cpp"
	CategoryGLSL      Category = "glsl"
	CategoryLua       Category = "lua"
	CategoryPlaintext Category = "plaintext"
)

const labelPrefix = "language-"

// Categories lists every category in decision order.
var Categories = []Category{CategoryGLSL, CategoryLua, CategoryCpp, CategoryPlaintext}

// Label returns the class attribute value used by highlighters,
// e.g. "language-cpp".
func (c Category) Label() string {
	return labelPrefix + string(c)
}

// ParseLabel accepts either a bare category ("lua") or a label
// ("language-lua").
func ParseLabel(s string) (Category, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), labelPrefix)
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Verdict is a classification together with the evidence behind it.
type Verdict struct {
	Category Category         `json:"category"`
	Rule     string           `json:"rule"`
	Override bool             `json:"override"`
	Scores   map[Category]int `json:"scores,omitempty"`
}

// Classifier must be safe for concurrent use and must return a category
// for every input.
type Classifier interface {
	Classify(snippet string) Category
}

var defaultHeuristic = NewHeuristic()

// Classify runs the default heuristic.
func Classify(snippet string) Category {
	return defaultHeuristic.Classify(snippet)
}

// Explain runs the default heuristic and reports how it decided.
func Explain(snippet string) Verdict {
	return defaultHeuristic.Explain(snippet)
}
