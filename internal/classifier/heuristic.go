package classifier

import "strings"

// Decision step names reported in Verdict.Rule when no override matched.
const (
	StepShader      = "shader-score"
	StepScript      = "script-score"
	StepStructured  = "structured-score"
	StepProse       = "prose-score"
	StepPunctuation = "punctuation-fallback"
	StepNoEvidence  = "no-evidence"
)

// blockSyntax is the last-resort evidence for C++ when no table matched.
const blockSyntax = "{}();"

// Heuristic is the rule-based classifier. It holds only immutable tables
// and is safe for concurrent use.
type Heuristic struct {
	overrides []Rule
	signals   map[Category]SignalSet
}

func NewHeuristic() *Heuristic {
	signals := DefaultSignals()
	return NewHeuristicWith(DefaultRules(signals[CategoryCpp]), signals)
}

// NewHeuristicWith builds a heuristic from custom tables. A missing
// category in signals scores zero.
func NewHeuristicWith(overrides []Rule, signals map[Category]SignalSet) *Heuristic {
	return &Heuristic{overrides: overrides, signals: signals}
}

func (h *Heuristic) Classify(snippet string) Category {
	return h.Explain(snippet).Category
}

// Explain matches overrides against the trimmed snippet and scores
// indicators against the snippet as given.
func (h *Heuristic) Explain(snippet string) Verdict {
	trimmed := strings.TrimSpace(snippet)

	for _, r := range h.overrides {
		if r.Match(trimmed) {
			return Verdict{Category: r.Category, Rule: r.Name, Override: true}
		}
	}

	scores := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		scores[c] = h.signals[c].Score(snippet)
	}

	category, step := decide(snippet, scores)
	return Verdict{Category: category, Rule: step, Scores: scores}
}

// Matches lists, per category, the indicators found in the snippet.
func (h *Heuristic) Matches(snippet string) map[Category][]string {
	out := make(map[Category][]string)
	for _, c := range Categories {
		if m := h.signals[c].Matches(snippet); len(m) > 0 {
			out[c] = m
		}
	}
	return out
}

// decide applies the precedence: shader ties beat C++, script ties lose to
// C++, C++ must beat prose outright.
func decide(s string, scores map[Category]int) (Category, string) {
	cpp := scores[CategoryCpp]
	glsl := scores[CategoryGLSL]
	lua := scores[CategoryLua]
	prose := scores[CategoryPlaintext]

	switch {
	case glsl > 0 && glsl >= cpp:
		return CategoryGLSL, StepShader
	case lua > 0 && lua > cpp:
		return CategoryLua, StepScript
	case cpp > 0 && cpp > prose:
		return CategoryCpp, StepStructured
	case prose > 0:
		return CategoryPlaintext, StepProse
	case strings.ContainsAny(s, blockSyntax):
		return CategoryCpp, StepPunctuation
	default:
		return CategoryPlaintext, StepNoEvidence
	}
}
