package classifier

import (
	"strings"
	"unicode"
)

// Rule short-circuits scoring: when Match returns true the snippet gets
// Category and nothing else is consulted.
type Rule struct {
	Name     string
	Category Category
	Match    func(snippet string) bool
}

// DefaultRules returns the override rules in priority order. structured is
// consulted by the rules that only fire when no strong C++ evidence is
// present. The rules receive the snippet with surrounding whitespace trimmed.
func DefaultRules(structured SignalSet) []Rule {
	return []Rule{
		{Name: "box-drawing", Category: CategoryPlaintext, Match: hasBoxDrawing},
		{Name: "directory-root", Category: CategoryPlaintext, Match: isDirectoryRoot},
		{Name: "bracket-notation", Category: CategoryPlaintext, Match: isBracketNotation},
		{Name: "labeled-diagram", Category: CategoryPlaintext, Match: containsAny("Pool:", "Layout:", "→", "Index map:")},
		{Name: "step-walkthrough", Category: CategoryPlaintext, Match: containsAny("Grammar Rules:", "Execute:", "Step 1:", "Step 2:")},
		{Name: "pseudo-code", Category: CategoryPlaintext, Match: isPseudoCode},
		{Name: "before-after", Category: CategoryPlaintext, Match: isBeforeAfter(structured)},
		{Name: "comment-prose", Category: CategoryPlaintext, Match: isCommentProse(structured)},
	}
}

var boxDrawing = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x2500, Hi: 0x257f, Stride: 1}},
}

func hasBoxDrawing(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.Is(boxDrawing, r)
	}) >= 0
}

// isDirectoryRoot matches file trees written without connectors, e.g.
// "Engine/" followed by indented entries.
func isDirectoryRoot(s string) bool {
	line := firstLine(s)
	if !strings.HasSuffix(line, "/") || strings.HasSuffix(line, "*/") {
		return false
	}
	if strings.HasPrefix(line, "//") {
		return false
	}
	return !strings.ContainsAny(line, ";{}()=")
}

func isBracketNotation(s string) bool {
	return strings.HasPrefix(s, "[") &&
		strings.HasSuffix(s, "]") &&
		strings.Count(s, "[") <= 5 &&
		!strings.Contains(s, "\n")
}

func isPseudoCode(s string) bool {
	return strings.Contains(s, "function ") &&
		strings.Contains(s, ":") &&
		strings.Contains(s, "while ") &&
		strings.Contains(s, " != ")
}

func isBeforeAfter(structured SignalSet) func(string) bool {
	return func(s string) bool {
		if !strings.Contains(s, "Before ") || !strings.Contains(s, "After ") {
			return false
		}
		return !structured.HasStrong(s)
	}
}

func isCommentProse(structured SignalSet) func(string) bool {
	return func(s string) bool {
		if !strings.HasPrefix(firstLine(s), "//") {
			return false
		}
		return !structured.HasStrong(s)
	}
}

func containsAny(markers ...string) func(string) bool {
	return func(s string) bool {
		for _, m := range markers {
			if strings.Contains(s, m) {
				return true
			}
		}
		return false
	}
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
