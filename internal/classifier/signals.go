package classifier

import (
	"regexp"
	"strings"
)

// Indicator is one piece of evidence: a literal substring or, when Pattern
// is set, a regular expression (usually line anchored). When Context is
// set the indicator only counts if Context also matches somewhere in the
// snippet.
type Indicator struct {
	Text    string
	Pattern *regexp.Regexp
	Context *regexp.Regexp
	Strong  bool
}

func (i Indicator) Match(snippet string) bool {
	if i.Context != nil && !i.Context.MatchString(snippet) {
		return false
	}
	if i.Pattern != nil {
		return i.Pattern.MatchString(snippet)
	}
	return strings.Contains(snippet, i.Text)
}

func (i Indicator) String() string {
	if i.Pattern != nil {
		return i.Pattern.String()
	}
	return i.Text
}

func strong(text string) Indicator { return Indicator{Text: text, Strong: true} }
func weak(text string) Indicator   { return Indicator{Text: text} }

func strongRe(expr string) Indicator {
	return Indicator{Text: expr, Pattern: regexp.MustCompile(expr), Strong: true}
}

func weakRe(expr string) Indicator {
	return Indicator{Text: expr, Pattern: regexp.MustCompile(expr)}
}

// strongWithin is a strong pattern that needs context to be told apart
// from prose.
func strongWithin(expr, context string) Indicator {
	ind := strongRe(expr)
	ind.Context = regexp.MustCompile(context)
	return ind
}

// SignalSet is an ordered list of indicators for one category.
type SignalSet []Indicator

// Score counts distinct indicators present in the snippet. Repeats of the
// same indicator count once.
func (s SignalSet) Score(snippet string) int {
	n := 0
	for _, ind := range s {
		if ind.Match(snippet) {
			n++
		}
	}
	return n
}

// HasStrong reports whether any strong indicator matches.
func (s SignalSet) HasStrong(snippet string) bool {
	for _, ind := range s {
		if ind.Strong && ind.Match(snippet) {
			return true
		}
	}
	return false
}

// Matches returns the indicators present in the snippet, in table order.
func (s SignalSet) Matches(snippet string) []string {
	var out []string
	for _, ind := range s {
		if ind.Match(snippet) {
			out = append(out, ind.String())
		}
	}
	return out
}

// Keywords that also read as English words are anchored on word
// boundaries so "avoid " or "subclass " do not count. The same holds for
// the shader and script tables below.
var cppSignals = SignalSet{
	strongRe(`\bclass\s`),
	strongRe(`\bstruct\s`),
	strong("template<"),
	strongRe(`\bnamespace\s`),
	strong("#pragma once"),
	strong("public:"),
	strong("private:"),
	strong("protected:"),
	strongRe(`\bvirtual\s`),
	strong("override"),
	strong("#include"),
	strong("std::"),
	strong("nullptr"),
	strong("constexpr"),
	strong("static_cast<"),
	strong("uint32_t"),
	strong("size_t"),
	strong("typename"),
	strongRe(`\bvoid\s`),

	weakRe(`\bconst\s`),
	weak("->"),
	weak("::"),
	weakRe(`\busing\s`),
	weakRe(`\bauto\s`),
	weakRe(`\benum\s`),
	weakRe(`\bdelete\s`),
	weakRe(`\bnew\s`),
	weakRe(`\breturn\b`),
	weak("if ("),
	weak("for ("),
	weak("while ("),
	weakRe(`\bfloat\s`),
	weakRe(`\bint\s`),
	weakRe(`\bbool\s`),
}

var glslSignals = SignalSet{
	strong("vec2"),
	strong("vec3"),
	strong("vec4"),
	strongRe(`\bmat2`),
	strongRe(`\bmat3`),
	strongRe(`\bmat4`),
	strongRe(`\buniform\s+\w+\s+\w+\s*(\[\w*\])?\s*;`),
	strongRe(`\bvarying\s+\w+\s+\w+\s*;`),
	strongRe(`\battribute\s+\w+\s+\w+\s*;`),
	strong("gl_Position"),
	strong("gl_FragColor"),
	strong("gl_FragCoord"),
	strong("texture2D"),
	strong("sampler2D"),
	strong("samplerCube"),
	strongRe(`\bprecision\s+(lowp|mediump|highp)\b`),
	strongRe(`\b(lowp|mediump|highp)\b`),
	strong("#version "),
	strongRe(`\blayout\s*\(\s*location`),

	weak("void main()"),
	weak("discard;"),
	weakRe(`(?m)^\s*in\s+\w+\s+\w+\s*;`),
	weakRe(`(?m)^\s*out\s+\w+\s+\w+\s*;`),
	weakRe(`\bnormalize\(`),
	weakRe(`\bfract\(`),
	weakRe(`\bmix\(`),
}

var luaSignals = SignalSet{
	strongRe(`\blocal\s`),
	strongRe(`\bfunction\s*[\w.:]*\s*\(`),
	strongRe(`\belseif\b`),
	strongRe(`(?m)\bthen\s*$`),
	strongWithin(`(?m)(^|\s)end\s*$`, `\b(function|local|then)\b`),
	strongRe(`\brequire\s*[("']`),
	strong("self:"),
	strong("~="),
	strong("--[["),

	weak(" .. "),
	weakRe(`\bnil\b`),
	weakRe(`\bi?pairs\(`),
	weakRe(`(?m)^\s*--\s`),
}

// proseSignals feed the plaintext affinity score. None of them overlap the
// language tables above.
var proseSignals = SignalSet{
	weak("..."),
	weak("←"),
	weak("↑"),
	weak("↓"),
	weak("▼"),
	weak("▲"),
	weak("Input:"),
	weak("Output:"),
	weak("Token{"),
	weak("Update Phase:"),
	weak("Render Phase:"),
	weak("Before removing"),
	weak("After swap"),
	weak("Data flows:"),
	weak("requiredMask ="),
	weak("entityMask ="),
	weak("Step 3:"),
	weak("// Before"),
	weak("// After"),
	weak("Components:"),
	weak("Entities:"),
	weak("Memory Layout"),
	weak("[Entity"),
	weak("e.g."),
	weak("Note:"),
	weak("Example:"),
	weakRe(`(?m)^\s*\d+\.\s+[A-Z]`),
	weakRe(`(?m)^\s*[\w .-]+/\s*$`),
}

// DefaultSignals returns the built-in indicator tables keyed by category.
// CategoryPlaintext maps to the prose affinity set.
func DefaultSignals() map[Category]SignalSet {
	return map[Category]SignalSet{
		CategoryCpp:       cppSignals,
		CategoryGLSL:      glslSignals,
		CategoryLua:       luaSignals,
		CategoryPlaintext: proseSignals,
	}
}
