package rewriter

import (
	"html"
	"regexp"
	"strings"

	"docfix/internal/classifier"
	"docfix/internal/config"
)

var (
	codeBlockRe = regexp.MustCompile(`(?s)<pre><code([^>]*)>(.*?)</code></pre>`)
	classAttrRe = regexp.MustCompile(`(?i)(^|\s)class\s*=`)
)

type Result struct {
	Labeled       int            `json:"labeled"`
	Skipped       int            `json:"skipped"`
	Substitutions int            `json:"substitutions"`
	Distribution  map[string]int `json:"distribution"`
}

type Rewriter struct {
	classifier     classifier.Classifier
	decodeEntities bool
	substitutions  []config.Substitution
}

func New(cl classifier.Classifier, cfg config.RewriterConfig) *Rewriter {
	return &Rewriter{
		classifier:     cl,
		decodeEntities: cfg.DecodeEntities,
		substitutions:  cfg.Substitutions,
	}
}

// Apply labels code blocks and then runs the configured marker
// substitutions.
func (r *Rewriter) Apply(doc string) (string, Result) {
	out, res := r.Rewrite(doc)
	out, res.Substitutions = Substitute(out, r.substitutions)
	return out, res
}

// Rewrite adds class="language-*" to every <pre><code> block that has no
// class attribute. Block contents are copied through unchanged, so running
// Rewrite on its own output is a no-op.
func (r *Rewriter) Rewrite(doc string) (string, Result) {
	res := Result{Distribution: make(map[string]int)}

	matches := codeBlockRe.FindAllStringSubmatchIndex(doc, -1)
	if len(matches) == 0 {
		return doc, res
	}

	var b strings.Builder
	b.Grow(len(doc) + len(matches)*len(` class="language-plaintext"`))

	last := 0
	for _, m := range matches {
		attrs := doc[m[2]:m[3]]
		inner := doc[m[4]:m[5]]

		if classAttrRe.MatchString(attrs) {
			res.Skipped++
			blocksSkipped.Inc()
			continue
		}

		label := r.classifier.Classify(r.snippet(inner)).Label()
		res.Labeled++
		res.Distribution[label]++
		blocksLabeled.WithLabelValues(label).Inc()

		b.WriteString(doc[last:m[0]])
		b.WriteString(`<pre><code class="`)
		b.WriteString(label)
		b.WriteString(`"`)
		b.WriteString(attrs)
		b.WriteString(">")
		b.WriteString(inner)
		b.WriteString("</code></pre>")
		last = m[1]
	}
	b.WriteString(doc[last:])

	return b.String(), res
}

func (r *Rewriter) snippet(inner string) string {
	if r.decodeEntities {
		return html.UnescapeString(inner)
	}
	return inner
}

// Substitute replaces every occurrence of each From marker with its To
// value, in order, and returns the total number of replacements.
func Substitute(doc string, subs []config.Substitution) (string, int) {
	total := 0
	for _, s := range subs {
		if s.From == "" {
			continue
		}
		n := strings.Count(doc, s.From)
		if n == 0 {
			continue
		}
		doc = strings.ReplaceAll(doc, s.From, s.To)
		total += n
	}
	return doc, total
}
