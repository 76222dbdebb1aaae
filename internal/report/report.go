package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"docfix/internal/config"
)

const labelPrefix = "language-"

type Report struct {
	CodeBlocks   int            `json:"code_blocks"`
	Unlabeled    int            `json:"unlabeled"`
	Distribution map[string]int `json:"distribution"`
	Markers      map[string]int `json:"markers"`
}

// Verify parses the document and counts code blocks by label. Markers
// counts occurrences of each substitution's replacement text.
func Verify(doc string, subs []config.Substitution) (*Report, error) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	r := &Report{
		Distribution: make(map[string]int),
		Markers:      make(map[string]int),
	}

	d.Find("pre > code").Each(func(_ int, s *goquery.Selection) {
		r.CodeBlocks++
		class, ok := s.Attr("class")
		if !ok {
			r.Unlabeled++
			return
		}
		for _, c := range strings.Fields(class) {
			if strings.HasPrefix(c, labelPrefix) {
				r.Distribution[c]++
			}
		}
	})

	for _, s := range subs {
		if s.To != "" {
			r.Markers[s.To] = strings.Count(doc, s.To)
		}
	}

	return r, nil
}

func (r *Report) Labeled() int {
	n := 0
	for _, c := range r.Distribution {
		n += c
	}
	return n
}

func (r *Report) Write(w io.Writer) {
	fmt.Fprintf(w, "Verification:\n")
	fmt.Fprintf(w, "  Code blocks without language class: %d\n", r.Unlabeled)
	for _, m := range sortedKeys(r.Markers) {
		fmt.Fprintf(w, "  Markers %q: %d\n", m, r.Markers[m])
	}
	fmt.Fprintf(w, "\nLanguage distribution:\n")
	for _, l := range sortedKeys(r.Distribution) {
		fmt.Fprintf(w, "  %s: %d\n", strings.TrimPrefix(l, labelPrefix), r.Distribution[l])
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
