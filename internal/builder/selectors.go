package builder

import (
	"regexp"
	"sort"
	"strings"
)

var (
	htmlAttrPattern = regexp.MustCompile(`(?i)\b(?:id|class)\s*=\s*["']([^"']*)["']`)
	cssPattern      = regexp.MustCompile(`[.#]([A-Za-z_-][A-Za-z0-9_-]*)`)
)

// selectorSet is a set of bare id and class names.
type selectorSet map[string]struct{}

// sorted returns the selectors in a stable order so first-match scans are deterministic.
func (s selectorSet) sorted() []string {
	out := make([]string, 0, len(s))
	for sel := range s {
		out = append(out, sel)
	}
	sort.Strings(out)
	return out
}

func (s selectorSet) has(sel string) bool {
	_, ok := s[sel]
	return ok
}

// htmlSelectors extracts id and class attribute values. Class lists are split on whitespace.
func htmlSelectors(content string) selectorSet {
	set := selectorSet{}
	for _, m := range htmlAttrPattern.FindAllStringSubmatch(content, -1) {
		for _, token := range strings.Fields(m[1]) {
			set[token] = struct{}{}
		}
	}
	return set
}

// cssSelectors extracts .class and #id names. Hex colours and file extensions
// inside url() also match and are kept.
func cssSelectors(content string) selectorSet {
	set := selectorSet{}
	for _, m := range cssPattern.FindAllStringSubmatch(content, -1) {
		set[m[1]] = struct{}{}
	}
	return set
}
