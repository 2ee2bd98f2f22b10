package metadata

import (
	"regexp"
	"strings"
)

// markdownLinkRe matches [label](destination). Labels cannot contain brackets;
// destinations may hold one level of balanced parentheses, as in
// https://en.wikipedia.org/wiki/Go_(programming_language). Unbalanced input fails to match.
var markdownLinkRe = regexp.MustCompile(`\[([^\[\]]*)\]\(((?:[^()]|\([^()]*\))+)\)`)

// ParseMarkdownSources converts markdown hyperlinks in text into citations, in
// order of appearance. Only destinations starting with the literal "http" are
// kept, so "( https://x)" is skipped. An empty label falls back to the
// destination as title. No deduplication happens here.
func ParseMarkdownSources(text string) []Citation {
	citations := []Citation{}
	if strings.TrimSpace(text) == "" {
		return citations
	}

	for _, m := range markdownLinkRe.FindAllStringSubmatch(text, -1) {
		if len(m) != 3 {
			continue
		}
		if !strings.HasPrefix(m[2], "http") {
			continue
		}
		dest := strings.TrimRight(m[2], " \t\n")
		title := strings.TrimSpace(m[1])
		if title == "" {
			title = dest
		}
		citations = append(citations, Citation{URL: dest, Title: title})
	}
	return citations
}
