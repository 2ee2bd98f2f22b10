package metadata

import "strings"

// SourcesMarker is the exact first line of a trailing sources block.
const SourcesMarker = "**Sources**"

// sourcesBlockStart is the blank line that must precede the marker.
const sourcesBlockStart = "\n\n" + SourcesMarker

// SplitResult holds a message body separated from its trailing sources block.
type SplitResult struct {
	Content string `json:"content" yaml:"content"`
	Sources string `json:"sources" yaml:"sources"`
}

// SplitContent separates the prose of a message from the last blank-line
// separated block whose first line is exactly SourcesMarker. Both halves are
// trimmed when a block is found; otherwise content is returned unchanged with
// empty sources.
func SplitContent(content string) SplitResult {
	idx := findSourcesBlock(content)
	if idx < 0 {
		return SplitResult{Content: content}
	}
	return SplitResult{
		Content: strings.TrimSpace(content[:idx]),
		Sources: strings.TrimSpace(content[idx:]),
	}
}

// findSourcesBlock returns the byte offset of the last valid sources block, or -1.
// A candidate is valid only when the marker line ends at a newline or at the end
// of content, so "**Sources**: see below" does not qualify.
func findSourcesBlock(content string) int {
	end := len(content)
	for end > 0 {
		idx := strings.LastIndex(content[:end], sourcesBlockStart)
		if idx < 0 {
			return -1
		}
		after := idx + len(sourcesBlockStart)
		if after == len(content) || content[after] == '\n' {
			return idx
		}
		end = idx + len(sourcesBlockStart) - 1
	}
	return -1
}
