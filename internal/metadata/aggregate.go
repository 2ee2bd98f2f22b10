package metadata

// Message is the part of a generated message that carries citation data.
type Message struct {
	// Annotations holds raw producer annotations, one per element, unvalidated.
	Annotations []interface{}
	// Content is the message body, possibly ending in a **Sources** block.
	Content string
}

// AggregateStats describes how the canonical list of a single message was assembled.
type AggregateStats struct {
	FromAnnotations   int `json:"from_annotations" yaml:"from_annotations"`
	FromMarkdown      int `json:"from_markdown" yaml:"from_markdown"`
	DuplicatesDropped int `json:"duplicates_dropped" yaml:"duplicates_dropped"`
}

// Total returns the number of citations in the canonical list.
func (s AggregateStats) Total() int {
	return s.FromAnnotations + s.FromMarkdown
}

// AggregateAll merges annotation citations and markdown sources of msg into one
// ordered list with unique URLs. Annotation citations come first; the first
// occurrence of a URL keeps all of its fields. A nil message yields an empty list.
func AggregateAll(msg *Message) []Citation {
	citations, _ := AggregateWithStats(msg)
	return citations
}

// AggregateWithStats is AggregateAll that also reports where citations came from.
func AggregateWithStats(msg *Message) ([]Citation, AggregateStats) {
	var stats AggregateStats
	citations := []Citation{}
	if msg == nil {
		return citations, stats
	}

	seen := NewSeenURLs()

	if len(msg.Annotations) > 0 {
		fromAnnotations, dropped := extractAnnotations(msg.Annotations, seen)
		citations = append(citations, fromAnnotations...)
		stats.FromAnnotations = len(fromAnnotations)
		stats.DuplicatesDropped += dropped
	}

	if msg.Content != "" {
		if split := SplitContent(msg.Content); split.Sources != "" {
			before := len(citations)
			var dropped int
			citations, dropped = appendUnseen(citations, ParseMarkdownSources(split.Sources), seen)
			stats.FromMarkdown = len(citations) - before
			stats.DuplicatesDropped += dropped
		}
	}

	return citations, stats
}
