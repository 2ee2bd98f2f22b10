package metadata

// Citation is the canonical record of a referenced external source.
// URL is the identity key; an empty Title or Snippet means the producer did not supply one.
type Citation struct {
	URL     string `json:"url" yaml:"url"`
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// SeenURLs tracks URLs already emitted during a single aggregation call.
// It is owned by the caller and passed by reference into each extraction stage.
type SeenURLs map[string]struct{}

// NewSeenURLs returns an empty set.
func NewSeenURLs() SeenURLs {
	return make(SeenURLs)
}

// Add marks url as seen and reports whether it was new.
// Empty URLs are never added.
func (s SeenURLs) Add(url string) bool {
	if url == "" {
		return false
	}
	if _, ok := s[url]; ok {
		return false
	}
	s[url] = struct{}{}
	return true
}

// Has reports whether url was already seen.
func (s SeenURLs) Has(url string) bool {
	_, ok := s[url]
	return ok
}

// appendUnseen appends each citation whose URL is new to seen, preserving order.
// Returns the extended slice and the number of citations discarded as duplicates.
func appendUnseen(dst []Citation, src []Citation, seen SeenURLs) ([]Citation, int) {
	dropped := 0
	for _, c := range src {
		if !seen.Add(c.URL) {
			dropped++
			continue
		}
		dst = append(dst, c)
	}
	return dst, dropped
}

// stringField returns m[key] when it holds a string, "" otherwise.
func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// citationFromRecord builds a Citation from a citation-like object.
// Returns false when raw is not an object or carries no usable url.
func citationFromRecord(raw interface{}) (Citation, bool) {
	m, ok := asRecord(raw)
	if !ok {
		return Citation{}, false
	}
	u := stringField(m, "url")
	if u == "" {
		return Citation{}, false
	}
	snippet := stringField(m, "snippet")
	if snippet == "" {
		// url_citation payloads carry the excerpt as content, search-result locations as cited_text
		snippet = stringField(m, "content")
	}
	if snippet == "" {
		snippet = stringField(m, "cited_text")
	}
	return Citation{
		URL:     u,
		Title:   stringField(m, "title"),
		Snippet: snippet,
	}, true
}

// asRecord accepts the object shapes produced by encoding/json and yaml.v3 decoding.
func asRecord(raw interface{}) (map[string]interface{}, bool) {
	switch v := raw.(type) {
	case map[string]interface{}:
		if v == nil {
			return nil, false
		}
		return v, true
	case map[string]string:
		if v == nil {
			return nil, false
		}
		m := make(map[string]interface{}, len(v))
		for k, s := range v {
			m[k] = s
		}
		return m, true
	default:
		return nil, false
	}
}

// asSequence accepts the sequence shapes produced by encoding/json and yaml.v3 decoding.
func asSequence(raw interface{}) ([]interface{}, bool) {
	switch v := raw.(type) {
	case []interface{}:
		return v, v != nil
	case []map[string]interface{}:
		if v == nil {
			return nil, false
		}
		out := make([]interface{}, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	default:
		return nil, false
	}
}
