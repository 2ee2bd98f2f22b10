package metadata

// AnnotationShape is a bit set of the citation shapes recognized on a raw annotation.
// The shapes are not exclusive: one producer record may carry all three.
type AnnotationShape uint8

const (
	// ShapeNone marks an annotation that carries no recognized citation shape.
	ShapeNone AnnotationShape = 0
	// ShapeList is a nested sequence of citation objects (url_citations / citations).
	ShapeList AnnotationShape = 1 << (iota - 1)
	// ShapeEmbedded is a single nested citation object (url_citation / citation).
	ShapeEmbedded
	// ShapeFlat is a record that directly carries url/title/snippet.
	ShapeFlat
)

// Keys probed for each shape, in priority order. The first key that yields a
// valid citation wins; an empty or invalid value falls through to the next key.
var (
	listCitationKeys     = []string{"url_citations", "citations"}
	embeddedCitationKeys = []string{"url_citation", "citation"}
)

// Annotation is a raw producer annotation classified into its recognized shapes.
type Annotation struct {
	// List holds the valid citations of a nested citation sequence, in input order.
	List []Citation
	// Embedded is the single nested citation, if any.
	Embedded *Citation
	// Flat is the citation the record carries directly, if any.
	Flat *Citation

	shape AnnotationShape
}

// Shape reports which citation shapes the annotation carried.
func (a Annotation) Shape() AnnotationShape {
	return a.shape
}

// Has reports whether s is among the annotation's shapes.
func (a Annotation) Has(s AnnotationShape) bool {
	return s != ShapeNone && a.shape&s == s
}

// Citations returns the annotation's citations in rule order: list, embedded, flat.
func (a Annotation) Citations() []Citation {
	out := make([]Citation, 0, len(a.List)+2)
	out = append(out, a.List...)
	if a.Embedded != nil {
		out = append(out, *a.Embedded)
	}
	if a.Flat != nil {
		out = append(out, *a.Flat)
	}
	return out
}

// ParseAnnotation classifies a single untrusted annotation value.
// Anything that is not an object yields a ShapeNone annotation.
func ParseAnnotation(raw interface{}) Annotation {
	var a Annotation
	m, ok := asRecord(raw)
	if !ok {
		return a
	}

	for _, key := range listCitationKeys {
		seq, ok := asSequence(m[key])
		if !ok {
			continue
		}
		for _, item := range seq {
			if c, ok := citationFromRecord(item); ok {
				a.List = append(a.List, c)
			}
		}
		if len(a.List) > 0 {
			a.shape |= ShapeList
			break
		}
	}

	for _, key := range embeddedCitationKeys {
		if c, ok := citationFromRecord(m[key]); ok {
			a.Embedded = &c
			a.shape |= ShapeEmbedded
			break
		}
	}

	if c, ok := citationFromRecord(m); ok {
		a.Flat = &c
		a.shape |= ShapeFlat
	}

	return a
}

// ExtractFromAnnotations pulls citations out of a heterogeneous annotation list.
// A missing or non-sequence input yields an empty slice.
func ExtractFromAnnotations(annotations interface{}) []Citation {
	return ExtractAnnotationsInto(annotations, NewSeenURLs())
}

// ExtractAnnotationsInto is ExtractFromAnnotations with a caller-owned dedup set.
// URLs already in seen are skipped; emitted URLs are added to it.
func ExtractAnnotationsInto(annotations interface{}, seen SeenURLs) []Citation {
	seq, ok := asSequence(annotations)
	if !ok {
		return []Citation{}
	}
	if seen == nil {
		seen = NewSeenURLs()
	}
	citations, _ := extractAnnotations(seq, seen)
	return citations
}

// extractAnnotations applies the list, embedded and flat rules to every element
// in order and returns the new citations plus the number of duplicates skipped.
func extractAnnotations(seq []interface{}, seen SeenURLs) ([]Citation, int) {
	citations := []Citation{}
	dropped := 0
	for _, raw := range seq {
		a := ParseAnnotation(raw)
		if a.Shape() == ShapeNone {
			continue
		}
		var n int
		citations, n = appendUnseen(citations, a.Citations(), seen)
		dropped += n
	}
	return citations, dropped
}
