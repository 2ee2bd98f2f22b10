package formatting

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kocoro-lab/Shannon/go/citations/internal/metadata"
)

func manyCitations(n int) []metadata.Citation {
	out := make([]metadata.Citation, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, metadata.Citation{
			URL:   fmt.Sprintf("https://example.com/%d", i),
			Title: fmt.Sprintf("Page %d", i),
		})
	}
	return out
}

func TestPrepareForDisplay_FiltersAndBounds(t *testing.T) {
	citations := append([]metadata.Citation{{URL: "", Title: "no url"}, {URL: "  "}}, manyCitations(12)...)

	got := PrepareForDisplay(citations, DefaultDisplayOptions())

	require.Len(t, got, 10)
	assert.Equal(t, "https://example.com/1", got[0].URL)
	assert.Equal(t, "https://example.com/10", got[9].URL)
}

func TestPrepareForDisplay_LabelsAndDescriptions(t *testing.T) {
	citations := []metadata.Citation{
		{URL: "https://a.com"},
		{URL: "https://b.com", Title: "B\ntitle", Snippet: "line one\nline two that keeps going and going"},
	}

	got := PrepareForDisplay(citations, DisplayOptions{PlaceholderTitle: "Link", SnippetMaxRunes: 20})

	require.Len(t, got, 2)
	assert.Equal(t, "Link", got[0].Label)
	assert.Empty(t, got[0].Description)
	assert.Equal(t, "B title", got[1].Label)
	assert.Equal(t, "line one line...", got[1].Description)
}

func TestPrepareForDisplay_ZeroOptionsUseDefaults(t *testing.T) {
	got := PrepareForDisplay(manyCitations(15), DisplayOptions{})

	assert.Len(t, got, 10)
	assert.Empty(t, PrepareForDisplay(nil, DisplayOptions{}))
}

func TestRenderMarkdown(t *testing.T) {
	citations := []metadata.Citation{
		{URL: "https://a.com", Title: "A"},
		{URL: "https://b.com", Snippet: "About b"},
	}

	got := RenderMarkdown(citations, DefaultDisplayOptions())

	assert.True(t, strings.HasPrefix(got, "**Sources**\n"), got)
	assert.Contains(t, got, "[A](https://a.com)")
	assert.Contains(t, got, "[Source](https://b.com) - About b")
	assert.Empty(t, RenderMarkdown(nil, DefaultDisplayOptions()))
}

func TestRenderMarkdown_RoundTripsThroughParser(t *testing.T) {
	citations := []metadata.Citation{
		{URL: "https://a.com", Title: "A [draft]"},
		{URL: "https://b.com", Title: "B"},
	}
	body := "Answer text.\n\n" + RenderMarkdown(citations, DefaultDisplayOptions())

	got := metadata.AggregateAll(&metadata.Message{Content: body})

	assert.Equal(t, []metadata.Citation{
		{URL: "https://a.com", Title: "A (draft)"},
		{URL: "https://b.com", Title: "B"},
	}, got)
}

func TestReplaceSourcesSection_RoundTripsAwkwardCitations(t *testing.T) {
	tests := []struct {
		name      string
		citations []metadata.Citation
		expected  []metadata.Citation
	}{
		{
			name:      "link syntax in snippet",
			citations: []metadata.Citation{{URL: "https://a.com", Title: "A", Snippet: "see [docs](https://evil.com) here"}},
			expected:  []metadata.Citation{{URL: "https://a.com", Title: "A"}},
		},
		{
			name:      "parentheses in url",
			citations: []metadata.Citation{{URL: "https://en.wikipedia.org/wiki/Go_(language)", Title: "Go"}},
			expected:  []metadata.Citation{{URL: "https://en.wikipedia.org/wiki/Go_(language)", Title: "Go"}},
		},
		{
			name: "brackets in title and snippet",
			citations: []metadata.Citation{
				{URL: "https://b.com", Title: "[B]", Snippet: "]("},
				{URL: "https://c.com", Title: "C"},
			},
			expected: []metadata.Citation{
				{URL: "https://b.com", Title: "(B)"},
				{URL: "https://c.com", Title: "C"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := ReplaceSourcesSection("Answer", tt.citations, DefaultDisplayOptions())
			assert.Equal(t, tt.expected, metadata.AggregateAll(&metadata.Message{Content: content}))
		})
	}
}

func TestRenderMarkdown_EscapesDescription(t *testing.T) {
	got := RenderMarkdown([]metadata.Citation{
		{URL: "https://a.com", Title: "A", Snippet: "see [docs](https://evil.com) here"},
	}, DefaultDisplayOptions())

	assert.Contains(t, got, "[A](https://a.com) - see (docs)(https://evil.com) here")
}

func TestRenderHTML(t *testing.T) {
	got, err := RenderHTML([]metadata.Citation{{URL: "https://a.com", Title: "A"}}, DefaultDisplayOptions())

	require.NoError(t, err)
	assert.Contains(t, got, "<strong>Sources</strong>")
	assert.Contains(t, got, `href="https://a.com"`)
	assert.Contains(t, got, `target="_blank"`)
	assert.Contains(t, got, `rel="noopener noreferrer"`)
	assert.Contains(t, got, ">A</a>")

	empty, err := RenderHTML(nil, DefaultDisplayOptions())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRender_Format(t *testing.T) {
	citations := []metadata.Citation{{URL: "https://a.com", Title: "A"}}

	md, err := Render(citations, DefaultDisplayOptions(), "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "[A](https://a.com)")

	html, err := Render(citations, DefaultDisplayOptions(), "HTML")
	require.NoError(t, err)
	assert.Contains(t, html, "<a ")

	_, err = Render(citations, DefaultDisplayOptions(), "pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReplaceSourcesSection(t *testing.T) {
	citations := []metadata.Citation{{URL: "https://new.com", Title: "New"}}

	got := ReplaceSourcesSection("Answer\n\n**Sources**\n- [Old](https://old.com)\n", citations, DefaultDisplayOptions())

	assert.True(t, strings.HasPrefix(got, "Answer\n\n**Sources**\n"), got)
	assert.Contains(t, got, "[New](https://new.com)")
	assert.NotContains(t, got, "old.com")

	assert.Equal(t, "Answer", ReplaceSourcesSection("Answer\n\n**Sources**\n- [Old](https://old.com)", nil, DefaultDisplayOptions()))
	assert.True(t, strings.HasPrefix(ReplaceSourcesSection("", citations, DefaultDisplayOptions()), "**Sources**"))
}
