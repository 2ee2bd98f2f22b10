package formatting

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	gmutil "github.com/yuin/goldmark/util"

	"github.com/Kocoro-lab/Shannon/go/citations/internal/metadata"
	"github.com/Kocoro-lab/Shannon/go/citations/internal/util"
)

// ErrUnsupportedFormat is returned by Render for an unknown output format.
var ErrUnsupportedFormat = errors.New("unsupported render format")

// Render formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// DisplayOptions bounds how a citation list is shown.
type DisplayOptions struct {
	MaxItems         int
	PlaceholderTitle string
	SnippetMaxRunes  int
}

// DefaultDisplayOptions returns the standard display bounds: 10 items, "Source" label.
func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{
		MaxItems:         10,
		PlaceholderTitle: "Source",
		SnippetMaxRunes:  200,
	}
}

func (o DisplayOptions) withDefaults() DisplayOptions {
	d := DefaultDisplayOptions()
	if o.MaxItems <= 0 {
		o.MaxItems = d.MaxItems
	}
	if strings.TrimSpace(o.PlaceholderTitle) == "" {
		o.PlaceholderTitle = d.PlaceholderTitle
	}
	if o.SnippetMaxRunes <= 0 {
		o.SnippetMaxRunes = d.SnippetMaxRunes
	}
	return o
}

// DisplayCitation is one rendered entry: a link label plus an optional description line.
type DisplayCitation struct {
	URL         string `json:"url"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// PrepareForDisplay filters, bounds and labels a canonical citation list.
// Entries with an empty URL are dropped, order is kept, and at most
// opts.MaxItems entries are returned.
func PrepareForDisplay(citations []metadata.Citation, opts DisplayOptions) []DisplayCitation {
	opts = opts.withDefaults()
	out := make([]DisplayCitation, 0, min(len(citations), opts.MaxItems))
	for _, c := range citations {
		if len(out) >= opts.MaxItems {
			break
		}
		if strings.TrimSpace(c.URL) == "" {
			continue
		}
		label := util.SingleLine(c.Title)
		if label == "" {
			label = opts.PlaceholderTitle
		}
		out = append(out, DisplayCitation{
			URL:         c.URL,
			Label:       label,
			Description: util.TruncateString(util.SingleLine(c.Snippet), opts.SnippetMaxRunes, true),
		})
	}
	return out
}

// RenderMarkdown renders the display list as a **Sources** block of markdown links.
// Returns "" when nothing is displayable.
func RenderMarkdown(citations []metadata.Citation, opts DisplayOptions) string {
	items := PrepareForDisplay(citations, opts)
	if len(items) == 0 {
		return ""
	}

	bullets := make([]string, 0, len(items))
	for _, it := range items {
		line := markdown.Link(escapeLinkSyntax(it.Label), it.URL)
		if it.Description != "" {
			line += " - " + escapeLinkSyntax(it.Description)
		}
		bullets = append(bullets, line)
	}

	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)
	md.PlainText(metadata.SourcesMarker)
	md.BulletList(bullets...)
	return strings.TrimSpace(md.String())
}

// RenderHTML renders the markdown block to HTML. Links open in a new tab.
func RenderHTML(citations []metadata.Citation, opts DisplayOptions) (string, error) {
	src := RenderMarkdown(citations, opts)
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := htmlRenderer.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("convert sources to html: %w", err)
	}
	return buf.String(), nil
}

// Render dispatches on format (markdown or html).
func Render(citations []metadata.Citation, opts DisplayOptions, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatMarkdown, "md":
		return RenderMarkdown(citations, opts), nil
	case FormatHTML:
		return RenderHTML(citations, opts)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ReplaceSourcesSection rebuilds a message body so it ends with exactly one
// sources block listing citations. Any existing trailing block is removed first.
func ReplaceSourcesSection(content string, citations []metadata.Citation, opts DisplayOptions) string {
	body := metadata.SplitContent(content).Content
	block := RenderMarkdown(citations, opts)
	if block == "" {
		return body
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return block
	}
	return body + "\n\n" + block
}

var linkSyntaxReplacer = strings.NewReplacer("[", "(", "]", ")")

// escapeLinkSyntax turns brackets into parentheses so labels cannot close a link
// early and descriptions cannot open one.
func escapeLinkSyntax(s string) string {
	return linkSyntaxReplacer.Replace(s)
}

var htmlRenderer = goldmark.New(
	goldmark.WithParserOptions(
		parser.WithASTTransformers(gmutil.Prioritized(externalLinkTransformer{}, 100)),
	),
	goldmark.WithRendererOptions(html.WithXHTML()),
)

// externalLinkTransformer marks every link as external navigation.
type externalLinkTransformer struct{}

func (externalLinkTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			link.SetAttributeString("target", []byte("_blank"))
			link.SetAttributeString("rel", []byte("noopener noreferrer"))
		}
		return ast.WalkContinue, nil
	})
}
