package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Kocoro-lab/Shannon/go/citations/internal/metadata"
)

const sampleJSON = `{
  "role": "assistant",
  "content": "Answer\n\n**Sources**\n- [A again](https://a.com)\n- [T](https://t.com)",
  "annotations": [
    {"type": "url_citation", "url_citation": {"url": "https://a.com", "title": "A", "content": "excerpt"}}
  ]
}`

const sampleYAML = `
content: |-
  Answer

  **Sources**
  - [T](https://t.com)
annotations:
  - url_citations:
      - url: https://a.com
        title: A
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "citectl", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	require.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))

	names := []string{}
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "extract")
	assert.Contains(t, names, "render")
	assert.Contains(t, names, "split")
}

func TestExtract_JSONFromStdin(t *testing.T) {
	out, err := run(t, sampleJSON, "extract")
	require.NoError(t, err)

	var got []metadata.Citation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []metadata.Citation{
		{URL: "https://a.com", Title: "A", Snippet: "excerpt"},
		{URL: "https://t.com", Title: "T"},
	}, got)
}

func TestExtract_YAMLFileToYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "message.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	out, err := run(t, "", "extract", "-o", "yaml", path)
	require.NoError(t, err)

	var got []metadata.Citation
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, []metadata.Citation{
		{URL: "https://a.com", Title: "A"},
		{URL: "https://t.com", Title: "T"},
	}, got)
}

func TestExtract_EmptyMessage(t *testing.T) {
	out, err := run(t, `{}`, "extract")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestExtract_Errors(t *testing.T) {
	_, err := run(t, "", "extract", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = run(t, "key: [unterminated", "extract")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = run(t, `{}`, "extract", "-o", "toml")
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	out, err := run(t, sampleJSON, "split")
	require.NoError(t, err)

	var got metadata.SplitResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Answer", got.Content)
	assert.Equal(t, "**Sources**\n- [A again](https://a.com)\n- [T](https://t.com)", got.Sources)
}

func TestRender(t *testing.T) {
	out, err := run(t, sampleJSON, "render", "--max", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "[A](https://a.com)")
	assert.NotContains(t, out, "t.com", "--max bounds the list")

	out, err = run(t, sampleJSON, "render", "-f", "html")
	require.NoError(t, err)
	assert.Contains(t, out, `<a href="https://t.com"`)

	_, err = run(t, sampleJSON, "render", "-f", "pdf")
	assert.Error(t, err)
}

func TestRender_Replace(t *testing.T) {
	out, err := run(t, sampleJSON, "render", "--replace")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Answer\n\n**Sources**\n"), out)
	assert.Contains(t, out, "[A](https://a.com) - excerpt")
	assert.NotContains(t, out, "A again")
}
