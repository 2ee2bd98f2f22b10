package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Kocoro-lab/Shannon/go/citations/internal/metadata"
)

// ErrInvalidInput is returned when a message document is neither JSON nor YAML.
var ErrInvalidInput = errors.New("invalid message document")

// readInput reads the file named by args[0], or stdin when absent or "-".
func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return data, nil
}

// decodeMessage accepts JSON, falling back to YAML. A document that is valid but
// not an object yields a nil message.
func decodeMessage(data []byte) (*metadata.Message, error) {
	if json.Valid(data) {
		return metadata.DecodeMessageJSON(data)
	}
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return metadata.MessageFromRaw(raw), nil
}

func loadMessage(stdin io.Reader, args []string) (*metadata.Message, error) {
	data, err := readInput(stdin, args)
	if err != nil {
		return nil, err
	}
	return decodeMessage(data)
}

// writeOutput encodes v as indented JSON or as YAML.
func writeOutput(w io.Writer, format string, v interface{}) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q (json|yaml)", format)
	}
}
