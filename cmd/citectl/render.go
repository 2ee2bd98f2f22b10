package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kocoro-lab/Shannon/go/citations/internal/formatting"
	"github.com/Kocoro-lab/Shannon/go/citations/internal/metadata"
)

// NewRenderCmd creates the render command.
func NewRenderCmd() *cobra.Command {
	defaults := formatting.DefaultDisplayOptions()
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render the display list of a message as markdown or HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRender,
	}
	cmd.Flags().StringP("format", "f", formatting.FormatMarkdown, "Render format: markdown|html")
	cmd.Flags().Int("max", defaults.MaxItems, "Maximum number of citations shown")
	cmd.Flags().String("placeholder", defaults.PlaceholderTitle, "Label for citations without a title")
	cmd.Flags().Bool("replace", false, "Print the message body with its sources block rebuilt (markdown only)")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	maxItems, _ := cmd.Flags().GetInt("max")
	placeholder, _ := cmd.Flags().GetString("placeholder")
	replace, _ := cmd.Flags().GetBool("replace")

	msg, err := loadMessage(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	opts := formatting.DisplayOptions{MaxItems: maxItems, PlaceholderTitle: placeholder}
	citations := metadata.AggregateAll(msg)

	if replace {
		var content string
		if msg != nil {
			content = msg.Content
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), formatting.ReplaceSourcesSection(content, citations, opts))
		return err
	}

	out, err := formatting.Render(citations, opts, format)
	if err != nil {
		return err
	}
	if out == "" {
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
