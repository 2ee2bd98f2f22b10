package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kocoro-lab/Shannon/go/citations/internal/metadata"
)

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Print the canonical citation list of a message",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExtract,
	}
	cmd.Flags().StringP("output", "o", "json", "Output format: json|yaml")
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	msg, err := loadMessage(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	citations, stats := metadata.AggregateWithStats(msg)
	loggerFor(cmd).Info("Citations extracted",
		zap.Int("from_annotations", stats.FromAnnotations),
		zap.Int("from_markdown", stats.FromMarkdown),
		zap.Int("duplicates_dropped", stats.DuplicatesDropped))

	return writeOutput(cmd.OutOrStdout(), output, citations)
}

// NewSplitCmd creates the split command.
func NewSplitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split [file]",
		Short: "Separate a message body from its trailing **Sources** block",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			msg, err := loadMessage(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			var content string
			if msg != nil {
				content = msg.Content
			}
			return writeOutput(cmd.OutOrStdout(), output, metadata.SplitContent(content))
		},
	}
	cmd.Flags().StringP("output", "o", "json", "Output format: json|yaml")
	return cmd
}
