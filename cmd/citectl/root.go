package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRootCmd creates the root command for citectl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "citectl",
		Short: "Normalize citation metadata of generated messages",
		Long: `citectl reads a generated message (JSON or YAML) and reduces its
annotations and trailing **Sources** block to one deduplicated citation list.

Messages are read from the given file, or from stdin when no file or "-" is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log extraction statistics to stderr")

	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewRenderCmd())
	cmd.AddCommand(NewSplitCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loggerFor returns a console logger on stderr when --verbose is set, a no-op logger otherwise.
func loggerFor(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return zap.NewNop()
	}
	zc := zap.NewDevelopmentConfig()
	zc.OutputPaths = []string{"stderr"}
	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
