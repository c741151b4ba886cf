package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ssmlcast",
		Short: "Compose podcast segments into one SSML document",
		Long: `ssmlcast merges intro, main and outro fragments into a single SSML
document ready for speech synthesis, and can generate those fragments
from a news feed, the weather and a language model.

Usage:
  ssmlcast serve
  ssmlcast compose request.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newComposeCommand())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Fatal: %s", err.Error()))
		os.Exit(1)
	}
}
