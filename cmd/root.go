package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"intake/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

// NewRootCmd builds the intake command tree.
func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "intake",
		Short: "Turn text, images and files into structured entities",
		Long: `intake sends content to an OpenAI-compatible Responses API and turns the
answer into structured data: tags, normalized values and a suggested entity
type. Recognized entities can be saved locally, searched, modified and merged.

Quick Start:
  intake recognize card.png --save        # recognize an image and keep it
  pbpaste | intake recognize -            # recognize text from stdin
  intake entities list                    # list saved entities
  intake modify <id> --prompt "fix phone" # let the model edit an entity`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				config.SetVerbose(cmd.ErrOrStderr())
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newRecognizeCmd(),
		newParseCmd(),
		newModifyCmd(),
		newMergeCmd(),
		newSelectCmd(),
		newSimilarCmd(),
		newEntitiesCmd(),
		newCacheCmd(),
		newConfigCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
