package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"intake/parser"
)

func newParseCmd() *cobra.Command {
	var (
		key string
		all bool
	)

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Extract JSON from model-style text without calling the API",
		Long: `Parse runs the response normalizer on a file or stdin: it cleans the text,
tries strict and lenient JSON, fenced code blocks and repaired spans, and
prints the recovered value. Text with no JSON is wrapped under --key.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, _, err := inputSource{stdin: cmd.InOrStdin()}.read(args)
			if err != nil {
				return err
			}
			text := fmt.Sprint(content)
			if f, ok := fileText(content); ok {
				text = f
			}

			out := cmd.OutOrStdout()
			if all {
				values := []any{}
				for _, r := range parser.ExtractAll(text) {
					if r.OK {
						values = append(values, r.Data)
					}
				}
				return writeJSON(out, values)
			}

			fb := parser.ParseWithFallback(text, key)
			cmd.PrintErrln("source: " + string(fb.Source))
			return writeJSON(out, fb.Data)
		},
	}

	cmd.Flags().StringVar(&key, "key", parser.DefaultFallbackKey, "Key used to wrap text that contains no JSON")
	cmd.Flags().BoolVar(&all, "all", false, "Print every JSON block found")
	return cmd
}
