package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"intake/storage"
	"intake/ui"
)

func newEntitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "entities",
		Aliases: []string{"e"},
		Short:   "Manage saved entities",
	}
	cmd.AddCommand(
		newEntitiesListCmd(),
		newEntitiesShowCmd(),
		newEntitiesSearchCmd(),
		newEntitiesDeleteCmd(),
		newEntitiesExportCmd(),
		newBatchCmd(),
	)
	return cmd
}

func newEntitiesListCmd() *cobra.Command {
	var (
		typ     string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved entities, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			entities, err := a.store.List(typ)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), entities)
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.RenderEntityTable(entities, defaultWidth))
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "Only list entities of this type")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}

func newEntitiesShowCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			e, err := a.store.Load(args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), e)
			}
			out, err := ui.RenderEntity(*e)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print as JSON")
	return cmd
}

func newEntitiesSearchCmd() *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search names, keywords and descriptions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			matches, err := storage.NewSearchIndex(a.store).Search(args[0], typ)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.RenderMatches(matches, defaultWidth))
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "Only search entities of this type")
	return cmd
}

func newEntitiesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete entities",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := a.store.Delete(id); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Deleted "+id)
			}
			return nil
		},
	}
}

func newEntitiesExportCmd() *cobra.Command {
	var (
		typ    string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entities as JSON or YAML",
		Long: `Export writes saved entities to stdout, or to a file with --output. Passing a
directory as --output writes a timestamped file inside it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := storage.NewExporter(format)
			if err != nil {
				return err
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			entities, err := a.store.List(typ)
			if err != nil {
				return err
			}

			if output == "" {
				return exp.Export(cmd.OutOrStdout(), entities)
			}

			path := output
			if info, err := os.Stat(output); err == nil && info.IsDir() {
				name := typ
				if name == "" {
					name = "entities"
				}
				path = storage.GenerateExportPath(output, name, exp)
			}
			if err := storage.ExportToFile(path, entities, exp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entities to %s\n", len(entities), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "Only export entities of this type")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file or directory")
	return cmd
}
