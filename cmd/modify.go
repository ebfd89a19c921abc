package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"intake/model"
	"intake/provider"
	"intake/ui"
)

func newModifyCmd() *cobra.Command {
	var (
		prompt  string
		sets    []string
		appends []string
		deletes []string
		dryRun  bool
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "modify <entity-id>",
		Short: "Have the model modify a saved entity",
		Example: `  intake modify 3f2a... --prompt "normalize the phone number"
  intake modify 3f2a... --set name="Ada L." --delete properties.fax`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var instructions []model.ModificationInstruction
			for _, s := range sets {
				k, v, err := parseAssignment(s)
				if err != nil {
					return err
				}
				instructions = append(instructions, model.ModificationInstruction{Action: model.ActionUpdate, Target: k, Value: v})
			}
			for _, s := range appends {
				k, v, err := parseAssignment(s)
				if err != nil {
					return err
				}
				instructions = append(instructions, model.ModificationInstruction{Action: model.ActionAppend, Target: k, Value: v})
			}
			for _, d := range deletes {
				instructions = append(instructions, model.ModificationInstruction{Action: model.ActionDelete, Target: d})
			}
			if prompt == "" && len(instructions) == 0 {
				return fmt.Errorf("nothing to do: pass --prompt, --set, --append or --delete")
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			e, err := a.store.Load(args[0])
			if err != nil {
				return err
			}

			client, err := a.client(&model.DataContext{
				Operation:  model.OpModify,
				EntityType: e.Type,
			})
			if err != nil {
				return err
			}

			resp, err := ui.RunWithSpinner(cmd.ErrOrStderr(), !jsonOut && interactive(cmd), "Modifying "+e.Name+"...", func() (provider.AIResponse, error) {
				r := client.ModifyExistingData(cmd.Context(), e, prompt, instructions)
				return r, r.Err
			})
			if err != nil {
				return err
			}

			updated, err := applyData(*e, resp.Data)
			if err != nil {
				return err
			}
			updated.ResponseID = resp.ResponseID
			if !dryRun {
				if err := a.store.Save(&updated); err != nil {
					return err
				}
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), updated)
			}
			out, err := ui.RenderEntity(updated)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), ui.WarningStyle.Render("dry run: not saved"))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&prompt, "prompt", "p", "", "Free-form modification request")
	f.StringArrayVar(&sets, "set", nil, "Update a field: key=value (repeatable)")
	f.StringArrayVar(&appends, "append", nil, "Append to a field: key=value (repeatable)")
	f.StringArrayVar(&deletes, "delete", nil, "Delete a field (repeatable)")
	f.BoolVar(&dryRun, "dry-run", false, "Show the result without saving")
	f.BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	return cmd
}

func newMergeCmd() *cobra.Command {
	var (
		strategy   string
		keepSecond bool
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "merge <primary-id> <secondary-id>",
		Short: "Merge two saved entities into the primary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch model.MergeStrategy(strategy) {
			case model.MergePreferPrimary, model.MergePreferSecondary, model.MergePreferNewer, model.MergeAll:
			default:
				return fmt.Errorf("unknown merge strategy %q", strategy)
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			primary, err := a.store.Load(args[0])
			if err != nil {
				return err
			}
			secondary, err := a.store.Load(args[1])
			if err != nil {
				return err
			}

			client, err := a.client(&model.DataContext{Operation: model.OpMerge, EntityType: primary.Type})
			if err != nil {
				return err
			}

			resp, err := ui.RunWithSpinner(cmd.ErrOrStderr(), !jsonOut && interactive(cmd), "Merging...", func() (provider.AIResponse, error) {
				r := client.MergeEntities(cmd.Context(), primary, secondary, model.MergeStrategy(strategy))
				return r, r.Err
			})
			if err != nil {
				return err
			}

			merged, err := applyData(*primary, resp.Data)
			if err != nil {
				return err
			}
			merged.ResponseID = resp.ResponseID
			if err := a.store.Save(&merged); err != nil {
				return err
			}
			if !keepSecond {
				if err := a.store.Delete(secondary.ID); err != nil {
					return err
				}
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), merged)
			}
			out, err := ui.RenderEntity(merged)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&strategy, "strategy", string(model.MergePreferPrimary), "prefer_primary, prefer_secondary, prefer_newer or merge_all")
	f.BoolVar(&keepSecond, "keep-secondary", false, "Keep the secondary entity after merging")
	f.BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	return cmd
}
