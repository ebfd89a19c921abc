package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"intake/model"
	"intake/provider"
	"intake/ui"
)

func newSelectCmd() *cobra.Command {
	var (
		typ     string
		filters []string
		terms   []string
	)

	cmd := &cobra.Command{
		Use:     "select",
		Short:   "Let the model pick saved entities matching filters and terms",
		Example: `  intake select --type event --filter "date>=2026-01-01" --term standup`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make([]model.DataFilter, 0, len(filters))
			for _, f := range filters {
				df, err := parseFilter(f)
				if err != nil {
					return err
				}
				parsed = append(parsed, df)
			}
			if len(parsed) == 0 && len(terms) == 0 {
				return fmt.Errorf("pass at least one --filter or --term")
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := loadData(a, typ)
			if err != nil {
				return err
			}

			client, err := a.client(nil)
			if err != nil {
				return err
			}
			resp, err := ui.RunWithSpinner(cmd.ErrOrStderr(), interactive(cmd), "Selecting...", func() (provider.AIResponse, error) {
				r := client.SelectAndFilter(cmd.Context(), data, parsed, terms)
				return r, r.Err
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp.Data)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&typ, "type", "t", "", "Only consider entities of this type")
	f.StringArrayVarP(&filters, "filter", "f", nil, "Filter as field<op>value, op one of = != >= <= > < ~ (repeatable)")
	f.StringArrayVar(&terms, "term", nil, "Search term (repeatable)")
	return cmd
}

func newSimilarCmd() *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "similar <entity-id>",
		Short: "Find saved entities similar to one entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ref, err := a.store.Load(args[0])
			if err != nil {
				return err
			}
			all, err := a.store.List("")
			if err != nil {
				return err
			}
			others := make([]model.Entity, 0, len(all))
			for _, e := range all {
				if e.ID != ref.ID {
					others = append(others, e)
				}
			}
			if len(others) == 0 {
				return writeJSON(cmd.OutOrStdout(), []any{})
			}
			candidates, err := entitiesAsData(others)
			if err != nil {
				return err
			}

			client, err := a.client(nil)
			if err != nil {
				return err
			}
			resp, err := ui.RunWithSpinner(cmd.ErrOrStderr(), interactive(cmd), "Comparing...", func() (provider.AIResponse, error) {
				r := client.SearchSimilar(cmd.Context(), ref, candidates, threshold)
				return r, r.Err
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp.Data)
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0.7, "Minimum similarity score (0-1)")
	return cmd
}

func newBatchCmd() *cobra.Command {
	var (
		typ  string
		size int
	)

	cmd := &cobra.Command{
		Use:     "batch <operation>",
		Short:   "Apply a free-form operation to saved entities in batches",
		Example: `  intake entities batch "translate descriptions to English" --type place`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := loadData(a, typ)
			if err != nil {
				return err
			}

			client, err := a.client(nil)
			if err != nil {
				return err
			}
			resp, _ := ui.RunWithSpinner(cmd.ErrOrStderr(), interactive(cmd), "Processing...", func() (provider.AIResponse, error) {
				return client.BatchProcess(cmd.Context(), data, args[0], size), nil
			})
			if err := writeJSON(cmd.OutOrStdout(), resp.Data); err != nil {
				return err
			}
			if resp.Err != nil {
				return fmt.Errorf("some items failed: %w", resp.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "", "Only process entities of this type")
	cmd.Flags().IntVar(&size, "size", 10, "Items per request")
	return cmd
}

func loadData(a *app, typ string) ([]any, error) {
	entities, err := a.store.List(typ)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("no entities to process")
	}
	return entitiesAsData(entities)
}

var filterOperators = []string{"!=", ">=", "<=", "=", ">", "<", "~"}

// parseFilter reads "field<op>value". The first operator found wins, longest
// operators first.
func parseFilter(s string) (model.DataFilter, error) {
	best := -1
	var op string
	for _, candidate := range filterOperators {
		if i := strings.Index(s, candidate); i > 0 && (best < 0 || i < best) {
			best, op = i, candidate
		}
	}
	if best < 0 {
		return model.DataFilter{}, fmt.Errorf("invalid filter %q (want field<op>value)", s)
	}

	_, value, err := parseAssignment("v=" + s[best+len(op):])
	if err != nil {
		return model.DataFilter{}, err
	}
	return model.DataFilter{
		Field:    strings.TrimSpace(s[:best]),
		Operator: op,
		Value:    value,
	}, nil
}
