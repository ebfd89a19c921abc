package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"intake/config"
	"intake/ui"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create configuration files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write default configuration files if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "System config: "+config.GetSettingsFilePath())
			fmt.Fprintln(out, "User config:   "+config.UserConfigPath(cfg.DataDir()))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print configuration and data locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "settings: "+config.GetSettingsFilePath())
			fmt.Fprintln(out, "config:   "+config.UserConfigPath(cfg.DataDir()))
			fmt.Fprintln(out, "data:     "+cfg.DataDir())
			fmt.Fprintf(out, "model:    %s (%s)\n", cfg.Model, cfg.BaseURL)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Verify that the API endpoint accepts the configured key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			client, err := a.client(nil)
			if err != nil {
				return err
			}
			defer a.Close()

			n, found, err := client.Ping(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s reachable, %d models available\n", a.cfg.BaseURL, n)
			if !found {
				fmt.Fprintln(out, ui.WarningStyle.Render("model "+a.cfg.Model+" is not listed by the endpoint"))
			}
			return nil
		},
	})
	return cmd
}
