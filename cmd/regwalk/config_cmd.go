// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/regwalk/regwalk/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration and where it came from",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := config.ResolvedPath(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
		if err != nil {
			printActionable(err)
			return &ExitError{Code: ExitFailure, Err: err}
		}

		out := cmd.OutOrStdout()
		if path == "" {
			fmt.Fprintln(out, SubtitleStyle.Render("source: ")+"built-in defaults")
		} else {
			fmt.Fprintln(out, SubtitleStyle.Render("source: ")+PathStyle.Render(path))
		}
		fmt.Fprintln(out, SubtitleStyle.Render("root_ident: ")+cfg.RootIdent)
		fmt.Fprintln(out, SubtitleStyle.Render("search_path: ")+PathStyle.Render(cfg.SearchPath))
		fmt.Fprintln(out, SubtitleStyle.Render("ui.color_scheme: ")+string(cfg.UI.ColorScheme))
		fmt.Fprintln(out, SubtitleStyle.Render("ui.verbose: ")+fmt.Sprintf("%t", cfg.UI.Verbose))
		if len(cfg.Defaults) == 0 {
			fmt.Fprintln(out, SubtitleStyle.Render("defaults: ")+"(none)")
			return nil
		}
		fmt.Fprintln(out, SubtitleStyle.Render("defaults:"))
		for _, rule := range cfg.Defaults {
			fmt.Fprintf(out, "  %s -> %s\n", PathStyle.Render(rule.Pattern), rule.Strategy)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
