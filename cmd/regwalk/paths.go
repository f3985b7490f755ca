// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/regwalk/regwalk/internal/issue"
	"github.com/regwalk/regwalk/pkg/registry"
)

var pathsCmd = &cobra.Command{
	Use:   "paths [root]",
	Short: "List every dotted path in the registry",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildRegistryArg(cmd, args)
		if err != nil {
			return err
		}
		for _, p := range reg.Flatten() {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <dotted-path>",
	Short: "Check whether a dotted path resolves against the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildRegistryArg(cmd, nil)
		if err != nil {
			return err
		}
		if !reg.IsValid(args[0]) {
			fmt.Fprintln(cmd.OutOrStdout(), ErrorStyle.Render("invalid: ")+PathStyle.Render(args[0]))
			return &ExitError{Code: ExitFailure}
		}
		fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("valid: ")+PathStyle.Render(args[0]))
		return nil
	},
}

func init() {
	checkCmd.Flags().String("root", "", "registry root (default from config search_path)")
}

// buildRegistryArg resolves the registry root from the first positional
// argument, the --root flag, or the configured search path, and builds
// the registry.
func buildRegistryArg(cmd *cobra.Command, args []string) (*registry.Node, error) {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		printActionable(err)
		return nil, &ExitError{Code: ExitFailure, Err: err}
	}

	root := cfg.SearchPath
	if flagRoot, _ := cmd.Flags().GetString("root"); flagRoot != "" {
		root = flagRoot
	}
	if len(args) > 0 {
		root = args[0]
	}

	reg, err := registry.Build(root)
	if err != nil {
		if rendered, rerr := issue.Lookup(issue.RegistryRootNotFoundId).Render(styleForScheme(cfg.UI.ColorScheme)); rerr == nil && !fileOrDirExists(root) {
			fmt.Fprint(os.Stderr, rendered)
		}
		return nil, &ExitError{Code: ExitFailure, Err: issue.WrapWithContext(err, "build registry", root)}
	}
	return reg, nil
}

// fileOrDirExists reports whether the path exists at all.
func fileOrDirExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
