// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/regwalk/regwalk/internal/config"
	"github.com/regwalk/regwalk/internal/issue"
	"github.com/regwalk/regwalk/pkg/migrate"
	"github.com/regwalk/regwalk/pkg/registry"
)

var (
	migrateIdent   string
	migrateRenames []string
	migrateApply   bool

	migrateCmd = &cobra.Command{
		Use:   "migrate [paths...]",
		Short: "Detect broken registry references and generate rewrite commands",
		Long: `Scan source files for references that no longer resolve against the
registry, suggest replacements for units that were moved, and generate
structural rewrite commands. By default paths defaults to the registry
root itself; pass explicit files or directories to scan elsewhere.

Exits 0 when nothing is broken, 2 when broken references remain without
an automatic fix, and 1 on hard failure.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context())
			if err != nil {
				printActionable(err)
				return &ExitError{Code: ExitFailure, Err: err}
			}

			root := cfg.SearchPath
			if flagRoot, _ := cmd.Flags().GetString("root"); flagRoot != "" {
				root = flagRoot
			}

			reg, err := registry.Build(root)
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: issue.WrapWithContext(err, "build registry", root)}
			}

			ident := cfg.RootIdent
			if migrateIdent != "" {
				ident = migrateIdent
			}

			renameMap, err := parseRenameFlags(migrateRenames)
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}

			paths := args
			if len(paths) == 0 {
				paths = []string{root}
			}

			report, err := migrate.DetectRenames(migrate.Input{
				Registry:  reg,
				Paths:     paths,
				RootIdent: ident,
				RenameMap: renameMap,
			})
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: issue.WrapWithContext(err, "detect renames", "")}
			}

			if len(report.BrokenRefs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("all references resolve"))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), report.Script)

			if migrateApply {
				if len(report.Commands) == 0 {
					return noAutoFixExit(cfg, report)
				}
				if err := migrate.Apply(cmd.Context(), report, migrate.ApplyOptions{
					Stdout: cmd.OutOrStdout(),
					Stderr: cmd.ErrOrStderr(),
				}); err != nil {
					return &ExitError{Code: ExitFailure, Err: issue.WrapWithContext(err, "apply rewrites", "")}
				}
				fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(fmt.Sprintf("applied %d rewrite(s)", len(report.Commands))))
			}

			if len(report.Unresolved()) > 0 {
				return noAutoFixExit(cfg, report)
			}
			return nil
		},
	}
)

func init() {
	migrateCmd.Flags().String("root", "", "registry root (default from config search_path)")
	migrateCmd.Flags().StringVar(&migrateIdent, "ident", "", "reference root identifier (default from config root_ident)")
	migrateCmd.Flags().StringArrayVar(&migrateRenames, "rename", nil, "explicit old.prefix=new.prefix mapping (repeatable)")
	migrateCmd.Flags().BoolVar(&migrateApply, "apply", false, "execute the generated rewrite commands")
}

// noAutoFixExit renders the catalog guidance for unresolved references
// and returns the dedicated exit code.
func noAutoFixExit(cfg *config.Config, report *migrate.Report) error {
	fmt.Fprintln(os.Stderr, WarningStyle.Render(
		fmt.Sprintf("%d reference(s) without an automatic fix", len(report.Unresolved()))))
	if rendered, err := issue.Lookup(issue.NoAutoFixId).Render(styleForScheme(cfg.UI.ColorScheme)); err == nil {
		fmt.Fprint(os.Stderr, rendered)
	}
	return &ExitError{
		Code: ExitNoAutoFix,
		Err:  fmt.Errorf("%d reference(s) without an automatic fix", len(report.Unresolved())),
	}
}

// parseRenameFlags turns repeated --rename old=new flags into a rename
// map.
func parseRenameFlags(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	renames := make(map[string]string, len(flags))
	for _, f := range flags {
		old, updated, ok := strings.Cut(f, "=")
		if !ok || old == "" || updated == "" {
			return nil, fmt.Errorf("invalid --rename value %q (want old.prefix=new.prefix)", f)
		}
		renames[old] = updated
	}
	return renames, nil
}
