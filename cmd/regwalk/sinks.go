// SPDX-License-Identifier: MPL-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/regwalk/regwalk/internal/issue"
	"github.com/regwalk/regwalk/pkg/exports"
	"github.com/regwalk/regwalk/pkg/sink"
)

var (
	sinksDebug  bool
	sinksFormat string

	sinksCmd = &cobra.Command{
		Use:   "sinks [roots...]",
		Short: "Collect exports and merge them into the sink tree",
		Long: `Collect export declarations from every unit under the given roots
(default: the configured search path) and merge them into a nested sink
tree. Contributions to one sink must agree on a single merge strategy;
a conflict aborts the whole merge.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context())
			if err != nil {
				printActionable(err)
				return &ExitError{Code: ExitFailure, Err: err}
			}

			roots := args
			if len(roots) == 0 {
				roots = []string{cfg.SearchPath}
			}

			collected, err := exports.Collect(roots...)
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: issue.WrapWithContext(err, "collect exports", "")}
			}

			tree, err := sink.Build(collected, sink.Options{
				Defaults: cfg.SinkRules(),
				Debug:    sinksDebug,
			})
			if err != nil {
				var conflict *sink.ConflictError
				if errors.As(err, &conflict) {
					if rendered, rerr := issue.Lookup(issue.SinkConflictId).Render(styleForScheme(cfg.UI.ColorScheme)); rerr == nil {
						fmt.Fprint(os.Stderr, rendered)
					}
				}
				return &ExitError{Code: ExitFailure, Err: issue.WrapWithContext(err, "merge sinks", "")}
			}

			// Deferred compose aggregates cannot be encoded; resolve them
			// for display.
			resolved, err := sink.ResolveTree(tree, nil)
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: issue.WrapWithContext(err, "resolve deferred sinks", "")}
			}

			out, err := renderTree(resolved, sinksFormat)
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
)

func init() {
	sinksCmd.Flags().BoolVar(&sinksDebug, "debug", false, "attach contributor and strategy metadata to each sink")
	sinksCmd.Flags().StringVar(&sinksFormat, "format", "json", "output format (json or toml)")
}
