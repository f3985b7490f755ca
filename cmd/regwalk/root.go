// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/regwalk/regwalk/internal/config"
	"github.com/regwalk/regwalk/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output.
	verbose bool
	// cfgFile allows specifying a custom config file.
	cfgFile string

	// rootCmd represents the base command when called without any subcommands.
	rootCmd = &cobra.Command{
		Use:   "regwalk",
		Short: "Configuration aggregation for trees of CUE units",
		Long: TitleStyle.Render("regwalk") + SubtitleStyle.Render(" - configuration aggregation for trees of CUE units") + `

regwalk maps a directory tree of CUE units into a registry of dotted
logical names, merges the values the units export into named sinks, and
detects references to registry paths that no longer resolve.

` + SubtitleStyle.Render("Examples:") + `
  regwalk paths ./units            List every registry path
  regwalk check system.network     Validate a single path
  regwalk sinks ./units --debug    Merge exports with per-sink metadata
  regwalk migrate ./units          Report broken references`,
	}
)

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/regwalk/config.cue)")

	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(sinksCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration for a command run.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.NewProvider().Load(ctx, config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.UI.Verbose = true
	}
	return cfg, nil
}

// printActionable renders an error with its suggestions, falling back to
// the plain message for ordinary errors.
func printActionable(err error) {
	var actionable *issue.ActionableError
	if errors.As(err, &actionable) {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(actionable.Format(verbose)))
		return
	}
	fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
}
