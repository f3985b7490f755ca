// SPDX-License-Identifier: MPL-2.0

package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ApplyOptions configures Apply.
type ApplyOptions struct {
	// Dir is the working directory for the rewrite commands. Empty means
	// the current directory; affected-file paths are relative to the
	// invocation root, so the two must agree.
	Dir string

	// Stdout and Stderr receive the rewrite tool's output. Nil discards.
	Stdout io.Writer
	Stderr io.Writer
}

// Apply executes the report's rewrite commands through the embedded
// shell interpreter. The first failing command aborts with its exit
// status; a report without commands is a no-op.
func Apply(ctx context.Context, report *Report, opts ApplyOptions) error {
	if len(report.Commands) == 0 {
		return nil
	}

	parser := syntax.NewParser()
	for _, command := range report.Commands {
		prog, err := parser.Parse(strings.NewReader(command), "rewrite")
		if err != nil {
			return fmt.Errorf("parsing rewrite command: %w", err)
		}

		runnerOpts := []interp.RunnerOption{
			interp.StdIO(nil, opts.Stdout, opts.Stderr),
		}
		if opts.Dir != "" {
			runnerOpts = append(runnerOpts, interp.Dir(opts.Dir))
		}
		runner, err := interp.New(runnerOpts...)
		if err != nil {
			return fmt.Errorf("creating interpreter: %w", err)
		}

		if err := runner.Run(ctx, prog); err != nil {
			var exitStatus interp.ExitStatus
			if errors.As(err, &exitStatus) {
				return fmt.Errorf("rewrite command exited with status %d: %s", int(exitStatus), command)
			}
			return fmt.Errorf("rewrite command failed: %w", err)
		}
	}

	return nil
}
