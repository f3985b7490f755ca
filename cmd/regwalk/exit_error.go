// SPDX-License-Identifier: MPL-2.0

package main

import "fmt"

// Exit codes beyond the conventional 0/1. A migration run that finds
// broken references without an automatic fix exits distinctly from both
// success and hard failure.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitNoAutoFix = 2
)

// ExitError signals a non-zero exit code without forcing os.Exit in
// RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
