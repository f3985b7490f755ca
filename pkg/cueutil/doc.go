// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE evaluation utilities.
//
// Two entry points cover the toolkit's needs:
//
//   - Compile evaluates a standalone unit file into a cue.Value without a
//     schema; callers classify and decode the result themselves.
//   - ParseAndDecode unifies user data with an embedded schema and decodes
//     into a Go struct, used for files with a fixed shape such as the
//     global configuration.
//
// Both report failures through FormatError, which prefixes messages with
// the file path and a JSON-path to the offending field.
package cueutil
