// SPDX-License-Identifier: MPL-2.0

// Package exports scans trees of CUE units and collects their export
// declarations into per-sink record lists.
//
// Collection is best-effort by design: a unit that fails to evaluate,
// does not produce a structured value, or declares no exports contributes
// zero records and never aborts the scan. Structural problems with the
// collected records (strategy conflicts, incompatible operands) are the
// sink merger's to raise.
package exports
