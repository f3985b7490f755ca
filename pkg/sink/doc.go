// SPDX-License-Identifier: MPL-2.0

// Package sink merges exported values into named sinks.
//
// A sink is a merge target that many units contribute to. Every
// contribution to one sink must resolve to the same strategy — explicit
// on the record, matched from the caller's default rules, or the
// override fallback — and contributions are folded in ascending source
// order so results are reproducible regardless of how the filesystem
// enumerated the units.
package sink
