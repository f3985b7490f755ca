// SPDX-License-Identifier: MPL-2.0

// Package registry maps a directory tree of CUE units to a registry of
// dotted logical paths.
//
// Each file or directory under the root produces a path segment derived
// from its filesystem name: the ".cue" suffix is dropped, then one
// trailing escape underscore is dropped. Entries whose raw name begins
// with an underscore are hidden and never produce a segment. A directory
// containing a "default.cue" marker file is an opaque leaf; its children
// are not enumerated separately.
//
// A registry is immutable once built. Renames happen on disk, followed
// by a rebuild.
package registry
