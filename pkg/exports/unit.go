// SPDX-License-Identifier: MPL-2.0

package exports

import (
	"cuelang.org/go/cue"
)

const (
	// UnitValue is a fully concrete unit; its exports decode directly.
	UnitValue UnitKind = iota

	// UnitDeferred is a unit that expects external context before it can
	// be evaluated. It contributes no records.
	UnitDeferred

	// UnitSelfDescribing is a unit that is not concrete overall but
	// carries a readable exports declaration, so its contributions can be
	// collected without forcing the rest of the unit.
	UnitSelfDescribing
)

// UnitKind classifies an evaluated unit before any error handling. The
// collector treats the three kinds uniformly: only the exports
// declaration matters, and UnitDeferred has none.
type UnitKind int

// String returns a human-readable kind name.
func (k UnitKind) String() string {
	switch k {
	case UnitValue:
		return "value"
	case UnitDeferred:
		return "deferred"
	case UnitSelfDescribing:
		return "self-describing"
	default:
		return "unknown"
	}
}

// ExportsField is the unit field holding export declarations.
const ExportsField = "exports"

// Classify determines the unit kind from its evaluated CUE value. The
// caller has already established that v is a structured value.
func Classify(v cue.Value) UnitKind {
	if v.Validate(cue.Concrete(true)) == nil {
		return UnitValue
	}
	ex := v.LookupPath(cue.ParsePath(ExportsField))
	if ex.Exists() && ex.Err() == nil && ex.IncompleteKind() == cue.StructKind {
		return UnitSelfDescribing
	}
	return UnitDeferred
}
