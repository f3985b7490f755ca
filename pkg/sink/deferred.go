// SPDX-License-Identifier: MPL-2.0

package sink

import (
	"fmt"

	"cuelang.org/go/cue"
)

// Deferred is the aggregate result of a compose sink whose contributions
// were all deferred fragments. Resolving it applies the fragments in
// contributor order.
type Deferred struct {
	fragments []cue.Value
	sources   []string
}

// Sources returns the contributing unit paths in application order.
func (d *Deferred) Sources() []string {
	return append([]string(nil), d.sources...)
}

// Resolve unifies the fragments in order, optionally filling scope into
// each fragment first, and decodes the result. Scope may be nil when the
// fragments are self-contained.
func (d *Deferred) Resolve(scope any) (any, error) {
	merged, err := unifyFragments(d.fragments, d.sources, scope)
	if err != nil {
		return nil, err
	}
	var out any
	if err := merged.Decode(&out); err != nil {
		return nil, fmt.Errorf("resolving deferred sink: %w", err)
	}
	return out, nil
}

// compose implements the compose strategy. Contributions are collected in
// record order. When every contribution is a deferred fragment the result
// is a Deferred aggregate; when every contribution carries a fragment but
// at least one is already concrete, the fragments are unified
// immediately. Records without fragments (built outside the collector)
// fall back to override composition.
func compose(key string, records []Record) (any, error) {
	allFragments := true
	allDeferred := true
	for _, r := range records {
		if !r.Fragment.Exists() {
			allFragments = false
			allDeferred = false
			break
		}
		if r.Concrete {
			allDeferred = false
		}
	}

	fragments := make([]cue.Value, len(records))
	sources := make([]string, len(records))
	for i, r := range records {
		fragments[i] = r.Fragment
		sources[i] = r.Source
	}

	switch {
	case allDeferred:
		return &Deferred{fragments: fragments, sources: sources}, nil

	case allFragments:
		merged, err := unifyFragments(fragments, sources, nil)
		if err != nil {
			return nil, fmt.Errorf("sink %q: %w", key, err)
		}
		var out any
		if err := merged.Decode(&out); err != nil {
			return nil, fmt.Errorf("sink %q: composed value is not concrete: %w", key, err)
		}
		return out, nil

	default:
		// Plain Go contributions: apply override composition directly.
		var acc any
		for _, r := range records {
			acc = overrideCombine(acc, r.Value)
		}
		return acc, nil
	}
}

// unifyFragments folds the fragments left-to-right with CUE unification.
// A conflict between fragments surfaces as an error naming the source
// that introduced it.
func unifyFragments(fragments []cue.Value, sources []string, scope any) (cue.Value, error) {
	var merged cue.Value
	for i, f := range fragments {
		if scope != nil {
			f = f.FillPath(cue.Path{}, scope)
		}
		if i == 0 {
			merged = f
			continue
		}
		merged = merged.Unify(f)
		if merged.Err() != nil {
			return cue.Value{}, fmt.Errorf("fragment from %s conflicts with earlier contributions: %w", sources[i], merged.Err())
		}
	}
	return merged, nil
}

// ResolveTree returns a copy of the tree with every Deferred leaf
// replaced by its resolved value. Scope may be nil.
func ResolveTree(tree Tree, scope any) (Tree, error) {
	out := make(Tree, len(tree))
	for k, v := range tree {
		switch node := v.(type) {
		case Tree:
			resolved, err := ResolveTree(node, scope)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		case *Deferred:
			resolved, err := node.Resolve(scope)
			if err != nil {
				return nil, fmt.Errorf("sink %q: %w", k, err)
			}
			out[k] = resolved
		case DebugLeaf:
			if deferred, ok := node.Value.(*Deferred); ok {
				resolved, err := deferred.Resolve(scope)
				if err != nil {
					return nil, fmt.Errorf("sink %q: %w", k, err)
				}
				node.Value = resolved
			}
			out[k] = node
		default:
			out[k] = v
		}
	}
	return out, nil
}
