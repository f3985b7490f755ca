// SPDX-License-Identifier: MPL-2.0

package sink

import (
	"fmt"
	"sort"
	"strings"

	"cuelang.org/go/cue"
)

type (
	// Record is one unit's contribution to a sink. Records are produced by
	// the export collector, held only in memory, and consumed by Build.
	Record struct {
		// SinkKey is the dotted name of the target sink.
		SinkKey string

		// Value is the decoded contribution. Nil when the contribution is a
		// deferred fragment that could not be made concrete.
		Value any

		// Concrete reports whether Value holds a decoded concrete value.
		Concrete bool

		// Strategy is the explicit strategy declared on the record, or
		// StrategyUnset to fall through to the default rules.
		Strategy Strategy

		// Source is the path of the unit that produced the record.
		// Contributions to one sink are folded in ascending Source order.
		Source string

		// Fragment is the raw CUE value of the contribution, kept for
		// compose sinks. May be the zero value for records built outside
		// the collector.
		Fragment cue.Value
	}

	// Options configures Build.
	Options struct {
		// Defaults supplies the default-strategy rules, evaluated in
		// order, first match wins.
		Defaults []Rule

		// Debug attaches per-sink metadata (ordered contributors and the
		// resolved strategy) at each leaf sink node.
		Debug bool
	}

	// Tree is the nested merge result. Sink keys are split on "." and
	// intermediate segments become nested Tree nodes.
	Tree map[string]any

	// Meta is the per-sink metadata exposed at leaf nodes in debug mode.
	Meta struct {
		Contributors []string `json:"contributors" toml:"contributors"`
		Strategy     Strategy `json:"strategy" toml:"strategy"`
	}

	// DebugLeaf wraps a merged sink value with its metadata in debug
	// mode. A distinct type rather than a nested Tree so that placement
	// never mistakes a wrapped leaf for an intermediate node.
	DebugLeaf struct {
		Value any  `json:"value" toml:"value"`
		Meta  Meta `json:"meta" toml:"meta"`
	}

	// Contribution pairs a source with its resolved strategy, for
	// conflict reporting.
	Contribution struct {
		Source   string
		Strategy Strategy
	}

	// ConflictError is returned when contributions to one sink resolve to
	// different strategies.
	ConflictError struct {
		Key           string
		Contributions []Contribution
	}
)

// Error implements the error interface. The message names the sink key
// and every contributing source with its resolved strategy.
func (e *ConflictError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sink %q: conflicting strategies:", e.Key)
	for _, c := range e.Contributions {
		fmt.Fprintf(&b, "\n  - %s (%s)", c.Source, c.Strategy)
	}
	return b.String()
}

// Build merges collected records into a nested result tree. For each
// sink key the records are sorted by source, resolved to a single
// effective strategy, and folded left-to-right. Any structural failure
// (strategy conflict, invalid strategy name, incompatible list-append
// operand) aborts the whole call; there is no partial result.
func Build(collected map[string][]Record, opts Options) (Tree, error) {
	tree := Tree{}

	// Sorted key iteration keeps error selection and structural-collision
	// handling reproducible across runs.
	keys := make([]string, 0, len(collected))
	for key := range collected {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		records := append([]Record(nil), collected[key]...)
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Source < records[j].Source
		})

		strategy, err := effectiveStrategy(key, records, opts.Defaults)
		if err != nil {
			return nil, err
		}

		value, err := fold(key, strategy, records)
		if err != nil {
			return nil, err
		}

		if opts.Debug {
			contributors := make([]string, len(records))
			for i, r := range records {
				contributors[i] = r.Source
			}
			value = DebugLeaf{
				Value: value,
				Meta:  Meta{Contributors: contributors, Strategy: strategy},
			}
		}

		if err := place(tree, key, value); err != nil {
			return nil, err
		}
	}

	return tree, nil
}

// effectiveStrategy resolves each record's strategy and requires them to
// be identical across the sink's contributions.
func effectiveStrategy(key string, records []Record, defaults []Rule) (Strategy, error) {
	contributions := make([]Contribution, len(records))
	for i, r := range records {
		s := resolve(key, r.Strategy, defaults)
		if err := s.Validate(); err != nil {
			return StrategyUnset, fmt.Errorf("sink %q: source %s: %w", key, r.Source, err)
		}
		contributions[i] = Contribution{Source: r.Source, Strategy: s}
	}

	strategy := contributions[0].Strategy
	for _, c := range contributions[1:] {
		if c.Strategy != strategy {
			return StrategyUnset, &ConflictError{Key: key, Contributions: contributions}
		}
	}
	return strategy, nil
}

// fold applies the strategy-parameterized reducer over the sorted record
// list, seeded with a neutral accumulator.
func fold(key string, strategy Strategy, records []Record) (any, error) {
	switch strategy {
	case StrategyOverride:
		var acc any
		for _, r := range records {
			acc = overrideCombine(acc, r.Value)
		}
		return acc, nil

	case StrategyMerge:
		var acc any
		for _, r := range records {
			accMap, accOk := acc.(map[string]any)
			newMap, newOk := r.Value.(map[string]any)
			if accOk && newOk {
				acc = deepMerge(accMap, newMap)
				continue
			}
			// A non-mapping value replaces the accumulator outright.
			acc = r.Value
		}
		return acc, nil

	case StrategyListAppend:
		var acc any
		for _, r := range records {
			if acc == nil {
				acc = cloneSeq(r.Value)
				continue
			}
			accSeq, accOk := acc.([]any)
			newSeq, newOk := r.Value.([]any)
			if !accOk || !newOk {
				return nil, fmt.Errorf(
					"sink %q: list-append requires sequence values, source %s contributed %T against accumulator %T",
					key, r.Source, r.Value, acc)
			}
			acc = append(accSeq, newSeq...)
		}
		return acc, nil

	case StrategyCompose:
		return compose(key, records)

	default:
		return nil, &InvalidStrategyError{Value: strategy}
	}
}

// overrideCombine applies one override step. Two mappings combine
// shallowly, last write wins per top-level key; anything else replaces
// the accumulator outright. Neither input map is mutated.
func overrideCombine(acc, v any) any {
	accMap, accOk := acc.(map[string]any)
	newMap, newOk := v.(map[string]any)
	if !accOk || !newOk {
		return v
	}
	out := make(map[string]any, len(accMap)+len(newMap))
	for k, val := range accMap {
		out[k] = val
	}
	for k, val := range newMap {
		out[k] = val
	}
	return out
}

// deepMerge merges src into dst, last write wins per leaf key. Neither
// input map is mutated; a new map is returned.
func deepMerge(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		if dstMap, ok := out[k].(map[string]any); ok {
			if srcMap, ok := v.(map[string]any); ok {
				out[k] = deepMerge(dstMap, srcMap)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// cloneSeq copies a sequence so later appends never alias a record's
// backing array. Non-sequence values pass through for the empty-seed
// adoption case.
func cloneSeq(v any) any {
	if seq, ok := v.([]any); ok {
		return append([]any(nil), seq...)
	}
	return v
}

// place inserts value into the tree at the dotted key, creating
// intermediate Tree nodes per segment. Unrelated sinks sharing segments
// merge structurally; a leaf/interior collision is a fatal error naming
// the key.
func place(tree Tree, key string, value any) error {
	segments := strings.Split(key, ".")
	node := tree
	for _, seg := range segments[:len(segments)-1] {
		existing, ok := node[seg]
		if !ok {
			child := Tree{}
			node[seg] = child
			node = child
			continue
		}
		child, ok := existing.(Tree)
		if !ok {
			return fmt.Errorf("sink %q: segment %q already holds a merged value, cannot nest under it", key, seg)
		}
		node = child
	}

	last := segments[len(segments)-1]
	if existing, ok := node[last]; ok {
		existingTree, eOk := existing.(Tree)
		valueTree, vOk := value.(Tree)
		if eOk && vOk {
			node[last] = mergeTrees(existingTree, valueTree)
			return nil
		}
		return fmt.Errorf("sink %q: collides with an existing sink at the same path", key)
	}
	node[last] = value
	return nil
}

// mergeTrees structurally merges two tree nodes built from unrelated
// sinks that share a path prefix.
func mergeTrees(dst, src Tree) Tree {
	out := make(Tree, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		if dstTree, ok := out[k].(Tree); ok {
			if srcTree, ok := v.(Tree); ok {
				out[k] = mergeTrees(dstTree, srcTree)
				continue
			}
		}
		out[k] = v
	}
	return out
}
