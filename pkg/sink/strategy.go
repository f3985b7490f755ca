// SPDX-License-Identifier: MPL-2.0

package sink

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// StrategyOverride replaces the accumulator with each new value.
	// Mapping values combine shallowly, last write wins per top-level key.
	StrategyOverride Strategy = "override"
	// StrategyMerge deep-merges mapping values, last write wins per leaf key.
	StrategyMerge Strategy = "merge"
	// StrategyListAppend concatenates sequence values in record order.
	StrategyListAppend Strategy = "list-append"
	// StrategyCompose collects contributions in order; all-deferred
	// contributions produce a Deferred aggregate, otherwise the fragments
	// are unified immediately.
	StrategyCompose Strategy = "compose"

	// StrategyUnset marks a record that declared no explicit strategy.
	// Resolution falls through to the default rules.
	StrategyUnset Strategy = ""
)

// ErrInvalidStrategy is the sentinel error wrapped by InvalidStrategyError.
var ErrInvalidStrategy = errors.New("invalid sink strategy")

type (
	// Strategy is the merge policy applied to all contributions of one sink.
	Strategy string

	// InvalidStrategyError is returned when a strategy name is not
	// recognized. It wraps ErrInvalidStrategy for errors.Is() compatibility.
	InvalidStrategyError struct {
		Value Strategy
	}

	// Rule binds a sink-key glob pattern to a default strategy. Patterns
	// use a suffix-star form ("system.*") or match a key exactly; "*"
	// matches every key. Rules are evaluated in order, first match wins.
	Rule struct {
		Pattern  string
		Strategy Strategy
	}
)

// Error implements the error interface.
func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("invalid sink strategy %q (valid: override, merge, list-append, compose)", string(e.Value))
}

// Unwrap returns ErrInvalidStrategy for errors.Is() checks.
func (e *InvalidStrategyError) Unwrap() error {
	return ErrInvalidStrategy
}

// Validate checks that the strategy is one of the recognized values.
// The unset marker is not a valid resolved strategy.
func (s Strategy) Validate() error {
	switch s {
	case StrategyOverride, StrategyMerge, StrategyListAppend, StrategyCompose:
		return nil
	default:
		return &InvalidStrategyError{Value: s}
	}
}

// Matches reports whether the rule's pattern matches the sink key.
func (r Rule) Matches(key string) bool {
	switch {
	case r.Pattern == "*":
		return true
	case strings.HasSuffix(r.Pattern, ".*"):
		prefix := strings.TrimSuffix(r.Pattern, ".*")
		return key == prefix || strings.HasPrefix(key, prefix+".")
	default:
		return key == r.Pattern
	}
}

// resolve returns the effective strategy for one record: explicit record
// strategy first, then the first matching default rule, then override.
func resolve(key string, explicit Strategy, defaults []Rule) Strategy {
	if explicit != StrategyUnset {
		return explicit
	}
	for _, rule := range defaults {
		if rule.Matches(key) {
			return rule.Strategy
		}
	}
	return StrategyOverride
}
