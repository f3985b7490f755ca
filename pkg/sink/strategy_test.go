// SPDX-License-Identifier: MPL-2.0

package sink

import (
	"errors"
	"testing"
)

func TestStrategyValidate(t *testing.T) {
	t.Parallel()

	valid := []Strategy{StrategyOverride, StrategyMerge, StrategyListAppend, StrategyCompose}
	for _, s := range valid {
		if err := s.Validate(); err != nil {
			t.Errorf("Validate(%q) = %v, want nil", s, err)
		}
	}

	for _, s := range []Strategy{StrategyUnset, "replace", "Merge"} {
		err := s.Validate()
		if err == nil {
			t.Errorf("Validate(%q) = nil, want error", s)
			continue
		}
		if !errors.Is(err, ErrInvalidStrategy) {
			t.Errorf("Validate(%q) error does not wrap ErrInvalidStrategy", s)
		}
	}
}

func TestRuleMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		key     string
		want    bool
	}{
		{name: "exact match", pattern: "system.pkgs", key: "system.pkgs", want: true},
		{name: "exact mismatch", pattern: "system.pkgs", key: "system.env", want: false},
		{name: "wildcard matches everything", pattern: "*", key: "anything.at.all", want: true},
		{name: "suffix star matches prefix itself", pattern: "system.*", key: "system", want: true},
		{name: "suffix star matches descendant", pattern: "system.*", key: "system.pkgs.cli", want: true},
		{name: "suffix star respects segment boundary", pattern: "system.*", key: "systemd.units", want: false},
		{name: "suffix star mismatch", pattern: "system.*", key: "users.alice", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := Rule{Pattern: tt.pattern, Strategy: StrategyMerge}
			if got := r.Matches(tt.key); got != tt.want {
				t.Errorf("Rule{%q}.Matches(%q) = %v, want %v", tt.pattern, tt.key, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	defaults := []Rule{
		{Pattern: "system.pkgs", Strategy: StrategyListAppend},
		{Pattern: "system.*", Strategy: StrategyMerge},
		{Pattern: "*", Strategy: StrategyOverride},
	}

	tests := []struct {
		name     string
		key      string
		explicit Strategy
		want     Strategy
	}{
		{name: "explicit wins over rules", key: "system.pkgs", explicit: StrategyCompose, want: StrategyCompose},
		{name: "first matching rule wins", key: "system.pkgs", explicit: StrategyUnset, want: StrategyListAppend},
		{name: "later rule catches descendants", key: "system.env", explicit: StrategyUnset, want: StrategyMerge},
		{name: "wildcard fallback", key: "users.alice", explicit: StrategyUnset, want: StrategyOverride},
		{name: "no rules at all falls to override", key: "x", explicit: StrategyUnset, want: StrategyOverride},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rules := defaults
			if tt.name == "no rules at all falls to override" {
				rules = nil
			}
			if got := resolve(tt.key, tt.explicit, rules); got != tt.want {
				t.Errorf("resolve(%q, %q) = %q, want %q", tt.key, tt.explicit, got, tt.want)
			}
		})
	}
}
