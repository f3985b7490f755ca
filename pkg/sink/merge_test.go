// SPDX-License-Identifier: MPL-2.0

package sink

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestBuildMergeStrategy(t *testing.T) {
	t.Parallel()

	collected := map[string][]Record{
		"system.env": {
			{SinkKey: "system.env", Source: "a.cue", Strategy: StrategyMerge,
				Value: map[string]any{"a": map[string]any{"x": 1}}, Concrete: true},
			{SinkKey: "system.env", Source: "b.cue", Strategy: StrategyMerge,
				Value: map[string]any{"a": map[string]any{"y": 2}}, Concrete: true},
		},
	}

	tree, err := Build(collected, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := Tree{"system": Tree{"env": map[string]any{
		"a": map[string]any{"x": 1, "y": 2},
	}}}
	if !reflect.DeepEqual(tree, want) {
		t.Errorf("Build() = %#v, want %#v", tree, want)
	}
}

func TestBuildMergeLastWriteWins(t *testing.T) {
	t.Parallel()

	collected := map[string][]Record{
		"env": {
			{SinkKey: "env", Source: "01.cue", Strategy: StrategyMerge,
				Value: map[string]any{"editor": "vim", "shell": "bash"}, Concrete: true},
			{SinkKey: "env", Source: "02.cue", Strategy: StrategyMerge,
				Value: map[string]any{"editor": "emacs"}, Concrete: true},
		},
	}

	tree, err := Build(collected, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	got, ok := tree["env"].(map[string]any)
	if !ok {
		t.Fatalf("env sink is %T, want map", tree["env"])
	}
	if got["editor"] != "emacs" {
		t.Errorf("editor = %v, want emacs (later source wins)", got["editor"])
	}
	if got["shell"] != "bash" {
		t.Errorf("shell = %v, want bash (untouched key survives)", got["shell"])
	}
}

func TestBuildListAppend(t *testing.T) {
	t.Parallel()

	collected := map[string][]Record{
		"system.pkgs": {
			{SinkKey: "system.pkgs", Source: "base.cue", Strategy: StrategyListAppend,
				Value: []any{"htop", "vim"}, Concrete: true},
			{SinkKey: "system.pkgs", Source: "extra.cue", Strategy: StrategyListAppend,
				Value: []any{"git", "tmux"}, Concrete: true},
		},
	}

	tree, err := Build(collected, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []any{"htop", "vim", "git", "tmux"}
	got := tree["system"].(Tree)["pkgs"]
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pkgs = %v, want %v", got, want)
	}
}

func TestBuildListAppendTypeError(t *testing.T) {
	t.Parallel()

	collected := map[string][]Record{
		"pkgs": {
			{SinkKey: "pkgs", Source: "a.cue", Strategy: StrategyListAppend,
				Value: []any{"htop"}, Concrete: true},
			{SinkKey: "pkgs", Source: "b.cue", Strategy: StrategyListAppend,
				Value: map[string]any{"oops": true}, Concrete: true},
		},
	}

	_, err := Build(collected, Options{})
	if err == nil {
		t.Fatal("Build: want error for non-sequence list-append operand")
	}
	if !strings.Contains(err.Error(), "b.cue") {
		t.Errorf("error should name the offending source, got: %v", err)
	}
}

func TestBuildOverrideSortedBySource(t *testing.T) {
	t.Parallel()

	// Input order is deliberately reversed; the fold must sort by source.
	collected := map[string][]Record{
		"motd": {
			{SinkKey: "motd", Source: "z.cue", Strategy: StrategyOverride, Value: "last", Concrete: true},
			{SinkKey: "motd", Source: "a.cue", Strategy: StrategyOverride, Value: "first", Concrete: true},
		},
	}

	tree, err := Build(collected, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tree["motd"] != "last" {
		t.Errorf("motd = %v, want the lexicographically last source's value", tree["motd"])
	}
}

func TestBuildOverrideShallowMapUpdate(t *testing.T) {
	t.Parallel()

	collected := map[string][]Record{
		"env": {
			{SinkKey: "env", Source: "a.cue", Strategy: StrategyOverride,
				Value: map[string]any{"foo": "first", "bar": "added"}, Concrete: true},
			{SinkKey: "env", Source: "b.cue", Strategy: StrategyOverride,
				Value: map[string]any{"foo": "second"}, Concrete: true},
		},
	}

	tree, err := Build(collected, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := map[string]any{"foo": "second", "bar": "added"}
	if !reflect.DeepEqual(tree["env"], want) {
		t.Errorf("env = %v, want %v (top-level keys update, untouched keys survive)", tree["env"], want)
	}
}

func TestBuildOverrideNestedMapsReplaceWholesale(t *testing.T) {
	t.Parallel()

	// Unlike merge, override does not recurse: a nested map from a later
	// source replaces the earlier nested map entirely.
	collected := map[string][]Record{
		"env": {
			{SinkKey: "env", Source: "a.cue", Strategy: StrategyOverride,
				Value: map[string]any{"a": map[string]any{"x": 1}}, Concrete: true},
			{SinkKey: "env", Source: "b.cue", Strategy: StrategyOverride,
				Value: map[string]any{"a": map[string]any{"y": 2}}, Concrete: true},
		},
	}

	tree, err := Build(collected, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := map[string]any{"a": map[string]any{"y": 2}}
	if !reflect.DeepEqual(tree["env"], want) {
		t.Errorf("env = %v, want %v", tree["env"], want)
	}
}

func TestBuildStrategyConflict(t *testing.T) {
	t.Parallel()

	collected := map[string][]Record{
		"system.pkgs": {
			{SinkKey: "system.pkgs", Source: "a.cue", Strategy: StrategyListAppend, Value: []any{"x"}, Concrete: true},
			{SinkKey: "system.pkgs", Source: "b.cue", Strategy: StrategyOverride, Value: []any{"y"}, Concrete: true},
		},
	}

	_, err := Build(collected, Options{})
	if err == nil {
		t.Fatal("Build: want conflict error")
	}
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("error is %T, want *ConflictError", err)
	}
	if conflict.Key != "system.pkgs" {
		t.Errorf("conflict key = %q, want system.pkgs", conflict.Key)
	}
	msg := err.Error()
	for _, source := range []string{"a.cue", "b.cue"} {
		if !strings.Contains(msg, source) {
			t.Errorf("conflict message should name %s, got: %s", source, msg)
		}
	}
}

func TestBuildDefaultRules(t *testing.T) {
	t.Parallel()

	collected := map[string][]Record{
		"system.pkgs": {
			{SinkKey: "system.pkgs", Source: "a.cue", Value: []any{"htop"}, Concrete: true},
			{SinkKey: "system.pkgs", Source: "b.cue", Value: []any{"vim"}, Concrete: true},
		},
	}

	tree, err := Build(collected, Options{
		Defaults: []Rule{{Pattern: "system.*", Strategy: StrategyListAppend}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []any{"htop", "vim"}
	if got := tree["system"].(Tree)["pkgs"]; !reflect.DeepEqual(got, want) {
		t.Errorf("pkgs = %v, want %v (rule-selected list-append)", got, want)
	}
}

func TestBuildExplicitBeatsRule(t *testing.T) {
	t.Parallel()

	collected := map[string][]Record{
		"system.motd": {
			{SinkKey: "system.motd", Source: "a.cue", Strategy: StrategyOverride, Value: "one", Concrete: true},
			{SinkKey: "system.motd", Source: "b.cue", Strategy: StrategyOverride, Value: "two", Concrete: true},
		},
	}

	tree, err := Build(collected, Options{
		Defaults: []Rule{{Pattern: "*", Strategy: StrategyMerge}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tree["system"].(Tree)["motd"] != "two" {
		t.Errorf("motd = %v, want two", tree["system"].(Tree)["motd"])
	}
}

func TestBuildDebugMeta(t *testing.T) {
	t.Parallel()

	collected := map[string][]Record{
		"system.pkgs": {
			{SinkKey: "system.pkgs", Source: "b.cue", Strategy: StrategyListAppend, Value: []any{"vim"}, Concrete: true},
			{SinkKey: "system.pkgs", Source: "a.cue", Strategy: StrategyListAppend, Value: []any{"htop"}, Concrete: true},
		},
	}

	tree, err := Build(collected, Options{Debug: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	system, ok := tree["system"].(Tree)
	if !ok {
		t.Fatalf("system node is %T, want Tree (intermediate nodes carry no metadata)", tree["system"])
	}
	leaf, ok := system["pkgs"].(DebugLeaf)
	if !ok {
		t.Fatalf("debug leaf is %T, want DebugLeaf", system["pkgs"])
	}

	if want := []any{"htop", "vim"}; !reflect.DeepEqual(leaf.Value, want) {
		t.Errorf("value = %v, want %v", leaf.Value, want)
	}
	if want := []string{"a.cue", "b.cue"}; !reflect.DeepEqual(leaf.Meta.Contributors, want) {
		t.Errorf("contributors = %v, want %v (sorted by source)", leaf.Meta.Contributors, want)
	}
	if leaf.Meta.Strategy != StrategyListAppend {
		t.Errorf("strategy = %q, want list-append", leaf.Meta.Strategy)
	}
}

func TestBuildSharedPrefix(t *testing.T) {
	t.Parallel()

	collected := map[string][]Record{
		"system.pkgs": {{SinkKey: "system.pkgs", Source: "a.cue", Value: []any{"htop"}, Concrete: true}},
		"system.motd": {{SinkKey: "system.motd", Source: "a.cue", Value: "hello", Concrete: true}},
	}

	tree, err := Build(collected, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	system, ok := tree["system"].(Tree)
	if !ok {
		t.Fatalf("system node is %T, want Tree", tree["system"])
	}
	if _, ok := system["pkgs"]; !ok {
		t.Error("system.pkgs missing from shared-prefix tree")
	}
	if system["motd"] != "hello" {
		t.Errorf("system.motd = %v, want hello", system["motd"])
	}
}

func TestBuildLeafInteriorCollision(t *testing.T) {
	t.Parallel()

	collected := map[string][]Record{
		"system":      {{SinkKey: "system", Source: "a.cue", Value: "scalar", Concrete: true}},
		"system.pkgs": {{SinkKey: "system.pkgs", Source: "a.cue", Value: []any{"htop"}, Concrete: true}},
	}

	if _, err := Build(collected, Options{}); err == nil {
		t.Fatal("Build: want error when a sink key nests under a merged scalar")
	}
}

// A sink key that is a strict prefix of another must fail the whole
// call in debug mode exactly as it does without debug; the metadata
// wrapper is not an intermediate node to descend into.
func TestBuildPrefixCollisionDebugParity(t *testing.T) {
	t.Parallel()

	collected := map[string][]Record{
		"a":   {{SinkKey: "a", Source: "u1.cue", Value: map[string]any{"x": 1}, Concrete: true}},
		"a.b": {{SinkKey: "a.b", Source: "u2.cue", Value: "nested", Concrete: true}},
	}

	if _, err := Build(collected, Options{}); err == nil {
		t.Fatal("Build: want collision error without debug")
	}

	_, err := Build(collected, Options{Debug: true})
	if err == nil {
		t.Fatal("Build: want the same collision error with debug")
	}
	if !strings.Contains(err.Error(), `"a.b"`) {
		t.Errorf("error should name the colliding sink key, got: %v", err)
	}
}

func TestBuildEmpty(t *testing.T) {
	t.Parallel()

	tree, err := Build(nil, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(tree) != 0 {
		t.Errorf("Build(nil) = %v, want empty tree", tree)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()

	collected := map[string][]Record{
		"system.pkgs": {
			{SinkKey: "system.pkgs", Source: "z.cue", Strategy: StrategyListAppend, Value: []any{"vim"}, Concrete: true},
			{SinkKey: "system.pkgs", Source: "a.cue", Strategy: StrategyListAppend, Value: []any{"htop"}, Concrete: true},
		},
		"system.env": {
			{SinkKey: "system.env", Source: "a.cue", Strategy: StrategyMerge,
				Value: map[string]any{"shell": "bash"}, Concrete: true},
		},
	}

	first, err := Build(collected, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	second, err := Build(collected, Options{})
	if err != nil {
		t.Fatalf("Build (rerun): %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("rerun diverged:\n%v\n%v", first, second)
	}
}

func TestDeepMergeDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	dst := map[string]any{"a": map[string]any{"x": 1}}
	src := map[string]any{"a": map[string]any{"y": 2}}
	out := deepMerge(dst, src)

	if len(dst["a"].(map[string]any)) != 1 {
		t.Error("deepMerge mutated dst")
	}
	if len(src["a"].(map[string]any)) != 1 {
		t.Error("deepMerge mutated src")
	}
	if want := map[string]any{"a": map[string]any{"x": 1, "y": 2}}; !reflect.DeepEqual(out, want) {
		t.Errorf("deepMerge = %v, want %v", out, want)
	}
}
