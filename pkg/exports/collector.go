// SPDX-License-Identifier: MPL-2.0

package exports

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/regwalk/regwalk/pkg/cueutil"
	"github.com/regwalk/regwalk/pkg/registry"
	"github.com/regwalk/regwalk/pkg/sink"
)

// Collector evaluates units and extracts their export records. A single
// Collector reuses one CUE context across all units of a scan.
type Collector struct {
	ctx *cue.Context
}

// NewCollector creates a Collector with a fresh CUE context.
func NewCollector() *Collector {
	return &Collector{ctx: cuecontext.New()}
}

// Collect walks the given roots (files or directories, in argument
// order) and returns all export records grouped by sink key. Records
// append in traversal order: roots are processed independently and their
// per-key lists concatenated in root order, then file order within each
// root. Evaluation failures are swallowed per unit; only filesystem
// errors on the roots themselves surface.
func Collect(roots ...string) (map[string][]sink.Record, error) {
	return NewCollector().Collect(roots...)
}

// Collect implements the package-level Collect on a reusable Collector.
func (c *Collector) Collect(roots ...string) (map[string][]sink.Record, error) {
	collected := make(map[string][]sink.Record)
	for _, root := range roots {
		files, err := unitFiles(root)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			records, skip := c.collectFile(file)
			if skip != nil {
				slog.Debug("skipping unit", "file", file, "reason", skip)
				continue
			}
			for _, r := range records {
				collected[r.SinkKey] = append(collected[r.SinkKey], r)
			}
		}
	}
	return collected, nil
}

// unitFiles enumerates the unit files under root in depth-first
// lexicographic order, applying the registry naming rules: hidden
// entries are skipped and a marker directory collapses to its single
// designated file.
func unitFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("collect root %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	marker := filepath.Join(root, registry.MarkerFile)
	if fi, err := os.Stat(marker); err == nil && !fi.IsDir() {
		return []string{marker}, nil
	}

	var files []string
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("collect: reading %s: %w", root, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, registry.HiddenPrefix) {
			continue
		}
		path := filepath.Join(root, name)
		if entry.IsDir() {
			sub, err := unitFiles(path)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
			continue
		}
		if strings.HasSuffix(name, registry.UnitSuffix) {
			files = append(files, path)
		}
	}
	return files, nil
}

// collectFile evaluates one unit inside a fault boundary. The second
// return is a non-nil skip reason when the unit contributes nothing; a
// skip is a no-op for the traversal loop, never an error.
func (c *Collector) collectFile(path string) ([]sink.Record, error) {
	v, err := cueutil.CompileFile(c.ctx, path)
	if err != nil {
		return nil, err
	}
	if v.Err() != nil {
		return nil, v.Err()
	}
	if v.IncompleteKind() != cue.StructKind {
		return nil, fmt.Errorf("unit is not a structured value (%s)", v.IncompleteKind())
	}

	if kind := Classify(v); kind == UnitDeferred {
		return nil, fmt.Errorf("unit requires external context and is not self-describing")
	}

	exportsVal := v.LookupPath(cue.ParsePath(ExportsField))
	if !exportsVal.Exists() {
		return nil, fmt.Errorf("unit declares no exports")
	}
	if exportsVal.Err() != nil {
		return nil, exportsVal.Err()
	}
	if exportsVal.IncompleteKind() != cue.StructKind {
		return nil, fmt.Errorf("exports is not a struct (%s)", exportsVal.IncompleteKind())
	}

	it, err := exportsVal.Fields()
	if err != nil {
		return nil, err
	}

	var records []sink.Record
	for it.Next() {
		sel := it.Selector()
		if sel.LabelType() != cue.StringLabel {
			return nil, fmt.Errorf("exports key %s is not a string label", sel)
		}
		record, err := c.entryRecord(sel.Unquoted(), it.Value(), path)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// entryRecord normalizes one declared sink entry. An entry is either a
// struct with a "value" field and an optional "strategy" field, or a
// bare value wrapped with the unset strategy.
func (c *Collector) entryRecord(key string, entry cue.Value, source string) (sink.Record, error) {
	valueVal := entry
	strategy := sink.StrategyUnset

	if entry.IncompleteKind() == cue.StructKind {
		if vf := entry.LookupPath(cue.ParsePath("value")); vf.Exists() {
			valueVal = vf
			if sf := entry.LookupPath(cue.ParsePath("strategy")); sf.Exists() {
				var s string
				if err := sf.Decode(&s); err != nil {
					return sink.Record{}, fmt.Errorf("exports %q: strategy is not a string: %w", key, err)
				}
				strategy = sink.Strategy(s)
			}
		}
	}

	record := sink.Record{
		SinkKey:  key,
		Strategy: strategy,
		Source:   source,
		Fragment: valueVal,
	}

	// A non-concrete value stays a deferred fragment; the sink merger
	// decides whether that is acceptable for the sink's strategy.
	if valueVal.Validate(cue.Concrete(true)) == nil {
		var decoded any
		if err := valueVal.Decode(&decoded); err != nil {
			return sink.Record{}, fmt.Errorf("exports %q: %w", key, err)
		}
		record.Value = decoded
		record.Concrete = true
	}

	return record, nil
}
