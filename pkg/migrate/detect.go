// SPDX-License-Identifier: MPL-2.0

package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/regwalk/regwalk/pkg/registry"
)

type (
	// Input carries everything rename detection needs.
	Input struct {
		// Registry is the current registry to validate references against.
		Registry *registry.Node

		// Paths are the files or directories to scan for references.
		Paths []string

		// RootIdent is the identifier that prefixes registry references in
		// source text (e.g. "cfg" for cfg.home.alice).
		RootIdent string

		// RenameMap optionally maps old path prefixes to new ones. When a
		// broken reference matches an entry (longest prefix wins), the
		// mapping is applied and the leaf heuristic is bypassed.
		RenameMap map[string]string
	}

	// Report is the stable result of DetectRenames.
	Report struct {
		// BrokenRefs lists every reference that no longer resolves, sorted.
		BrokenRefs []string

		// Suggestions maps broken references to their proposed
		// replacements. Unresolved references have no entry.
		Suggestions map[string]string

		// AffectedFiles lists every file, relative to the invocation root,
		// containing at least one broken reference that received a
		// suggestion.
		AffectedFiles []string

		// Commands holds one structural-rewrite invocation per resolved
		// suggestion, scoped to the affected file set.
		Commands []string

		// Script is a human-readable report of the detected mappings,
		// affected files, and commands.
		Script string

		rootIdent string
	}

	// occurrence records where a reference was found.
	occurrence struct {
		path    string
		foundIn string
	}
)

// DetectRenames scans the input paths for registry references, flags the
// ones that no longer resolve, and proposes replacements. Broken
// references with no resolvable suggestion are reported, not fatal.
func DetectRenames(in Input) (*Report, error) {
	if in.Registry == nil {
		return nil, fmt.Errorf("detect renames: registry is required")
	}
	if in.RootIdent == "" {
		return nil, fmt.Errorf("detect renames: root identifier is required")
	}

	occurrences, err := scanPaths(in.RootIdent, in.Paths)
	if err != nil {
		return nil, err
	}

	// Dedupe into the candidate set, partitioned valid/broken.
	seen := make(map[string]bool)
	var broken []string
	for _, occ := range occurrences {
		if seen[occ.path] {
			continue
		}
		seen[occ.path] = true
		if !in.Registry.IsValid(occ.path) {
			broken = append(broken, occ.path)
		}
	}
	sort.Strings(broken)

	current := in.Registry.Flatten()
	suggestions := make(map[string]string)
	for _, ref := range broken {
		if mapped, ok := applyRenameMap(in.RenameMap, ref); ok {
			suggestions[ref] = mapped
			continue
		}
		if suggested, ok := SuggestNewPath(current, ref); ok {
			suggestions[ref] = suggested
		}
	}

	affected := affectedFiles(occurrences, suggestions)
	commands := rewriteCommands(in.RootIdent, suggestions, affected)

	report := &Report{
		BrokenRefs:    broken,
		Suggestions:   suggestions,
		AffectedFiles: affected,
		Commands:      commands,
		rootIdent:     in.RootIdent,
	}
	report.Script = renderScript(report)
	return report, nil
}

// scanPaths collects references from every unit file under the given
// paths (recursive, depth-first, lexicographic). A path that is a plain
// file is scanned directly.
func scanPaths(rootIdent string, paths []string) ([]occurrence, error) {
	var occurrences []occurrence
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
		if !info.IsDir() {
			occs, err := scanFile(rootIdent, p)
			if err != nil {
				return nil, err
			}
			occurrences = append(occurrences, occs...)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), registry.UnitSuffix) {
				return nil
			}
			occs, err := scanFile(rootIdent, path)
			if err != nil {
				return err
			}
			occurrences = append(occurrences, occs...)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
	}
	return occurrences, nil
}

// scanFile extracts all references from one file.
func scanFile(rootIdent, path string) ([]occurrence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	rel := relativize(path)
	var occurrences []occurrence
	for _, ref := range ExtractReferences(rootIdent, string(data)) {
		occurrences = append(occurrences, occurrence{path: ref, foundIn: rel})
	}
	return occurrences, nil
}

// relativize normalizes a scanned file path to be relative to the
// invocation root. Relative inputs stay as walked; absolute inputs are
// made relative to the working directory when possible.
func relativize(path string) string {
	if !filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// SuggestNewPath proposes a replacement for a broken path by matching its
// final segment against the current paths. Exactly one candidate
// produces a suggestion; zero or several candidates return false — the
// two cases are deliberately not distinguished here, callers can recount
// candidates if they need to.
func SuggestNewPath(currentPaths []string, brokenPath string) (string, bool) {
	leaf := brokenPath
	if i := strings.LastIndex(brokenPath, "."); i >= 0 {
		leaf = brokenPath[i+1:]
	}

	var candidates []string
	for _, p := range currentPaths {
		pLeaf := p
		if i := strings.LastIndex(p, "."); i >= 0 {
			pLeaf = p[i+1:]
		}
		if pLeaf == leaf {
			candidates = append(candidates, p)
		}
	}

	if len(candidates) != 1 {
		return "", false
	}
	return candidates[0], true
}

// applyRenameMap substitutes the longest matching old prefix of the
// broken path. Prefixes match on segment boundaries only.
func applyRenameMap(renameMap map[string]string, broken string) (string, bool) {
	best := ""
	for old := range renameMap {
		if old != broken && !strings.HasPrefix(broken, old+".") {
			continue
		}
		if len(old) > len(best) {
			best = old
		}
	}
	if best == "" {
		return "", false
	}
	return renameMap[best] + strings.TrimPrefix(broken, best), true
}

// affectedFiles returns every file containing at least one broken
// reference that received a suggestion, sorted and deduplicated.
func affectedFiles(occurrences []occurrence, suggestions map[string]string) []string {
	seen := make(map[string]bool)
	var files []string
	for _, occ := range occurrences {
		if _, ok := suggestions[occ.path]; !ok {
			continue
		}
		if seen[occ.foundIn] {
			continue
		}
		seen[occ.foundIn] = true
		files = append(files, occ.foundIn)
	}
	sort.Strings(files)
	return files
}
