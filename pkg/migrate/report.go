// SPDX-License-Identifier: MPL-2.0

package migrate

import (
	"fmt"
	"sort"
	"strings"
)

// RewriteTool is the external structural-rewrite tool the generated
// commands invoke. Rewrites are never performed in-process; the tool
// operates on validated syntax, not on the raw scan output.
const RewriteTool = "comby"

// Unresolved returns the broken references that received no suggestion,
// sorted. These are data-quality findings, not failures.
func (r *Report) Unresolved() []string {
	var out []string
	for _, ref := range r.BrokenRefs {
		if _, ok := r.Suggestions[ref]; !ok {
			out = append(out, ref)
		}
	}
	return out
}

// rewriteCommands generates one rewrite invocation per resolved
// suggestion, scoped to the affected file set. Suggestions are emitted
// in sorted broken-path order for reproducible command lists.
func rewriteCommands(rootIdent string, suggestions map[string]string, files []string) []string {
	if len(suggestions) == 0 || len(files) == 0 {
		return nil
	}

	brokenPaths := make([]string, 0, len(suggestions))
	for broken := range suggestions {
		brokenPaths = append(brokenPaths, broken)
	}
	sort.Strings(brokenPaths)

	quoted := make([]string, len(files))
	for i, f := range files {
		quoted[i] = shellQuote(f)
	}
	fileArgs := strings.Join(quoted, " ")

	commands := make([]string, 0, len(brokenPaths))
	for _, broken := range brokenPaths {
		commands = append(commands, fmt.Sprintf("%s -in-place %s %s %s",
			RewriteTool,
			shellQuote(rootIdent+"."+broken),
			shellQuote(rootIdent+"."+suggestions[broken]),
			fileArgs))
	}
	return commands
}

// renderScript assembles the human-readable report: detected mappings,
// affected files, the literal commands, and the show-vs-apply
// instruction.
func renderScript(r *Report) string {
	var b strings.Builder

	b.WriteString("Registry migration report\n")
	b.WriteString("=========================\n\n")

	if len(r.BrokenRefs) == 0 {
		b.WriteString("All references resolve against the current registry.\n")
		return b.String()
	}

	if len(r.Suggestions) > 0 {
		b.WriteString("Detected renames:\n")
		brokenPaths := make([]string, 0, len(r.Suggestions))
		for broken := range r.Suggestions {
			brokenPaths = append(brokenPaths, broken)
		}
		sort.Strings(brokenPaths)
		for _, broken := range brokenPaths {
			fmt.Fprintf(&b, "  %s.%s -> %s.%s\n", r.rootIdent, broken, r.rootIdent, r.Suggestions[broken])
		}
		b.WriteString("\n")
	}

	if unresolved := r.Unresolved(); len(unresolved) > 0 {
		b.WriteString("Unresolved references (no unique match, fix manually):\n")
		for _, ref := range unresolved {
			fmt.Fprintf(&b, "  %s.%s\n", r.rootIdent, ref)
		}
		b.WriteString("\n")
	}

	if len(r.AffectedFiles) > 0 {
		b.WriteString("Affected files:\n")
		for _, f := range r.AffectedFiles {
			fmt.Fprintf(&b, "  %s\n", f)
		}
		b.WriteString("\n")
	}

	if len(r.Commands) > 0 {
		b.WriteString("Commands:\n")
		for _, cmd := range r.Commands {
			fmt.Fprintf(&b, "  %s\n", cmd)
		}
		b.WriteString("\n")
		b.WriteString("This report is informational; re-run with --apply to execute the commands.\n")
	}

	return b.String()
}

// shellQuote single-quotes an argument for the generated shell commands.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
