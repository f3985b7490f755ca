// SPDX-License-Identifier: MPL-2.0

package migrate

import (
	"fmt"
	"regexp"
	"strings"
)

// refPattern matches rootIdent followed by one or more dotted segments.
// The leading group rejects matches inside a longer identifier
// (myroot.x must not match root). Segments are contiguous
// identifier-safe characters.
const refPattern = `(?:^|[^A-Za-z0-9_.])%s((?:\.[A-Za-z0-9_-]+)+)`

// ExtractReferences scans text line by line for occurrences of rootIdent
// immediately followed by one or more ".segment" groups and returns each
// matched dotted tail (without the root identifier) in left-to-right,
// top-to-bottom order. Matches inside comments or string literals are
// captured too; this is a textual pass, not a parse.
func ExtractReferences(rootIdent, text string) []string {
	re := referenceRegexp(rootIdent)
	var refs []string
	for _, line := range strings.Split(text, "\n") {
		for _, m := range re.FindAllStringSubmatch(line, -1) {
			// The captured tail starts with the leading dot.
			refs = append(refs, strings.TrimPrefix(m[1], "."))
		}
	}
	return refs
}

// referenceRegexp builds the scan regexp for a root identifier.
func referenceRegexp(rootIdent string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(refPattern, regexp.QuoteMeta(rootIdent)))
}
