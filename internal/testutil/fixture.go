// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"strings"
	"testing"
)

// WriteTree materializes a fixture tree under a fresh temp directory and
// returns its root. Map keys are slash-separated relative paths; a key
// ending in "/" creates an empty directory, any other key creates a file
// with the given content (parents are created as needed).
func WriteTree(t testing.TB, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			MustMkdirAll(t, path, 0o755)
			continue
		}
		MustMkdirAll(t, filepath.Dir(path), 0o755)
		MustWriteFile(t, path, []byte(content), 0o644)
	}
	return root
}
