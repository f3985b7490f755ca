// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// UnitSuffix is the filename suffix identifying CUE units.
	UnitSuffix = ".cue"

	// MarkerFile marks a directory as an opaque leaf. A directory that
	// contains this file resolves to a single unit and its descendants are
	// never enumerated.
	MarkerFile = "default" + UnitSuffix

	// HiddenPrefix excludes an entry (and its descendants) from the registry.
	HiddenPrefix = "_"

	// EscapeSuffix is the trailing escape character stripped from a raw
	// name after the unit suffix. It lets a unit claim a name that would
	// otherwise collide with a reserved filesystem name.
	EscapeSuffix = "_"
)

// Node is a single entry in the registry tree. A leaf resolves to one
// opaque location; an interior node maps segments to children and also
// carries its own directory location.
type Node struct {
	// Location is the filesystem path this node resolves to.
	Location string

	// Children maps path segments to child nodes. Nil for leaves.
	Children map[string]*Node

	leaf bool
}

// IsLeaf reports whether the node is an opaque leaf (a plain unit file or
// a marker-bearing directory).
func (n *Node) IsLeaf() bool {
	return n.leaf
}

// Build constructs a registry from root, which may be a directory or a
// single unit file. Traversal is lexicographic by raw entry name so that
// downstream contributor ordering is reproducible across machines.
func Build(root string) (*Node, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("registry root %s: %w", root, err)
	}

	if !info.IsDir() {
		// A single file becomes the registry's sole path, keyed by its
		// derived segment under the synthetic root.
		seg, ok := Segment(filepath.Base(root))
		if !ok {
			return nil, fmt.Errorf("registry root %s: name does not derive a segment", root)
		}
		return &Node{
			Location: filepath.Dir(root),
			Children: map[string]*Node{
				seg: {Location: root, leaf: true},
			},
		}, nil
	}

	if hasMarker(root) {
		// The root itself is an opaque leaf: it contributes a single path
		// named after the directory, same as the single-file case.
		seg, ok := Segment(filepath.Base(root))
		if !ok {
			return nil, fmt.Errorf("registry root %s: name does not derive a segment", root)
		}
		return &Node{
			Location: filepath.Dir(root),
			Children: map[string]*Node{
				seg: {Location: root, leaf: true},
			},
		}, nil
	}

	return buildDir(root)
}

// buildDir recursively builds the node for a directory that is not an
// opaque leaf itself (the marker check for root happens in the caller's
// children, never for the synthetic root).
func buildDir(dir string) (*Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("registry: reading %s: %w", dir, err)
	}

	node := &Node{Location: dir, Children: map[string]*Node{}}

	// os.ReadDir returns entries sorted by raw filename.
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, HiddenPrefix) {
			continue
		}

		path := filepath.Join(dir, name)
		if entry.IsDir() {
			seg, ok := Segment(name)
			if !ok {
				continue
			}
			if hasMarker(path) {
				node.Children[seg] = &Node{Location: path, leaf: true}
				continue
			}
			child, err := buildDir(path)
			if err != nil {
				return nil, err
			}
			node.Children[seg] = child
			continue
		}

		if !strings.HasSuffix(name, UnitSuffix) {
			continue
		}
		seg, ok := Segment(name)
		if !ok {
			continue
		}
		node.Children[seg] = &Node{Location: path, leaf: true}
	}

	return node, nil
}

// Segment derives a registry path segment from a raw filesystem name.
// The second return is false when the name derives no usable segment
// (hidden, or empty after stripping).
func Segment(raw string) (string, bool) {
	if strings.HasPrefix(raw, HiddenPrefix) {
		return "", false
	}
	s := strings.TrimSuffix(raw, UnitSuffix)
	if strings.HasSuffix(s, EscapeSuffix) {
		s = s[:len(s)-len(EscapeSuffix)]
	}
	if s == "" {
		return "", false
	}
	return s, true
}

// Flatten returns every dotted path reachable from the root, interior and
// leaf nodes alike, excluding the synthetic root. The result is sorted.
func (n *Node) Flatten() []string {
	var paths []string
	var walk func(prefix string, node *Node)
	walk = func(prefix string, node *Node) {
		for seg, child := range node.Children {
			dotted := seg
			if prefix != "" {
				dotted = prefix + "." + seg
			}
			paths = append(paths, dotted)
			if !child.leaf {
				walk(dotted, child)
			}
		}
	}
	walk("", n)
	sort.Strings(paths)
	return paths
}

// IsValid reports whether the dotted path resolves against the registry.
// The walk fails as soon as a segment is missing or a leaf is reached
// before the path is exhausted.
func (n *Node) IsValid(dotted string) bool {
	if dotted == "" {
		return false
	}
	node := n
	segments := strings.Split(dotted, ".")
	for i, seg := range segments {
		if node.leaf {
			// Leaf reached with segments left over.
			return false
		}
		child, ok := node.Children[seg]
		if !ok {
			return false
		}
		if i == len(segments)-1 {
			return true
		}
		node = child
	}
	return true
}

// Lookup returns the node at the dotted path, or nil when the path does
// not resolve.
func (n *Node) Lookup(dotted string) *Node {
	if dotted == "" {
		return nil
	}
	node := n
	for _, seg := range strings.Split(dotted, ".") {
		if node.leaf {
			return nil
		}
		child, ok := node.Children[seg]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// hasMarker reports whether dir contains the opaque-leaf marker file.
func hasMarker(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, MarkerFile))
	return err == nil && !info.IsDir()
}
