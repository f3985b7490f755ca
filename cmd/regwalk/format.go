// SPDX-License-Identifier: MPL-2.0

package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/glamour/styles"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/regwalk/regwalk/internal/config"
	"github.com/regwalk/regwalk/pkg/sink"
)

// renderTree encodes a merged sink tree in the requested output format.
func renderTree(tree sink.Tree, format string) (string, error) {
	switch format {
	case "json":
		out, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding sink tree as JSON: %w", err)
		}
		return string(out), nil
	case "toml":
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(map[string]any(tree)); err != nil {
			return "", fmt.Errorf("encoding sink tree as TOML: %w", err)
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: json, toml)", format)
	}
}

// styleForScheme maps the configured color scheme to a glamour style
// name.
func styleForScheme(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark:
		return styles.DarkStyle
	case config.ColorSchemeLight:
		return styles.LightStyle
	default:
		return styles.AutoStyle
	}
}
