// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/regwalk/regwalk/pkg/sink"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidRootIdent is returned when the root identifier is not a valid identifier.
	ErrInvalidRootIdent = errors.New("invalid root identifier")
	// ErrInvalidDefaultRule is the sentinel error wrapped by InvalidDefaultRuleError.
	ErrInvalidDefaultRule = errors.New("invalid default rule")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not
	// recognized. It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidDefaultRuleError is returned when a default rule has an empty
	// pattern or an unknown strategy. It wraps ErrInvalidDefaultRule.
	InvalidDefaultRuleError struct {
		Index int
		Cause error
	}

	// DefaultRule binds a sink-key glob pattern to a default strategy.
	DefaultRule struct {
		Pattern  string `mapstructure:"pattern"`
		Strategy string `mapstructure:"strategy"`
	}

	// UIConfig holds terminal presentation settings.
	UIConfig struct {
		ColorScheme ColorScheme `mapstructure:"color_scheme"`
		Verbose     bool        `mapstructure:"verbose"`
	}

	// Config is the resolved regwalk configuration.
	Config struct {
		// RootIdent is the identifier that prefixes registry references in
		// source text.
		RootIdent string `mapstructure:"root_ident"`

		// SearchPath is the default registry root when none is given on
		// the command line.
		SearchPath string `mapstructure:"search_path"`

		// Defaults supplies the default-strategy rules for sink merging,
		// evaluated in order, first match wins.
		Defaults []DefaultRule `mapstructure:"defaults"`

		// UI holds terminal presentation settings.
		UI UIConfig `mapstructure:"ui"`
	}
)

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", string(e.Value))
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() checks.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// Error implements the error interface.
func (e *InvalidDefaultRuleError) Error() string {
	return fmt.Sprintf("defaults[%d]: %v", e.Index, e.Cause)
}

// Unwrap returns ErrInvalidDefaultRule for errors.Is() checks.
func (e *InvalidDefaultRuleError) Unwrap() error {
	return ErrInvalidDefaultRule
}

// Validate checks the color scheme value.
func (s ColorScheme) Validate() error {
	switch s {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: s}
	}
}

// Validate checks constraints the CUE schema cannot express on its own
// (the strategy set lives in pkg/sink, and identifier rules apply after
// Viper merging regardless of the config source).
func (c *Config) Validate() error {
	if !isIdentifier(c.RootIdent) {
		return fmt.Errorf("%w: %q", ErrInvalidRootIdent, c.RootIdent)
	}
	if err := c.UI.ColorScheme.Validate(); err != nil {
		return err
	}
	for i, rule := range c.Defaults {
		if strings.TrimSpace(rule.Pattern) == "" {
			return &InvalidDefaultRuleError{Index: i, Cause: errors.New("pattern must not be empty")}
		}
		if err := sink.Strategy(rule.Strategy).Validate(); err != nil {
			return &InvalidDefaultRuleError{Index: i, Cause: err}
		}
	}
	return nil
}

// SinkRules converts the configured default rules to the sink package's
// rule type.
func (c *Config) SinkRules() []sink.Rule {
	rules := make([]sink.Rule, len(c.Defaults))
	for i, r := range c.Defaults {
		rules[i] = sink.Rule{Pattern: r.Pattern, Strategy: sink.Strategy(r.Strategy)}
	}
	return rules
}

// DefaultConfig returns the built-in defaults applied before any config
// file is merged.
func DefaultConfig() *Config {
	return &Config{
		RootIdent:  "cfg",
		SearchPath: ".",
		Defaults:   nil,
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}

// isIdentifier reports whether s is a plausible reference root
// identifier: a letter or underscore followed by letters, digits, or
// underscores.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
