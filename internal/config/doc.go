// SPDX-License-Identifier: MPL-2.0

// Package config loads the regwalk configuration.
//
// Configuration lives in a CUE file (config.cue) in the platform config
// directory, validated against an embedded schema and merged over
// defaults through Viper. A missing config file is not an error; the
// defaults apply.
package config
