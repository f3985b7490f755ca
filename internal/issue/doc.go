// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error reporting for the CLI.
//
// ActionableError carries the context a user needs to fix a failure:
// what operation was attempted, what resource was involved, and concrete
// suggestions. The Issue catalog holds longer, markdown-rendered guidance
// for recurring failure modes such as a missing registry root or a sink
// strategy conflict.
package issue
