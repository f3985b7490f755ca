// SPDX-License-Identifier: MPL-2.0

// Package migrate detects registry references that no longer resolve and
// proposes repairs.
//
// Reference extraction is a deliberate textual scan, not a parse: it will
// match inside comments and string literals. That tradeoff is accepted
// because the rewrite step operates through an external structural
// rewrite tool driven by generated patterns, not on the raw scan output.
package migrate
