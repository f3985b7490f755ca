// SPDX-License-Identifier: MPL-2.0

// Command regwalk aggregates configuration from trees of CUE units and
// repairs stale registry references.
package main
