// Package diff compares a local config file with its stored copy.
//
// Comparison is line based. HasDiff answers whether anything changed,
// Lines returns the whole edit script and Groups walks it hunk by hunk
// with DefaultContext lines of context. Replaced lines additionally carry
// character ranges that Render emphasizes.
package diff
