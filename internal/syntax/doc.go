// Package syntax parses Elixir configuration files with tree-sitter and
// runs structural queries over them.
//
// A File keeps the syntax tree together with the byte buffer it was parsed
// from, so spans and excerpts are always computed against the same bytes.
// Both the annotation parser and the lint engine build on it.
package syntax
