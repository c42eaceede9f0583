// Package onionlocation validates web server configuration that emits the
// Onion-Location response header.
//
// A configuration is checked against a fixed list of clauses (see Clauses).
// Every clause is evaluated independently and reported on its own, so a
// single run shows every gap in a recipe instead of stopping at the first.
//
// # Sources
//
// Configuration text comes from nginx or Apache files (see Nginx and
// Apache), from fenced code blocks in Markdown documentation
// (ValidateMarkdown), or, for pages that advertise the mirror with a meta
// tag instead of a header, from HTML (ValidateHTML).
//
// Parsing is pattern based: statements are tokenized, header directives and
// variable assignments are extracted, and everything else is ignored. The
// package never evaluates a configuration the way a server would.
package onionlocation
