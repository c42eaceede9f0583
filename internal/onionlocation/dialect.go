package onionlocation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrUnknownDialect is returned by ParseDialect for unsupported names.
var ErrUnknownDialect = errors.New("unknown configuration dialect")

// Dialect knows how one web server writes headers and variables.
type Dialect interface {
	// Name returns the dialect name, e.g. "nginx".
	Name() string

	// RequestURIPlaceholder returns the variable that expands to the
	// original path and query of the request.
	RequestURIPlaceholder() string

	// Extract tokenizes text and returns its header directives and
	// variable assignments.
	Extract(text string) Extraction

	// advise returns dialect-specific best-practice findings.
	advise(ex Extraction) []Advisory
}

// HeaderDirective is one response header emitted by the configuration.
type HeaderDirective struct {
	// Line is the 1-based line the directive starts on.
	Line int `json:"line"`

	// Name is the header name exactly as written.
	Name string `json:"name"`

	// Value is the header value as written, without quotes.
	Value string `json:"value"`

	// Expanded is Value with every variable assigned earlier in the
	// configuration substituted. Unassigned variables are left as written.
	Expanded string `json:"expanded"`

	// Always is set when the header is also sent on error responses.
	Always bool `json:"always"`

	// Variables lists the assigned variables that Value references.
	Variables []string `json:"variables,omitempty"`

	// Assignments are the definitions Expanded was built from, one per
	// entry of Variables.
	Assignments []Assignment `json:"assignments,omitempty"`
}

// Assignment is a variable definition such as nginx "set $x value;".
type Assignment struct {
	Line  int    `json:"line"`
	Name  string `json:"name"`
	Value string `json:"value"`

	// scope is the block path the assignment was made in.
	scope []int
}

// Extraction is the parsed view of a configuration.
type Extraction struct {
	Headers     []HeaderDirective
	Assignments []Assignment

	// statements keeps every statement for advisories.
	statements []statement
}

// lookup returns the latest assignment to name visible from scope. An
// assignment is visible in the block it was made in and in blocks nested
// inside it, so a sibling server block never sees it.
func (ex Extraction) lookup(name string, scope []int) (Assignment, bool) {
	for i := len(ex.Assignments) - 1; i >= 0; i-- {
		a := ex.Assignments[i]
		if a.Name == name && isPrefix(a.scope, scope) {
			return a, true
		}
	}
	return Assignment{}, false
}

// isPrefix reports whether outer is scope or one of its ancestors.
func isPrefix(outer, scope []int) bool {
	if len(outer) > len(scope) {
		return false
	}
	for i := range outer {
		if outer[i] != scope[i] {
			return false
		}
	}
	return true
}

// onionLocation returns the directives whose name is Onion-Location in any case.
func (ex Extraction) onionLocation() []HeaderDirective {
	var result []HeaderDirective
	for _, h := range ex.Headers {
		if strings.EqualFold(h.Name, HeaderName) {
			result = append(result, h)
		}
	}
	return result
}

// hasDirective reports whether any statement starts with one of names
// (case-insensitive).
func (ex Extraction) hasDirective(names ...string) bool {
	_, ok := ex.findDirective(names...)
	return ok
}

// findDirective returns the first statement starting with one of names.
func (ex Extraction) findDirective(names ...string) (statement, bool) {
	for _, st := range ex.statements {
		for _, n := range names {
			if strings.EqualFold(st.Args[0], n) {
				return st, true
			}
		}
	}
	return statement{}, false
}

// statement is a directive name followed by its arguments.
type statement struct {
	Line int
	Args []string

	// Scope identifies the enclosing blocks, outermost first. Dialects
	// without block scoping leave it nil.
	Scope []int
}

// ParseDialect returns the dialect with the given name.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "nginx":
		return Nginx, nil
	case "apache", "apache2", "httpd", "apacheconf":
		return Apache, nil
	default:
		return nil, fmt.Errorf("%w: %q (want nginx or apache)", ErrUnknownDialect, name)
	}
}

// apacheHints are fragments that only appear in Apache configuration.
var apacheHints = regexp.MustCompile(`(?im)^\s*(<VirtualHost|Header\s+(always\s+|onsuccess\s+)?set\s|Define\s|ServerName\s|RewriteEngine\s)`)

// DetectDialect guesses the dialect from a file path and its content.
// .htaccess files, paths under an apache or httpd directory and content
// with Apache directives are Apache. Anything else is treated as nginx.
func DetectDialect(path, text string) Dialect {
	lower := strings.ToLower(filepath.ToSlash(path))
	if filepath.Base(lower) == ".htaccess" || strings.Contains(lower, "apache") || strings.Contains(lower, "httpd") {
		return Apache
	}
	if strings.Contains(lower, "nginx") {
		return Nginx
	}
	if apacheHints.MatchString(text) && !strings.Contains(text, "add_header") {
		return Apache
	}
	return Nginx
}

// expander substitutes assigned variables inside a value.
type expander struct {
	pattern *regexp.Regexp
}

// expand replaces every reference whose name is assigned in ex and visible
// from scope. It returns the expanded value plus the assignments used.
func (e expander) expand(value string, ex Extraction, scope []int) (string, []Assignment) {
	var used []Assignment
	expanded := e.pattern.ReplaceAllStringFunc(value, func(ref string) string {
		name := e.name(ref)
		a, ok := ex.lookup(name, scope)
		if !ok {
			return ref
		}
		used = appendUnique(used, a)
		return a.Value
	})
	return expanded, used
}

// references returns the variable names value refers to, assigned or not.
func (e expander) references(value string) []string {
	var names []string
	for _, ref := range e.pattern.FindAllString(value, -1) {
		names = append(names, e.name(ref))
	}
	return names
}

// name returns the variable name of a single reference.
func (e expander) name(ref string) string {
	m := e.pattern.FindStringSubmatch(ref)
	name := m[1]
	if name == "" && len(m) > 2 {
		name = m[2]
	}
	return name
}

// appendUnique appends a unless an assignment to the same name is present.
func appendUnique(list []Assignment, a Assignment) []Assignment {
	for _, v := range list {
		if v.Name == a.Name {
			return list
		}
	}
	return append(list, a)
}

// variableNames returns the names of assignments in order.
func variableNames(assignments []Assignment) []string {
	if len(assignments) == 0 {
		return nil
	}
	names := make([]string, 0, len(assignments))
	for _, a := range assignments {
		names = append(names, a.Name)
	}
	return names
}

// splitWords splits a line into whitespace-separated words, honouring
// single and double quotes and backslash escapes inside quotes.
func splitWords(line string) []string {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, c := range line {
		switch {
		case escaped:
			cur.WriteRune(c)
			escaped = false
		case quote != 0 && c == '\\':
			escaped = true
		case quote != 0 && c == quote:
			quote = 0
		case quote != 0:
			cur.WriteRune(c)
		case c == '"' || c == '\'':
			quote = c
			inWord = true
		case c == ' ' || c == '\t' || c == '\r':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(c)
			inWord = true
		}
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words
}
