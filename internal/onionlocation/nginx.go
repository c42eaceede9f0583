package onionlocation

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/nao1215/onionmonitor/internal/model"
)

// Nginx is the nginx dialect: "add_header Name value [always];" and
// "set $name value;".
var Nginx Dialect = nginxDialect{}

// nginxVariable matches $name and ${name}.
var nginxVariable = expander{pattern: regexp.MustCompile(`\$(?:\{([A-Za-z0-9_]+)\}|([A-Za-z0-9_]+))`)}

type nginxDialect struct{}

func (nginxDialect) Name() string { return "nginx" }

func (nginxDialect) RequestURIPlaceholder() string { return "$request_uri" }

func (nginxDialect) Extract(text string) Extraction {
	var ex Extraction
	for _, st := range splitNginx(text) {
		ex.statements = append(ex.statements, st)

		switch st.Args[0] {
		case "set":
			if len(st.Args) < 3 || !strings.HasPrefix(st.Args[1], "$") {
				continue
			}
			value, _ := nginxVariable.expand(st.Args[2], ex, st.Scope)
			ex.Assignments = append(ex.Assignments, Assignment{
				Line:  st.Line,
				Name:  strings.Trim(strings.TrimPrefix(st.Args[1], "$"), "{}"),
				Value: value,
				scope: st.Scope,
			})
		case "add_header":
			if len(st.Args) < 3 {
				continue
			}
			expanded, used := nginxVariable.expand(st.Args[2], ex, st.Scope)
			ex.Headers = append(ex.Headers, HeaderDirective{
				Line:        st.Line,
				Name:        st.Args[1],
				Value:       st.Args[2],
				Expanded:    expanded,
				Always:      len(st.Args) >= 4 && st.Args[3] == "always",
				Variables:   variableNames(used),
				Assignments: used,
			})
		}
	}
	return ex
}

func (nginxDialect) advise(ex Extraction) []Advisory {
	var advisories []Advisory

	if !ex.hasDirective("server_name") {
		advisories = append(advisories, Advisory{
			Severity: model.SeverityLow,
			Message:  "no server_name directive; the header may be served for unintended hosts",
		})
	}

	tlsListen := false
	http2 := ex.hasDirective("http2")
	for _, st := range ex.statements {
		if st.Args[0] != "listen" {
			continue
		}
		for _, arg := range st.Args[1:] {
			switch arg {
			case "ssl":
				tlsListen = true
			case "http2":
				http2 = true
			}
		}
	}
	if !tlsListen {
		advisories = append(advisories, Advisory{
			Severity: model.SeverityMedium,
			Message:  "no \"listen ... ssl\" directive; Tor Browser only honours Onion-Location on HTTPS pages",
		})
	} else if !ex.hasDirective("ssl_certificate") {
		advisories = append(advisories, Advisory{
			Severity: model.SeverityMedium,
			Message:  "TLS listener without ssl_certificate",
		})
	}
	if !http2 {
		advisories = append(advisories, Advisory{
			Severity: model.SeverityInfo,
			Message:  "http2 is not enabled",
		})
	}

	advisories = append(advisories, foreignVariables(ex)...)

	if st, ok := ex.findDirective("proxy_pass"); ok && !ex.hasDirective("proxy_set_header") {
		advisories = append(advisories, Advisory{
			Severity: model.SeverityLow,
			Line:     st.Line,
			Message:  "proxy_pass without proxy_set_header; the upstream loses the original Host",
		})
	}

	return advisories
}

// foreignVariables reports Onion-Location values that reference a variable
// only assigned in another block, which nginx expands to an empty string.
func foreignVariables(ex Extraction) []Advisory {
	var advisories []Advisory
	for _, h := range ex.onionLocation() {
		for _, name := range nginxVariable.references(h.Value) {
			if containsString(h.Variables, name) {
				continue
			}
			for _, a := range ex.Assignments {
				if a.Name == name {
					advisories = append(advisories, Advisory{
						Severity: model.SeverityHigh,
						Line:     h.Line,
						Message:  fmt.Sprintf("$%s is only set in another block (line %d); it is empty here", name, a.Line),
					})
					break
				}
			}
		}
	}
	return advisories
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// splitNginx splits nginx configuration into statements. A statement ends
// at ';', '{' or '}'. '#' starts a comment at the beginning of a word, and
// "${name}" inside a word is not mistaken for a block. Every statement
// records the blocks it is nested in; a block's own opening statement
// belongs to the parent.
func splitNginx(text string) []statement {
	var (
		stmts    []statement
		args     []string
		cur      strings.Builder
		inWord   bool
		quote    rune
		escaped  bool
		varBrace bool
		line     = 1
		stmtLine = 1
		scope    []int
		blocks   int
	)

	startWord := func() {
		if !inWord {
			inWord = true
			if len(args) == 0 {
				stmtLine = line
			}
		}
	}
	endWord := func() {
		if inWord {
			args = append(args, cur.String())
			cur.Reset()
			inWord = false
		}
	}
	endStatement := func() {
		endWord()
		if len(args) > 0 {
			stmts = append(stmts, statement{Line: stmtLine, Args: args, Scope: slices.Clone(scope)})
		}
		args = nil
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c == '\n' {
			line++
		}

		if quote != 0 {
			switch {
			case escaped:
				cur.WriteRune(c)
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			default:
				cur.WriteRune(c)
			}
			continue
		}

		switch c {
		case ' ', '\t', '\r', '\n':
			endWord()
		case '#':
			if inWord {
				cur.WriteRune(c)
				continue
			}
			for i+1 < len(runes) && runes[i+1] != '\n' {
				i++
			}
		case '"', '\'':
			startWord()
			quote = c
		case ';':
			endStatement()
		case '{':
			if inWord && i > 0 && runes[i-1] == '$' {
				cur.WriteRune(c)
				varBrace = true
				continue
			}
			endStatement()
			blocks++
			scope = append(scope, blocks)
		case '}':
			if varBrace {
				cur.WriteRune(c)
				varBrace = false
				continue
			}
			endStatement()
			if len(scope) > 0 {
				scope = scope[:len(scope)-1]
			}
		default:
			startWord()
			cur.WriteRune(c)
		}
	}
	endStatement()
	return stmts
}
