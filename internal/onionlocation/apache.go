package onionlocation

import (
	"regexp"
	"strings"

	"github.com/nao1215/onionmonitor/internal/model"
)

// Apache is the Apache httpd dialect (mod_headers):
// "Header [always] set Name value" and "Define NAME value".
var Apache Dialect = apacheDialect{}

// apacheVariable matches ${NAME}.
var apacheVariable = expander{pattern: regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}`)}

// apacheHeaderActions are the mod_headers actions that emit a value.
var apacheHeaderActions = map[string]bool{
	"set":        true,
	"add":        true,
	"append":     true,
	"merge":      true,
	"setifempty": true,
}

type apacheDialect struct{}

func (apacheDialect) Name() string { return "apache" }

func (apacheDialect) RequestURIPlaceholder() string { return "%{REQUEST_URI}s" }

func (apacheDialect) Extract(text string) Extraction {
	var ex Extraction
	for _, st := range splitApache(text) {
		ex.statements = append(ex.statements, st)

		switch strings.ToLower(st.Args[0]) {
		case "define":
			if len(st.Args) < 3 {
				continue
			}
			value, _ := apacheVariable.expand(st.Args[2], ex, nil)
			ex.Assignments = append(ex.Assignments, Assignment{Line: st.Line, Name: st.Args[1], Value: value})
		case "header":
			if h, ok := parseApacheHeader(st, ex); ok {
				ex.Headers = append(ex.Headers, h)
			}
		}
	}
	return ex
}

// parseApacheHeader reads "Header [condition] action name value".
func parseApacheHeader(st statement, ex Extraction) (HeaderDirective, bool) {
	args := st.Args[1:]
	always := false
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "always":
			always = true
			args = args[1:]
		case "onsuccess":
			args = args[1:]
		}
	}
	if len(args) < 3 || !apacheHeaderActions[strings.ToLower(args[0])] {
		return HeaderDirective{}, false
	}

	expanded, used := apacheVariable.expand(args[2], ex, nil)
	return HeaderDirective{
		Line:        st.Line,
		Name:        args[1],
		Value:       args[2],
		Expanded:    expanded,
		Always:      always,
		Variables:   variableNames(used),
		Assignments: used,
	}, true
}

func (apacheDialect) advise(ex Extraction) []Advisory {
	var advisories []Advisory

	if !ex.hasDirective("ServerName") {
		advisories = append(advisories, Advisory{
			Severity: model.SeverityLow,
			Message:  "no ServerName directive; the header may be served for unintended hosts",
		})
	}

	tls := false
	for _, st := range ex.statements {
		if strings.EqualFold(st.Args[0], "SSLEngine") && len(st.Args) > 1 && strings.EqualFold(st.Args[1], "on") {
			tls = true
		}
	}
	if !tls {
		advisories = append(advisories, Advisory{
			Severity: model.SeverityMedium,
			Message:  "no \"SSLEngine on\"; Tor Browser only honours Onion-Location on HTTPS pages",
		})
	} else if !ex.hasDirective("SSLCertificateFile") {
		advisories = append(advisories, Advisory{
			Severity: model.SeverityMedium,
			Message:  "SSLEngine on without SSLCertificateFile",
		})
	}

	h2 := false
	for _, st := range ex.statements {
		if strings.EqualFold(st.Args[0], "Protocols") {
			for _, p := range st.Args[1:] {
				if p == "h2" {
					h2 = true
				}
			}
		}
	}
	if !h2 {
		advisories = append(advisories, Advisory{
			Severity: model.SeverityInfo,
			Message:  "http2 is not enabled (Protocols h2 http/1.1)",
		})
	}

	if st, ok := ex.findDirective("ProxyPass"); ok && !ex.hasDirective("ProxyPreserveHost") {
		advisories = append(advisories, Advisory{
			Severity: model.SeverityLow,
			Line:     st.Line,
			Message:  "ProxyPass without ProxyPreserveHost; the upstream loses the original Host",
		})
	}

	return advisories
}

// splitApache splits Apache configuration into one statement per logical
// line. Lines ending in a backslash continue on the next line, and lines
// starting with '#' are comments.
func splitApache(text string) []statement {
	var (
		stmts    []statement
		pending  strings.Builder
		startAt  int
		physical = strings.Split(text, "\n")
	)

	for i, raw := range physical {
		line := strings.TrimRight(raw, " \t\r")
		if pending.Len() == 0 {
			startAt = i + 1
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
		}
		if strings.HasSuffix(line, "\\") {
			pending.WriteString(strings.TrimSuffix(line, "\\"))
			pending.WriteString(" ")
			continue
		}
		pending.WriteString(line)

		if words := splitWords(pending.String()); len(words) > 0 {
			stmts = append(stmts, statement{Line: startAt, Args: words})
		}
		pending.Reset()
	}
	if pending.Len() > 0 {
		if words := splitWords(pending.String()); len(words) > 0 {
			stmts = append(stmts, statement{Line: startAt, Args: words})
		}
	}
	return stmts
}
