package onionlocation

import (
	"fmt"
	"strings"

	"github.com/nao1215/onionmonitor/internal/model"
)

// probeRequestURI is the request used to show where a directive redirects.
const probeRequestURI = "/search?q=x"

// rule is one independently evaluated clause.
type rule struct {
	id          ClauseID
	description string
	check       func(d Dialect, ex Extraction, directives []HeaderDirective) (bool, string)
}

// rules mirrors Clauses one to one.
var rules = []rule{
	{
		id:          ClauseHeaderDirective,
		description: "declares a header named exactly Onion-Location",
		check:       checkHeaderDirective,
	},
	{
		id:          ClauseAlways,
		description: "sends the header on error responses too",
		check:       checkAlways,
	},
	{
		id:          ClauseRequestURI,
		description: "preserves the request path and query",
		check:       checkRequestURI,
	},
	{
		id:          ClauseScheme,
		description: "value starts with http:// or https:// and a .onion domain",
		check:       checkScheme,
	},
	{
		id:          ClauseOnionAddress,
		description: "literal onion domain is a valid v3 address",
		check:       checkOnionAddress,
	},
	{
		id:          ClauseVariable,
		description: "onion origin is assigned to a variable and interpolated",
		check:       checkVariable,
	},
}

// Validate checks configuration text written in dialect d. Every clause is
// evaluated; the result lists all of them.
func Validate(text string, d Dialect) *Result {
	ex := d.Extract(text)
	directives := ex.onionLocation()

	res := &Result{
		Dialect:    d.Name(),
		Directives: directives,
		Clauses:    make([]ClauseResult, 0, len(rules)),
	}
	if res.Directives == nil {
		res.Directives = []HeaderDirective{}
	}

	for _, r := range rules {
		passed, detail := r.check(d, ex, directives)
		res.Clauses = append(res.Clauses, ClauseResult{
			ID:          r.id,
			Description: r.description,
			Passed:      passed,
			Detail:      detail,
		})
	}

	res.Advisories = append(d.advise(ex), checksumAdvisories(text)...)
	sortAdvisories(res.Advisories)
	return res
}

// RedirectTarget returns the URL a directive redirects to for requestURI,
// e.g. "/search?q=x".
func RedirectTarget(h HeaderDirective, d Dialect, requestURI string) string {
	return strings.ReplaceAll(h.Expanded, d.RequestURIPlaceholder(), requestURI)
}

// noDirective is the detail used when there is nothing to check.
const noDirective = "no Onion-Location header directive found"

func checkHeaderDirective(_ Dialect, _ Extraction, directives []HeaderDirective) (bool, string) {
	if len(directives) == 0 {
		return false, noDirective
	}
	var problems []string
	for _, h := range directives {
		if h.Name != HeaderName {
			problems = append(problems, fmt.Sprintf("line %d: header name %q must be written %q", h.Line, h.Name, HeaderName))
		}
	}
	if len(problems) > 0 {
		return false, strings.Join(problems, "; ")
	}
	return true, fmt.Sprintf("%d directive(s)", len(directives))
}

func checkAlways(_ Dialect, _ Extraction, directives []HeaderDirective) (bool, string) {
	if len(directives) == 0 {
		return false, noDirective
	}
	var problems []string
	for _, h := range directives {
		if !h.Always {
			problems = append(problems, fmt.Sprintf("line %d: not applied to error responses", h.Line))
		}
	}
	if len(problems) > 0 {
		return false, strings.Join(problems, "; ")
	}
	return true, ""
}

func checkRequestURI(d Dialect, _ Extraction, directives []HeaderDirective) (bool, string) {
	if len(directives) == 0 {
		return false, noDirective
	}
	placeholder := d.RequestURIPlaceholder()

	var problems []string
	for _, h := range directives {
		v := h.Expanded
		switch {
		case !strings.Contains(v, placeholder):
			problems = append(problems, fmt.Sprintf("line %d: value does not use %s", h.Line, placeholder))
		case !strings.HasSuffix(v, placeholder) || strings.Count(v, placeholder) != 1:
			problems = append(problems, fmt.Sprintf("line %d: %s must end the value", h.Line, placeholder))
		case hasPath(strings.TrimSuffix(v, placeholder)):
			problems = append(problems, fmt.Sprintf("line %d: value hard-codes a path before %s", h.Line, placeholder))
		}
	}
	if len(problems) > 0 {
		return false, strings.Join(problems, "; ")
	}
	return true, fmt.Sprintf("%s -> %s", probeRequestURI, RedirectTarget(directives[0], d, probeRequestURI))
}

// hasPath reports whether origin carries anything after its host.
func hasPath(origin string) bool {
	if _, rest, ok := strings.Cut(origin, "://"); ok {
		origin = rest
	}
	return strings.ContainsAny(origin, "/?#")
}

func checkScheme(_ Dialect, _ Extraction, directives []HeaderDirective) (bool, string) {
	if len(directives) == 0 {
		return false, noDirective
	}
	var problems []string
	for _, h := range directives {
		rest, ok := cutScheme(h.Expanded)
		if !ok {
			problems = append(problems, fmt.Sprintf("line %d: value must start with http:// or https://", h.Line))
			continue
		}
		host := leadingHost(rest)
		switch {
		case host == "":
			problems = append(problems, fmt.Sprintf("line %d: no literal domain after the scheme", h.Line))
		case !strings.HasSuffix(strings.ToLower(host), model.OnionSuffix):
			problems = append(problems, fmt.Sprintf("line %d: %q is not a .onion domain", h.Line, host))
		}
	}
	if len(problems) > 0 {
		return false, strings.Join(problems, "; ")
	}
	return true, ""
}

func checkOnionAddress(_ Dialect, _ Extraction, directives []HeaderDirective) (bool, string) {
	if len(directives) == 0 {
		return false, noDirective
	}
	var problems, skipped []string
	for _, h := range directives {
		rest, ok := cutScheme(h.Expanded)
		host := leadingHost(rest)
		if !ok || host == "" {
			skipped = append(skipped, fmt.Sprintf("line %d", h.Line))
			continue
		}
		if err := model.ValidateOnionAddress(host); err != nil {
			problems = append(problems, fmt.Sprintf("line %d: %v", h.Line, err))
		}
	}
	if len(problems) > 0 {
		return false, strings.Join(problems, "; ")
	}
	if len(skipped) > 0 {
		return true, "no literal address to validate at " + strings.Join(skipped, ", ")
	}
	return true, ""
}

func checkVariable(_ Dialect, _ Extraction, directives []HeaderDirective) (bool, string) {
	for _, h := range directives {
		for _, a := range h.Assignments {
			if strings.Contains(strings.ToLower(a.Value), model.OnionSuffix) {
				return true, fmt.Sprintf("line %d: %s assigned on line %d", h.Line, a.Name, a.Line)
			}
		}
	}
	return false, "no Onion-Location value interpolates a variable holding the onion address"
}

// cutScheme strips a literal http:// or https:// prefix.
func cutScheme(v string) (string, bool) {
	for _, scheme := range []string{"http://", "https://"} {
		if rest, ok := strings.CutPrefix(v, scheme); ok {
			return rest, true
		}
	}
	return "", false
}

// leadingHost returns the host name at the start of s: the longest prefix
// of letters, digits, dots and hyphens.
func leadingHost(s string) string {
	end := 0
	for end < len(s) {
		c := s[end]
		isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !isAlnum && c != '.' && c != '-' {
			break
		}
		end++
	}
	return s[:end]
}
