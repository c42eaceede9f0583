package onionlocation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/onionmonitor/internal/model"
)

// ErrNonCompliant is returned by Result.Err when at least one clause fails.
var ErrNonCompliant = errors.New("non-compliant Onion-Location configuration")

// HeaderName is the exact header name a compliant configuration declares.
const HeaderName = "Onion-Location"

// ClauseID identifies one compliance clause.
type ClauseID string

// Compliance clauses, in evaluation order.
const (
	// ClauseHeaderDirective: a header named exactly Onion-Location is
	// emitted with the server's header primitive.
	ClauseHeaderDirective ClauseID = "header-directive"
	// ClauseAlways: the header is also sent on error responses.
	ClauseAlways ClauseID = "always"
	// ClauseRequestURI: the value ends with the request URI placeholder and
	// hard-codes no path.
	ClauseRequestURI ClauseID = "request-uri"
	// ClauseScheme: the value starts with http:// or https:// followed by a
	// .onion domain.
	ClauseScheme ClauseID = "scheme"
	// ClauseOnionAddress: a literal onion domain is a valid v3 address.
	ClauseOnionAddress ClauseID = "onion-address"
	// ClauseVariable: at least one directive interpolates a variable that
	// holds the onion origin.
	ClauseVariable ClauseID = "variable"
)

// Clauses lists every clause in evaluation order.
var Clauses = []ClauseID{
	ClauseHeaderDirective,
	ClauseAlways,
	ClauseRequestURI,
	ClauseScheme,
	ClauseOnionAddress,
	ClauseVariable,
}

// ClauseResult is the outcome of one clause.
type ClauseResult struct {
	ID          ClauseID `json:"id"`
	Description string   `json:"description"`
	Passed      bool     `json:"passed"`
	Detail      string   `json:"detail,omitempty"`
}

// Advisory is a best-practice finding. Advisories never affect compliance.
type Advisory struct {
	Severity model.Severity `json:"severity"`
	Line     int            `json:"line,omitempty"`
	Message  string         `json:"message"`
}

// Result is the compliance report for one configuration source.
type Result struct {
	// Source names what was validated, e.g. a file path.
	Source string `json:"source,omitempty"`

	// Dialect is the configuration dialect used for parsing.
	Dialect string `json:"dialect"`

	// Directives are the Onion-Location header directives found.
	Directives []HeaderDirective `json:"directives"`

	// Clauses holds one entry per clause in Clauses order.
	Clauses []ClauseResult `json:"clauses"`

	// Advisories are non-blocking findings, most severe first.
	Advisories []Advisory `json:"advisories,omitempty"`
}

// OK reports whether every clause passed.
func (r *Result) OK() bool {
	return len(r.Failed()) == 0
}

// Failed returns the IDs of failed clauses in evaluation order.
func (r *Result) Failed() []ClauseID {
	var failed []ClauseID
	for _, c := range r.Clauses {
		if !c.Passed {
			failed = append(failed, c.ID)
		}
	}
	return failed
}

// Passed reports whether the given clause passed. Unknown clauses report false.
func (r *Result) Passed(id ClauseID) bool {
	for _, c := range r.Clauses {
		if c.ID == id {
			return c.Passed
		}
	}
	return false
}

// Clause returns the result for id.
func (r *Result) Clause(id ClauseID) (ClauseResult, bool) {
	for _, c := range r.Clauses {
		if c.ID == id {
			return c, true
		}
	}
	return ClauseResult{}, false
}

// Err returns nil for a compliant result, or an error wrapping
// ErrNonCompliant that names every failed clause.
func (r *Result) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	ids := make([]string, len(failed))
	for i, id := range failed {
		ids[i] = string(id)
	}
	if r.Source != "" {
		return fmt.Errorf("%w: %s: failed %s", ErrNonCompliant, r.Source, strings.Join(ids, ", "))
	}
	return fmt.Errorf("%w: failed %s", ErrNonCompliant, strings.Join(ids, ", "))
}
