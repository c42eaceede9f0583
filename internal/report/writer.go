package report

import (
	"io"

	"github.com/nao1215/onionmonitor/internal/database"
	"github.com/nao1215/onionmonitor/internal/directory"
	"github.com/nao1215/onionmonitor/internal/onionlocation"
)

// Writer renders every kind of output the CLI produces.
type Writer interface {
	// WriteDirectory renders a filtered directory with its counts.
	WriteDirectory(view *directory.View) error

	// WriteCompliance renders the validation of one configuration source.
	WriteCompliance(c *Compliance) error

	// WriteAddresses renders onion address checks.
	WriteAddresses(checks []AddressCheck) error

	// WriteChanges renders the differences between two snapshots.
	WriteChanges(cs *ChangeSet) error

	// WriteSnapshots renders recorded snapshot metadata.
	WriteSnapshots(metas []database.SnapshotMeta) error

	// WriteTimeline renders the recorded statuses of one service.
	WriteTimeline(name string, entries []database.StatusEntry) error
}

// Compliance is the outcome of checking one file. A server configuration
// or Markdown document fills Results; an HTML page fills Meta.
type Compliance struct {
	Source  string                     `json:"source"`
	Results []*onionlocation.Result    `json:"results,omitempty"`
	Meta    []onionlocation.ValueCheck `json:"meta,omitempty"`
}

// OK reports whether every result and meta tag is compliant. A source with
// nothing to check is not compliant.
func (c *Compliance) OK() bool {
	if len(c.Results) == 0 && len(c.Meta) == 0 {
		return false
	}
	for _, r := range c.Results {
		if !r.OK() {
			return false
		}
	}
	for _, m := range c.Meta {
		if !m.OK() {
			return false
		}
	}
	return true
}

// AddressCheck is the validation outcome of one onion address argument.
type AddressCheck struct {
	Input   string   `json:"input"`
	Valid   bool     `json:"valid"`
	Reasons []string `json:"reasons,omitempty"`
	// Checksum is "ok", "mismatch" or empty when not verified.
	Checksum string `json:"checksum,omitempty"`
}

// ChangeSet is a diff between two snapshots.
type ChangeSet struct {
	From    string             `json:"from"`
	To      string             `json:"to"`
	Changes []directory.Change `json:"changes"`
}

// Format selects a Writer implementation.
type Format string

// Output formats.
const (
	FormatSimple   Format = "simple"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// FormatFor maps the --json and --markdown flags onto a Format.
func FormatFor(jsonReport, markdownReport bool) Format {
	switch {
	case jsonReport:
		return FormatJSON
	case markdownReport:
		return FormatMarkdown
	default:
		return FormatSimple
	}
}

// New returns the Writer for format writing to output.
func New(format Format, output io.Writer) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output)
	}
}

// baseWriter holds the output destination shared by every writer.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// orDash returns s, or "-" when s is empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// passFail renders a clause outcome.
func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}
