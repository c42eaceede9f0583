package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/onionmonitor/internal/database"
	"github.com/nao1215/onionmonitor/internal/directory"
	"github.com/nao1215/onionmonitor/internal/onionlocation"
)

// JSONWriter outputs JSON documents, one per call.
type JSONWriter struct {
	baseWriter

	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent sets the indentation of every document.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint indents with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter. Output is compact unless an indent
// option is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *JSONWriter) encode(v any) error {
	enc := json.NewEncoder(w.output)
	enc.SetIndent(w.indentPrefix, w.indentString)
	return enc.Encode(v)
}

// WriteDirectory implements Writer.
func (w *JSONWriter) WriteDirectory(view *directory.View) error {
	return w.encode(struct {
		*directory.View
		Summary directory.Summary `json:"summary"`
	}{View: view, Summary: directory.Summarize(view.Services)})
}

// complianceMeta is a ValueCheck with its error rendered as text.
type complianceMeta struct {
	Value string `json:"value"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// WriteCompliance implements Writer.
func (w *JSONWriter) WriteCompliance(c *Compliance) error {
	meta := make([]complianceMeta, len(c.Meta))
	for i, m := range c.Meta {
		meta[i] = complianceMeta{Value: m.Value, Valid: m.OK()}
		if m.Error != nil {
			meta[i].Error = m.Error.Error()
		}
	}
	return w.encode(struct {
		Source  string                  `json:"source"`
		OK      bool                    `json:"ok"`
		Results []*onionlocation.Result `json:"results,omitempty"`
		Meta    []complianceMeta        `json:"meta,omitempty"`
	}{Source: c.Source, OK: c.OK(), Results: c.Results, Meta: meta})
}

// WriteAddresses implements Writer.
func (w *JSONWriter) WriteAddresses(checks []AddressCheck) error {
	return w.encode(checks)
}

// WriteChanges implements Writer.
func (w *JSONWriter) WriteChanges(cs *ChangeSet) error {
	if cs.Changes == nil {
		cs.Changes = []directory.Change{}
	}
	return w.encode(cs)
}

// WriteSnapshots implements Writer.
func (w *JSONWriter) WriteSnapshots(metas []database.SnapshotMeta) error {
	return w.encode(metas)
}

// WriteTimeline implements Writer.
func (w *JSONWriter) WriteTimeline(name string, entries []database.StatusEntry) error {
	return w.encode(struct {
		Name    string                 `json:"name"`
		Entries []database.StatusEntry `json:"entries"`
	}{Name: name, Entries: entries})
}
