package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/onionmonitor/internal/database"
	"github.com/nao1215/onionmonitor/internal/directory"
	"github.com/nao1215/onionmonitor/internal/model"
)

// statusEmoji marks a status color in tables.
var statusEmoji = map[model.Color]string{
	model.ColorGreen:  "🟢",
	model.ColorRed:    "🔴",
	model.ColorOrange: "🟠",
	model.ColorGray:   "⚪",
}

// MarkdownWriter outputs GitHub-flavored Markdown for sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

func statusCell(s model.Status) string {
	class := model.Classify(s)
	return statusEmoji[class.Color()] + " " + class.Label()
}

// code wraps s in backticks, or returns "-" when empty.
func code(s string) string {
	if s == "" {
		return "-"
	}
	return "`" + s + "`"
}

// WriteDirectory implements Writer.
func (w *MarkdownWriter) WriteDirectory(view *directory.View) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Onion Services")
	md.PlainText("")

	rows := make([][]string, 0, len(directory.FilterTags)+1)
	if view.Query != "" {
		rows = append(rows, []string{"Search", code(view.Query)})
	}
	rows = append(rows, []string{"Filter", string(view.Filter)})
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeCounts(md, view.Counts)

	md.H2("Services")
	md.PlainText("")
	if len(view.Services) == 0 {
		md.PlainText("No services match.")
		md.PlainText("")
		return md.Build()
	}

	serviceRows := make([][]string, len(view.Services))
	for i, s := range view.Services {
		checked := "never"
		if s.Checked() {
			checked = s.LastChecked.Format("2006-01-02 15:04:05 MST")
		}
		serviceRows[i] = []string{
			s.Title,
			code(s.OnionAddress),
			statusCell(s.Status),
			model.LabelFor(s.PrevStatus),
			checked,
			orDash(s.CategoryText()),
			orDash(strings.Join(s.Tags, ", ")),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Title", "Address", "Status", "Previous", "Last Checked", "Category", "Tags"},
		Rows:   serviceRows,
	})
	md.PlainText("")

	for _, s := range view.Services {
		if desc := s.DescriptionText(); desc != "" {
			md.Details(s.Title, desc)
		}
	}

	return md.Build()
}

// writeCounts writes the per-filter counts and a status distribution chart.
func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, counts map[directory.FilterTag]int) {
	md.H2("Counts")
	md.PlainText("")

	rows := make([][]string, len(directory.FilterTags))
	for i, tag := range directory.FilterTags {
		rows[i] = []string{string(tag), strconv.Itoa(counts[tag])}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Filter", "Services"},
		Rows:   rows,
	})
	md.PlainText("")

	if counts[directory.FilterAll] == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Status Distribution"),
		piechart.WithShowData(true),
	)
	for _, tag := range directory.FilterTags[1:] {
		if n := counts[tag]; n > 0 {
			chart.LabelAndIntValue(string(tag), uint64(n))
		}
	}
	// Error and unrecognised statuses match none of the status filters.
	other := counts[directory.FilterAll] - counts[directory.FilterOnline] -
		counts[directory.FilterOffline] - counts[directory.FilterUnknown]
	if other > 0 {
		chart.LabelAndIntValue("other", uint64(other))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// WriteCompliance implements Writer.
func (w *MarkdownWriter) WriteCompliance(c *Compliance) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Onion-Location Check")
	md.PlainText("")
	md.PlainTextf("Source: %s", code(c.Source))
	md.PlainText("")

	if c.OK() {
		md.Tip("The configuration advertises the onion service correctly.")
	} else {
		md.Cautionf("The configuration is not compliant.")
	}
	md.PlainText("")

	for _, r := range c.Results {
		md.H2(fmt.Sprintf("%s (%d directive(s))", r.Dialect, len(r.Directives)))
		md.PlainText("")

		rows := make([][]string, len(r.Clauses))
		for i, cl := range r.Clauses {
			rows[i] = []string{passFail(cl.Passed), string(cl.ID), cl.Description, orDash(cl.Detail)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Result", "Clause", "Description", "Detail"},
			Rows:   rows,
		})
		md.PlainText("")

		if len(r.Advisories) == 0 {
			continue
		}
		md.H3("Advisories")
		md.PlainText("")
		advRows := make([][]string, len(r.Advisories))
		for i, a := range r.Advisories {
			line := "-"
			if a.Line > 0 {
				line = strconv.Itoa(a.Line)
			}
			advRows[i] = []string{a.Severity.String(), line, a.Message}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Severity", "Line", "Message"},
			Rows:   advRows,
		})
		md.PlainText("")
	}

	if len(c.Meta) > 0 {
		md.H2("HTML meta tags")
		md.PlainText("")
		rows := make([][]string, len(c.Meta))
		for i, m := range c.Meta {
			reason := "-"
			if m.Error != nil {
				reason = m.Error.Error()
			}
			rows[i] = []string{passFail(m.OK()), code(m.Value), reason}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Result", "Content", "Reason"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(c.Results) == 0 && len(c.Meta) == 0 {
		md.Warningf("No Onion-Location configuration found in %s.", c.Source)
		md.PlainText("")
	}

	return md.Build()
}

// WriteAddresses implements Writer.
func (w *MarkdownWriter) WriteAddresses(checks []AddressCheck) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Onion Address Check")
	md.PlainText("")

	rows := make([][]string, len(checks))
	for i, c := range checks {
		rows[i] = []string{
			code(c.Input),
			passFail(c.Valid),
			orDash(c.Checksum),
			orDash(strings.Join(c.Reasons, "; ")),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Address", "Result", "Checksum", "Reasons"},
		Rows:   rows,
	})
	md.PlainText("")

	return md.Build()
}

// WriteChanges implements Writer.
func (w *MarkdownWriter) WriteChanges(cs *ChangeSet) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Status Changes")
	md.PlainText("")
	md.PlainTextf("From %s to %s", code(cs.From), code(cs.To))
	md.PlainText("")

	if len(cs.Changes) == 0 {
		md.Note("No changes between the two snapshots.")
		md.PlainText("")
		return md.Build()
	}

	rows := make([][]string, len(cs.Changes))
	for i, c := range cs.Changes {
		from, to := "-", "-"
		if c.Kind != directory.ChangeAdded {
			from = statusCell(c.From)
		}
		if c.Kind != directory.ChangeRemoved {
			to = statusCell(c.To)
		}
		rows[i] = []string{c.Title, code(c.Name), string(c.Kind), from, to}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Title", "Name", "Change", "From", "To"},
		Rows:   rows,
	})
	md.PlainText("")

	return md.Build()
}

// WriteSnapshots implements Writer.
func (w *MarkdownWriter) WriteSnapshots(metas []database.SnapshotMeta) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Recorded Snapshots")
	md.PlainText("")

	if len(metas) == 0 {
		md.Note("No snapshots recorded yet.")
		md.PlainText("")
		return md.Build()
	}

	rows := make([][]string, len(metas))
	for i, m := range metas {
		rows[i] = []string{
			code(m.ID),
			m.TakenAt.Format("2006-01-02 15:04:05 MST"),
			strconv.Itoa(m.ServiceCount),
			strconv.Itoa(m.Summary.Online),
			strconv.Itoa(m.Summary.Offline),
			strconv.Itoa(m.Summary.Errors),
			strconv.Itoa(m.Summary.Unknown),
			orDash(m.Source),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Taken", "Services", "Online", "Offline", "Error", "Unknown", "Source"},
		Rows:   rows,
	})
	md.PlainText("")

	return md.Build()
}

// WriteTimeline implements Writer.
func (w *MarkdownWriter) WriteTimeline(name string, entries []database.StatusEntry) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Status History")
	md.PlainText("")
	md.PlainTextf("Service: %s", code(name))
	md.PlainText("")

	if len(entries) == 0 {
		md.Note("No recorded status for this service.")
		md.PlainText("")
		return md.Build()
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.TakenAt.Format("2006-01-02 15:04:05 MST"), statusCell(e.Status), code(e.SnapshotID)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Taken", "Status", "Snapshot"},
		Rows:   rows,
	})
	md.PlainText("")

	return md.Build()
}
