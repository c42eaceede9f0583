package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nao1215/onionmonitor/internal/database"
	"github.com/nao1215/onionmonitor/internal/directory"
	"github.com/nao1215/onionmonitor/internal/model"
	"github.com/nao1215/onionmonitor/internal/onionlocation"
)

// ruleWidth is the width of section rules.
const ruleWidth = 70

// badgeColors maps status colors onto ANSI 256 colors.
var badgeColors = map[model.Color]lipgloss.Color{
	model.ColorGreen:  lipgloss.Color("2"),
	model.ColorRed:    lipgloss.Color("1"),
	model.ColorOrange: lipgloss.Color("208"),
	model.ColorGray:   lipgloss.Color("245"),
}

// SimpleWriter outputs human-readable text for the terminal. Colors are
// only emitted when the output is a color-capable terminal.
type SimpleWriter struct {
	baseWriter

	renderer *lipgloss.Renderer

	// quiet drops descriptions and advisories.
	quiet bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithQuiet omits descriptions and advisories.
func WithQuiet(quiet bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.quiet = quiet
	}
}

// WithRenderer sets the lipgloss renderer, e.g. one with a forced color
// profile.
func WithRenderer(r *lipgloss.Renderer) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.renderer = r
	}
}

// NewSimpleWriter creates a SimpleWriter writing to output.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		renderer:   lipgloss.NewRenderer(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// badge renders the label of a status in its color.
func (w *SimpleWriter) badge(s model.Status) string {
	class := model.Classify(s)
	return w.renderer.NewStyle().
		Foreground(badgeColors[class.Color()]).
		Bold(true).
		Render("[" + class.Label() + "]")
}

func (w *SimpleWriter) section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(w.renderer.NewStyle().Bold(true).Render(title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) flush(sb *strings.Builder) error {
	_, err := io.WriteString(w.output, sb.String())
	return err
}

// WriteDirectory implements Writer.
func (w *SimpleWriter) WriteDirectory(view *directory.View) error {
	var sb strings.Builder

	w.section(&sb, "ONION SERVICES")
	if view.Query != "" {
		fmt.Fprintf(&sb, "Search: %q\n", view.Query)
	}
	fmt.Fprintf(&sb, "Filter: %s\n", view.Filter)
	for _, tag := range directory.FilterTags {
		fmt.Fprintf(&sb, "  %-8s %d\n", tag, view.Counts[tag])
	}
	sb.WriteString("\n")

	if len(view.Services) == 0 {
		sb.WriteString("  No services match\n\n")
		return w.flush(&sb)
	}

	for _, s := range view.Services {
		fmt.Fprintf(&sb, "%s %s (%s)\n", w.badge(s.Status), s.Title, s.Name)
		fmt.Fprintf(&sb, "    %s\n", s.OnionAddress)
		if w.quiet {
			continue
		}
		if desc := s.DescriptionText(); desc != "" {
			fmt.Fprintf(&sb, "    %s\n", desc)
		}
		if cat := s.CategoryText(); cat != "" {
			fmt.Fprintf(&sb, "    Category: %s\n", cat)
		}
		if len(s.Tags) > 0 {
			fmt.Fprintf(&sb, "    Tags: %s\n", strings.Join(s.Tags, ", "))
		}
		if s.Checked() {
			fmt.Fprintf(&sb, "    Last checked: %s (previously %s)\n",
				s.LastChecked.Format("2006-01-02 15:04:05 MST"), model.LabelFor(s.PrevStatus))
		} else {
			sb.WriteString("    Never checked\n")
		}
	}
	sb.WriteString("\n")

	sum := directory.Summarize(view.Services)
	fmt.Fprintf(&sb, "Showing %d of %d: %d online, %d offline, %d error, %d unknown\n",
		sum.Total, view.Counts[directory.FilterAll], sum.Online, sum.Offline, sum.Errors, sum.Unknown)

	return w.flush(&sb)
}

// WriteCompliance implements Writer.
func (w *SimpleWriter) WriteCompliance(c *Compliance) error {
	var sb strings.Builder

	w.section(&sb, "ONION-LOCATION CHECK: "+c.Source)

	for _, r := range c.Results {
		fmt.Fprintf(&sb, "Dialect: %s, %d Onion-Location directive(s)\n\n", r.Dialect, len(r.Directives))
		for _, cl := range r.Clauses {
			fmt.Fprintf(&sb, "  [%s] %-16s %s\n", w.mark(cl.Passed), cl.ID, cl.Description)
			if cl.Detail != "" && (!cl.Passed || !w.quiet) {
				fmt.Fprintf(&sb, "         %s\n", cl.Detail)
			}
		}
		sb.WriteString("\n")

		if len(r.Advisories) > 0 && !w.quiet {
			sb.WriteString("  Advisories:\n")
			for _, a := range r.Advisories {
				if a.Line > 0 {
					fmt.Fprintf(&sb, "    %-6s line %d: %s\n", a.Severity, a.Line, a.Message)
				} else {
					fmt.Fprintf(&sb, "    %-6s %s\n", a.Severity, a.Message)
				}
			}
			sb.WriteString("\n")
		}
	}

	for _, m := range c.Meta {
		fmt.Fprintf(&sb, "  [%s] <meta http-equiv=\"%s\" content=%q>\n", w.mark(m.OK()), onionlocation.HeaderName, m.Value)
		if m.Error != nil {
			fmt.Fprintf(&sb, "         %v\n", m.Error)
		}
	}
	if len(c.Results) == 0 && len(c.Meta) == 0 {
		sb.WriteString("  Nothing to check: no Onion-Location configuration found\n")
	}

	if c.OK() {
		sb.WriteString("\nResult: compliant\n")
	} else {
		sb.WriteString("\nResult: NOT compliant\n")
	}
	return w.flush(&sb)
}

// mark renders a pass or fail marker.
func (w *SimpleWriter) mark(ok bool) string {
	color := badgeColors[model.ColorRed]
	if ok {
		color = badgeColors[model.ColorGreen]
	}
	return w.renderer.NewStyle().Foreground(color).Render(passFail(ok))
}

// WriteAddresses implements Writer.
func (w *SimpleWriter) WriteAddresses(checks []AddressCheck) error {
	var sb strings.Builder
	for _, c := range checks {
		status := "valid"
		if !c.Valid {
			status = "invalid"
		}
		fmt.Fprintf(&sb, "[%s] %s: %s", w.mark(c.Valid), c.Input, status)
		if c.Checksum != "" {
			fmt.Fprintf(&sb, " (checksum %s)", c.Checksum)
		}
		sb.WriteString("\n")
		for _, r := range c.Reasons {
			fmt.Fprintf(&sb, "       - %s\n", r)
		}
	}
	return w.flush(&sb)
}

// WriteChanges implements Writer.
func (w *SimpleWriter) WriteChanges(cs *ChangeSet) error {
	var sb strings.Builder

	w.section(&sb, fmt.Sprintf("CHANGES %s -> %s", orDash(cs.From), orDash(cs.To)))
	if len(cs.Changes) == 0 {
		sb.WriteString("  No changes\n")
		return w.flush(&sb)
	}
	for _, c := range cs.Changes {
		switch c.Kind {
		case directory.ChangeAdded:
			fmt.Fprintf(&sb, "  + %s (%s) %s\n", c.Title, c.Name, w.badge(c.To))
		case directory.ChangeRemoved:
			fmt.Fprintf(&sb, "  - %s (%s) %s\n", c.Title, c.Name, w.badge(c.From))
		default:
			fmt.Fprintf(&sb, "  ~ %s (%s) %s -> %s\n", c.Title, c.Name, w.badge(c.From), w.badge(c.To))
		}
	}
	return w.flush(&sb)
}

// WriteSnapshots implements Writer.
func (w *SimpleWriter) WriteSnapshots(metas []database.SnapshotMeta) error {
	var sb strings.Builder

	w.section(&sb, "RECORDED SNAPSHOTS")
	if len(metas) == 0 {
		sb.WriteString("  No snapshots recorded\n")
		return w.flush(&sb)
	}
	for _, m := range metas {
		fmt.Fprintf(&sb, "%s  %s  %3d services (%d online, %d offline, %d error, %d unknown)  %s\n",
			m.ID, m.TakenAt.Local().Format("2006-01-02 15:04"), m.ServiceCount,
			m.Summary.Online, m.Summary.Offline, m.Summary.Errors, m.Summary.Unknown, m.Source)
	}
	return w.flush(&sb)
}

// WriteTimeline implements Writer.
func (w *SimpleWriter) WriteTimeline(name string, entries []database.StatusEntry) error {
	var sb strings.Builder

	w.section(&sb, "STATUS HISTORY: "+name)
	if len(entries) == 0 {
		sb.WriteString("  No recorded status\n")
		return w.flush(&sb)
	}
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s  %s  %s\n", e.TakenAt.Local().Format("2006-01-02 15:04"), w.badge(e.Status), e.SnapshotID)
	}
	return w.flush(&sb)
}
