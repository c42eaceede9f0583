// Package report renders directory views, compliance results, address
// checks and snapshot history.
//
// Three formats implement Writer:
//   - SimpleWriter: terminal text with colored status badges (lipgloss)
//   - JSONWriter: JSON for other tools, compact unless an indent is set
//   - MarkdownWriter: GitHub Flavored Markdown with tables and a mermaid
//     pie chart of the status counts
package report
