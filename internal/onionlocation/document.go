package onionlocation

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CodeBlock is a fenced code block of a Markdown document.
type CodeBlock struct {
	// Language is the lower-cased info string, e.g. "nginx".
	Language string

	// Content is the block body with a trailing newline.
	Content string

	// Line is the 1-based document line of the first body line.
	Line int
}

// ExtractCodeBlocks returns every fenced code block of src in document order.
func ExtractCodeBlocks(src []byte) []CodeBlock {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var blocks []CodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindFencedCodeBlock {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var body strings.Builder
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			body.Write(seg.Value(src))
		}

		line := 0
		if lines.Len() > 0 {
			line = bytes.Count(src[:lines.At(0).Start], []byte("\n")) + 1
		}
		blocks = append(blocks, CodeBlock{
			Language: strings.ToLower(string(fenced.Language(src))),
			Content:  body.String(),
			Line:     line,
		})
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

// ValidateMarkdown validates the server configuration examples of a
// Markdown document. Blocks are grouped by dialect (nginx, apache) and each
// group is validated as one configuration, so an assignment in one block
// serves a header in a later block. Reported lines are document lines.
// Dialects without any block produce no result.
func ValidateMarkdown(src []byte) []*Result {
	totalLines := bytes.Count(src, []byte("\n")) + 1
	blocks := ExtractCodeBlocks(src)

	var results []*Result
	for _, d := range []Dialect{Nginx, Apache} {
		layout := make([]string, totalLines)
		found := false
		for _, b := range blocks {
			if !blockDialectIs(b.Language, d) || b.Line == 0 {
				continue
			}
			found = true
			for i, l := range strings.Split(strings.TrimSuffix(b.Content, "\n"), "\n") {
				if idx := b.Line - 1 + i; idx < len(layout) {
					layout[idx] = l
				}
			}
		}
		if found {
			results = append(results, Validate(strings.Join(layout, "\n"), d))
		}
	}
	return results
}

// blockDialectIs reports whether a code block info string belongs to d.
func blockDialectIs(lang string, d Dialect) bool {
	if lang == "" {
		return false
	}
	parsed, err := ParseDialect(lang)
	return err == nil && parsed.Name() == d.Name()
}
