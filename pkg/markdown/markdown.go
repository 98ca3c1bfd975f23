// Package markdown finds JSON code blocks in Markdown documents so they can be
// repaired without touching the prose around them.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/jsoncomma/pkg/fix"
	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

// Languages are the fence info words treated as JSON.
//
//nolint:gochecknoglobals // Read-only lookup table.
var Languages = map[string]bool{
	"json":  true,
	"jsonc": true,
	"json5": true,
}

// Block is one JSON fenced code block.
type Block struct {
	// Lang is the first word of the info string, lower-cased.
	Lang string

	// Body is the byte range of the code inside the fences.
	Body textbuf.Range
}

// Blocks returns the JSON fenced code blocks of content in document order.
// Blocks whose lines are not stored contiguously, such as fences indented
// inside list items or block quotes, are skipped: their text cannot be edited
// as one span.
func Blocks(content []byte) []Block {
	doc := goldmark.New().Parser().Parse(text.NewReader(content), parser.WithContext(parser.NewContext()))

	var blocks []Block
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		lang := infoLanguage(fence, content)
		if !Languages[lang] {
			return ast.WalkSkipChildren, nil
		}
		if body, ok := contiguousBody(fence); ok {
			blocks = append(blocks, Block{Lang: lang, Body: body})
		}
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

func infoLanguage(fence *ast.FencedCodeBlock, content []byte) string {
	if fence.Info == nil {
		return ""
	}
	fields := strings.Fields(string(fence.Info.Segment.Value(content)))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

func contiguousBody(fence *ast.FencedCodeBlock) (textbuf.Range, bool) {
	lines := fence.Lines()
	if lines.Len() == 0 {
		return textbuf.Range{}, false
	}

	body := textbuf.Range{Begin: lines.At(0).Start, End: lines.At(0).Start}
	for idx := range lines.Len() {
		seg := lines.At(idx)
		if seg.Padding > 0 || seg.Start != body.End {
			return textbuf.Range{}, false
		}
		body.End = seg.Stop
	}
	return body, true
}

// RepairFunc repairs a buffer in place and returns the edits it applied, in
// application order.
type RepairFunc func(buf *textbuf.Buffer) ([]fix.TextEdit, error)

// Repair runs repair on every JSON block of content and splices the results
// back. The returned edits are in application order against the whole
// document.
func Repair(content []byte, repair RepairFunc) ([]byte, []fix.TextEdit, error) {
	blocks := Blocks(content)
	if len(blocks) == 0 {
		return content, nil, nil
	}

	var (
		out   bytes.Buffer
		edits []fix.TextEdit
		shift int
		prev  int
	)
	out.Grow(len(content))

	for _, block := range blocks {
		buf := textbuf.New(content[block.Body.Begin:block.Body.End])
		blockEdits, err := repair(buf)
		if err != nil {
			return nil, nil, err
		}

		base := block.Body.Begin + shift
		for _, edit := range blockEdits {
			edit.StartOffset += base
			edit.EndOffset += base
			edits = append(edits, edit)
			shift += edit.Delta()
		}

		out.Write(content[prev:block.Body.Begin])
		out.Write(buf.Bytes())
		prev = block.Body.End
	}
	out.Write(content[prev:])

	return out.Bytes(), edits, nil
}
