package parser

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Tree is a parsed document whose top-level blocks render back to their
// own markdown source. Rendering slices the source, so code fences come
// out byte for byte.
type Tree struct {
	source []byte
	root   ast.Node
	spans  map[ast.Node]text.Segment // top-level blocks, fixed before stripping
	cuts   []text.Segment            // removed script content, sorted by start
}

func newTree(source []byte, root ast.Node, starts map[ast.Node]int) *Tree {
	t := &Tree{
		source: source,
		root:   root,
		spans:  make(map[ast.Node]text.Segment),
	}

	var blocks []ast.Node
	for c := root.FirstChild(); c != nil; c = c.NextSibling() {
		blocks = append(blocks, c)
	}

	begins := make([]int, len(blocks))
	prev := 0
	for i, b := range blocks {
		start := -1
		if v, ok := starts[b]; ok {
			start = lineStart(source, v)
		}
		if v := firstSegment(b); v >= 0 {
			if v = lineStart(source, v); start < 0 || v < start {
				start = v
			}
		}
		if start < prev {
			start = prev
		}
		begins[i] = start
		prev = start
	}
	for i, b := range blocks {
		end := len(source)
		if i+1 < len(blocks) {
			end = begins[i+1]
		}
		t.spans[b] = text.NewSegment(begins[i], end)
	}
	return t
}

func lineStart(source []byte, pos int) int {
	if pos > len(source) {
		pos = len(source)
	}
	for pos > 0 && source[pos-1] != '\n' {
		pos--
	}
	return pos
}

// firstSegment returns the offset of the first source text under n, or -1
func firstSegment(n ast.Node) int {
	pos := -1
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if c.Type() == ast.TypeBlock && c.Lines().Len() > 0 {
			pos = c.Lines().At(0).Start
			return ast.WalkStop, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			pos = v.Segment.Start
			return ast.WalkStop, nil
		case *InlineScript:
			pos = v.Segment.Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return pos
}

// Source returns the raw document text
func (t *Tree) Source() []byte {
	return t.source
}

// Root returns the document node
func (t *Tree) Root() ast.Node {
	return t.root
}

// Blocks returns the top-level nodes in document order
func (t *Tree) Blocks() []ast.Node {
	var blocks []ast.Node
	for c := t.root.FirstChild(); c != nil; c = c.NextSibling() {
		blocks = append(blocks, c)
	}
	return blocks
}

// StripScripts removes every script node and returns how many were removed.
// Paragraphs left without prose are removed as well.
func (t *Tree) StripScripts() int {
	var scripts []ast.Node
	_ = ast.Walk(t.root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if IsScript(n) {
			scripts = append(scripts, n)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, n := range scripts {
		t.cuts = append(t.cuts, t.extent(n)...)
		parent := n.Parent()
		parent.RemoveChild(parent, n)
		if isEmptyParagraph(parent, t.source) && parent.Parent() != nil {
			parent.Parent().RemoveChild(parent.Parent(), parent)
		}
	}
	sort.Slice(t.cuts, func(i, j int) bool {
		return t.cuts[i].Start < t.cuts[j].Start
	})
	return len(scripts)
}

// extent returns the source ranges occupied by a script node
func (t *Tree) extent(n ast.Node) []text.Segment {
	if n.Parent() == t.root {
		return []text.Segment{t.spans[n]}
	}
	if in, ok := n.(*InlineScript); ok {
		return []text.Segment{in.Segment}
	}
	lines := n.Lines()
	segs := make([]text.Segment, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		// take the indentation too when the construct fills the line
		start := lineStart(t.source, seg.Start)
		if strings.TrimSpace(string(t.source[start:seg.Start])) == "" {
			seg = seg.WithStart(start)
		}
		segs = append(segs, seg)
	}
	return segs
}

func isEmptyParagraph(n ast.Node, source []byte) bool {
	if n.Kind() != ast.KindParagraph && n.Kind() != ast.KindTextBlock {
		return false
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		txt, ok := c.(*ast.Text)
		if !ok || strings.TrimSpace(string(txt.Segment.Value(source))) != "" {
			return false
		}
	}
	return true
}

// Render returns the markdown source of the given top-level blocks with
// script content removed, separated by blank lines.
func (t *Tree) Render(blocks ...ast.Node) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if s := t.renderBlock(b); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (t *Tree) renderBlock(b ast.Node) string {
	span, ok := t.spans[b]
	if !ok {
		return ""
	}
	var sb strings.Builder
	pos := span.Start
	for _, c := range t.cuts {
		if c.Stop <= pos || c.Start >= span.Stop {
			continue
		}
		if c.Start > pos {
			sb.Write(t.source[pos:c.Start])
		}
		pos = c.Stop
	}
	if pos < span.Stop {
		sb.Write(t.source[pos:span.Stop])
	}
	return strings.TrimRight(strings.TrimLeft(sb.String(), "\r\n"), " \t\r\n")
}

// HeadingLevel returns the level of a heading node, or 0 for other nodes
func HeadingLevel(n ast.Node) int {
	if h, ok := n.(*ast.Heading); ok {
		return h.Level
	}
	return 0
}

// PlainText returns the visible text of n with markup dropped
func (t *Tree) PlainText(n ast.Node) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(t.source))
			if v.SoftLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(v.Value)
		case *ast.AutoLink:
			sb.Write(v.Label(t.source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}
