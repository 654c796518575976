package parser

import (
	"bytes"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
	"github.com/yuin/goldmark/ast"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var blockStartsKey = gmparser.NewContextKey()

// startRecorder remembers where each top-level block was opened. Fenced
// code and thematic breaks carry no line segment for their first line, so
// this is the only reliable source of their start offset.
type startRecorder struct {
	gmparser.BlockParser
}

func (r *startRecorder) Open(parent ast.Node, reader text.Reader, pc gmparser.Context) (ast.Node, gmparser.State) {
	_, seg := reader.PeekLine()
	node, state := r.BlockParser.Open(parent, reader, pc)
	if node != nil && parent.Kind() == ast.KindDocument {
		if starts, ok := pc.Get(blockStartsKey).(map[ast.Node]int); ok {
			starts[node] = seg.Start
		}
	}
	return node, state
}

var (
	importKeyword = []byte("import")
	exportKeyword = []byte("export")
)

// esmParser opens a block of import/export statements at the top level.
// The block ends at the first blank line unless the statements so far stop
// short of the end of input, so object literals may contain blank lines.
type esmParser struct{}

func (b *esmParser) Trigger() []byte {
	return []byte{'i', 'e'}
}

func (b *esmParser) Open(parent ast.Node, reader text.Reader, pc gmparser.Context) (ast.Node, gmparser.State) {
	if parent.Kind() != ast.KindDocument || pc.BlockIndent() != 0 {
		return nil, gmparser.NoChildren
	}
	line, segment := reader.PeekLine()
	if !isESMStart(line) {
		return nil, gmparser.NoChildren
	}
	node := &ESM{}
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - util.TrimRightSpaceLength(line))
	return node, gmparser.NoChildren
}

func isESMStart(line []byte) bool {
	for _, kw := range [][]byte{importKeyword, exportKeyword} {
		if !bytes.HasPrefix(line, kw) || len(line) == len(kw) {
			continue
		}
		switch line[len(kw)] {
		case ' ', '\t', '{', '*':
			return true
		}
	}
	return false
}

func (b *esmParser) Continue(node ast.Node, reader text.Reader, pc gmparser.Context) gmparser.State {
	line, segment := reader.PeekLine()
	if line == nil {
		return gmparser.Close
	}
	if util.IsBlank(line) && !incompleteModule(node.Lines().Value(reader.Source())) {
		return gmparser.Close
	}
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - util.TrimRightSpaceLength(line))
	return gmparser.Continue | gmparser.NoChildren
}

// incompleteModule reports whether src fails to parse only because input
// ran out. Other syntax errors surface later from ExtractMeta.
func incompleteModule(src []byte) bool {
	_, err := js.Parse(parse.NewInputBytes(src), js.Options{})
	return err != nil && strings.Contains(err.Error(), "EOF")
}

func (b *esmParser) Close(node ast.Node, reader text.Reader, pc gmparser.Context) {}

func (b *esmParser) CanInterruptParagraph() bool { return false }

func (b *esmParser) CanAcceptIndentedLine() bool { return false }

// flowParser opens a block for lines holding only component tags and braced
// expressions. Prose after a tag on the same line leaves the line to the
// paragraph parser, where the inline parser picks the tags out.
type flowParser struct{}

func (b *flowParser) Trigger() []byte {
	return []byte{'<', '{'}
}

func (b *flowParser) Open(parent ast.Node, reader text.Reader, pc gmparser.Context) (ast.Node, gmparser.State) {
	pos := pc.BlockOffset()
	if pos < 0 {
		return nil, gmparser.NoChildren
	}
	line, segment := reader.PeekLine()
	rest := line[pos:]
	kind := KindJSXFlow
	if rest[0] == '{' {
		kind = KindFlowExpression
	} else if !isTagStart(rest) {
		return nil, gmparser.NoChildren
	}
	var pending *scanner
	if !scanFlow(rest, &pending) {
		return nil, gmparser.NoChildren
	}
	node := &FlowScript{kind: kind, pending: pending}
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - util.TrimRightSpaceLength(line))
	return node, gmparser.NoChildren
}

func (b *flowParser) Continue(node ast.Node, reader text.Reader, pc gmparser.Context) gmparser.State {
	n := node.(*FlowScript)
	if n.pending == nil {
		return gmparser.Close
	}
	line, segment := reader.PeekLine()
	if line == nil {
		return gmparser.Close
	}
	scanFlow(line, &n.pending)
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - util.TrimRightSpaceLength(line))
	return gmparser.Continue | gmparser.NoChildren
}

func (b *flowParser) Close(node ast.Node, reader text.Reader, pc gmparser.Context) {
	node.(*FlowScript).pending = nil
}

func (b *flowParser) CanInterruptParagraph() bool { return true }

func (b *flowParser) CanAcceptIndentedLine() bool { return false }
