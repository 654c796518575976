package parser

import (
	"github.com/yuin/goldmark/ast"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// inlineScriptParser picks component tags and braced expressions out of
// prose. Both must close on the line they start on.
type inlineScriptParser struct{}

func (s *inlineScriptParser) Trigger() []byte {
	return []byte{'<', '{'}
}

func (s *inlineScriptParser) Parse(parent ast.Node, block text.Reader, pc gmparser.Context) ast.Node {
	line, segment := block.PeekLine()
	var sc *scanner
	kind := KindTextExpression
	switch {
	case isTagStart(line):
		sc = &scanner{tag: true}
		kind = KindJSXText
	case len(line) > 0 && line[0] == '{':
		sc = &scanner{}
	default:
		return nil
	}
	n := sc.scan(line)
	if n < 0 {
		return nil
	}
	block.Advance(n)
	return &InlineScript{
		Segment: text.NewSegment(segment.Start, segment.Start+n),
		kind:    kind,
	}
}
