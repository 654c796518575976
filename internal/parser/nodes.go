package parser

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Node kinds for embedded script content. Every other kind is prose.
var (
	KindESM            = ast.NewNodeKind("ESM")
	KindJSXFlow        = ast.NewNodeKind("JSXFlowElement")
	KindFlowExpression = ast.NewNodeKind("FlowExpression")
	KindJSXText        = ast.NewNodeKind("JSXTextElement")
	KindTextExpression = ast.NewNodeKind("TextExpression")
)

// IsScript reports whether n is executable or embedded script content:
// import/export statements, component invocations or expressions.
func IsScript(n ast.Node) bool {
	switch n.Kind() {
	case KindESM, KindJSXFlow, KindFlowExpression, KindJSXText, KindTextExpression:
		return true
	}
	return false
}

// ESM is a top-level block of import/export statements
type ESM struct {
	ast.BaseBlock
}

func (n *ESM) Kind() ast.NodeKind { return KindESM }
func (n *ESM) IsRaw() bool        { return true }
func (n *ESM) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// FlowScript is a block made only of component tags and expressions
type FlowScript struct {
	ast.BaseBlock
	kind    ast.NodeKind
	pending *scanner // non-nil while a tag or expression spans lines
}

func (n *FlowScript) Kind() ast.NodeKind { return n.kind }
func (n *FlowScript) IsRaw() bool        { return true }
func (n *FlowScript) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// InlineScript is a component tag or expression inside prose
type InlineScript struct {
	ast.BaseInline
	Segment text.Segment
	kind    ast.NodeKind
}

func (n *InlineScript) Kind() ast.NodeKind { return n.kind }
func (n *InlineScript) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Value": string(n.Segment.Value(source)),
	}, nil)
}
