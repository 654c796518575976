package parser

import (
	"errors"
	"fmt"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/dshills/docsync/pkg/types"
)

// ErrParse is returned when a document's content cannot be processed
var ErrParse = errors.New("parse failed")

// Document is the result of parsing one documentation source file
type Document struct {
	Meta    types.Meta // Empty when the document declares no metadata
	Tree    *Tree      // Script nodes already removed
	Scripts int        // Number of script nodes removed
}

// Parser handles structural parsing of markdown documents with embedded
// import/export statements, component tags and expressions
type Parser struct {
	md gmparser.Parser
}

// New creates a new Parser instance
func New() *Parser {
	defaults := gmparser.DefaultBlockParsers()
	blocks := make([]util.PrioritizedValue, 0, len(defaults)+2)
	for _, v := range defaults {
		blocks = append(blocks, util.Prioritized(&startRecorder{v.Value.(gmparser.BlockParser)}, v.Priority))
	}
	blocks = append(blocks,
		// before HTML blocks (900) so component tags never become raw HTML
		util.Prioritized(&startRecorder{&esmParser{}}, 850),
		util.Prioritized(&startRecorder{&flowParser{}}, 860),
	)

	inlines := append(gmparser.DefaultInlineParsers(),
		// after autolinks (300), before raw HTML (400)
		util.Prioritized(&inlineScriptParser{}, 350),
		util.Prioritized(extension.NewStrikethroughParser(), 500),
	)

	transformers := append(gmparser.DefaultParagraphTransformers(),
		util.Prioritized(extension.NewTableParagraphTransformer(), 200),
	)

	return &Parser{
		md: gmparser.NewParser(
			gmparser.WithBlockParsers(blocks...),
			gmparser.WithInlineParsers(inlines...),
			gmparser.WithParagraphTransformers(transformers...),
			gmparser.WithASTTransformers(util.Prioritized(extension.NewTableASTTransformer(), 0)),
		),
	}
}

// Parse builds the document tree, extracts metadata and strips script nodes.
// A document without a metadata declaration is not an error.
func (p *Parser) Parse(source []byte) (*Document, error) {
	starts := make(map[ast.Node]int)
	pc := gmparser.NewContext()
	pc.Set(blockStartsKey, starts)

	root := p.md.Parse(text.NewReader(source), gmparser.WithContext(pc))
	tree := newTree(source, root, starts)

	meta := types.Meta{}
	found := false
	for _, b := range tree.Blocks() {
		if b.Kind() != KindESM {
			continue
		}
		lines := b.Lines()
		m, ok, err := ExtractMeta(lines.Value(source))
		if err != nil {
			line := 1
			if lines.Len() > 0 {
				line = lineNumber(source, lines.At(0).Start)
			}
			return nil, fmt.Errorf("%w: import/export block at line %d: %s", ErrParse, line, describeJSError(err))
		}
		if ok && !found {
			meta, found = m, true
		}
	}

	removed := tree.StripScripts()
	return &Document{Meta: meta, Tree: tree, Scripts: removed}, nil
}

func lineNumber(source []byte, offset int) int {
	line := 1
	for i := 0; i < offset && i < len(source); i++ {
		if source[i] == '\n' {
			line++
		}
	}
	return line
}
