package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"

	"github.com/dshills/docsync/pkg/types"
)

func TestNew(t *testing.T) {
	p := New()
	assert.NotNil(t, p)
	assert.NotNil(t, p.md)
}

func kinds(blocks []ast.Node) []ast.NodeKind {
	out := make([]ast.NodeKind, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.Kind())
	}
	return out
}

func TestParse_Metadata(t *testing.T) {
	src := "export const meta = {\n  title: \"Foo\",\n  draft: true,\n}\n\n# Intro\n\nHello.\n"

	doc, err := New().Parse([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, types.Meta{"title": "Foo", "draft": true}, doc.Meta)
	assert.Equal(t, 1, doc.Scripts)
	blocks := doc.Tree.Blocks()
	assert.Equal(t, []ast.NodeKind{ast.KindHeading, ast.KindParagraph}, kinds(blocks))
	assert.Equal(t, "# Intro\n\nHello.", doc.Tree.Render(blocks...))
}

func TestParse_NoMetadata(t *testing.T) {
	doc, err := New().Parse([]byte("# Plain\n\nJust markdown.\n"))
	require.NoError(t, err)
	assert.NotNil(t, doc.Meta)
	assert.Empty(t, doc.Meta)
	assert.Equal(t, 0, doc.Scripts)
}

func TestParse_MetadataWithBlankLineInside(t *testing.T) {
	src := "import { X } from 'x'\n\nexport const meta = {\n  title: 'Title',\n\n  description: \"Multi\",\n}\n\n# H\n"

	doc, err := New().Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, types.Meta{"title": "Title", "description": "Multi"}, doc.Meta)
	assert.Equal(t, []ast.NodeKind{ast.KindHeading}, kinds(doc.Tree.Blocks()))
}

func TestParse_InvalidModule(t *testing.T) {
	_, err := New().Parse([]byte("export const meta = {title: }\n\n# Hi\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestParse_CodeFenceUntouched(t *testing.T) {
	src := "import { Tabs } from './tabs'\n\n# Usage\n\n<Tabs>\n\n~~~jsx\n<Tabs>{value}</Tabs>\nexport const x = 1\n~~~\n\n</Tabs>\n"

	doc, err := New().Parse([]byte(src))
	require.NoError(t, err)

	blocks := doc.Tree.Blocks()
	assert.Equal(t, []ast.NodeKind{ast.KindHeading, ast.KindFencedCodeBlock}, kinds(blocks))
	assert.Equal(t, "# Usage\n\n~~~jsx\n<Tabs>{value}</Tabs>\nexport const x = 1\n~~~", doc.Tree.Render(blocks...))
	assert.Equal(t, 3, doc.Scripts)
}

func TestParse_InlineScriptsRemoved(t *testing.T) {
	src := "# Title {/* hidden */}\n\nUse <Badge type=\"new\" /> the {props.name} API.\n"

	doc, err := New().Parse([]byte(src))
	require.NoError(t, err)

	blocks := doc.Tree.Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, "Title", doc.Tree.PlainText(blocks[0]))
	assert.Equal(t, "# Title", doc.Tree.Render(blocks[0]))
	assert.Equal(t, "Use  the  API.", doc.Tree.Render(blocks[1]))
	assert.Equal(t, 3, doc.Scripts)
}

func TestParse_ComponentChildrenKept(t *testing.T) {
	src := "<Admonition type=\"note\">\n\nInside **bold** text.\n\n</Admonition>\n"

	doc, err := New().Parse([]byte(src))
	require.NoError(t, err)

	blocks := doc.Tree.Blocks()
	assert.Equal(t, []ast.NodeKind{ast.KindParagraph}, kinds(blocks))
	assert.Equal(t, "Inside **bold** text.", doc.Tree.Render(blocks...))
}

func TestParse_ComponentWithoutBlankLines(t *testing.T) {
	src := "<Admonition>\nSome text.\n</Admonition>\n"

	doc, err := New().Parse([]byte(src))
	require.NoError(t, err)

	blocks := doc.Tree.Blocks()
	assert.Equal(t, []ast.NodeKind{ast.KindParagraph}, kinds(blocks))
	assert.Equal(t, "Some text.", doc.Tree.Render(blocks...))
}

func TestParse_MultiLineTag(t *testing.T) {
	src := "<Tabs\n  defaultActiveId=\"npm\"\n  size={`small`}\n>\n\nContent here.\n"

	doc, err := New().Parse([]byte(src))
	require.NoError(t, err)

	blocks := doc.Tree.Blocks()
	assert.Equal(t, []ast.NodeKind{ast.KindParagraph}, kinds(blocks))
	assert.Equal(t, "Content here.", doc.Tree.Render(blocks...))
}

func TestParse_BlockSpans(t *testing.T) {
	src := "Intro para.\n\nTitle\n=====\n\n---\n\n| a | b |\n| - | - |\n| 1 | 2 |\n"

	doc, err := New().Parse([]byte(src))
	require.NoError(t, err)

	blocks := doc.Tree.Blocks()
	require.Len(t, blocks, 4)
	assert.Equal(t, "Intro para.", doc.Tree.Render(blocks[0]))
	assert.Equal(t, "Title\n=====", doc.Tree.Render(blocks[1]))
	assert.Equal(t, 1, HeadingLevel(blocks[1]))
	assert.Equal(t, "---", doc.Tree.Render(blocks[2]))
	assert.Equal(t, "| a | b |\n| - | - |\n| 1 | 2 |", doc.Tree.Render(blocks[3]))
}

func TestParse_ProseLookalikesKept(t *testing.T) {
	src := "a < b and c > d\n\nUse `{braces}` and `<Tags>` in code.\n"

	doc, err := New().Parse([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, 0, doc.Scripts)
	assert.Equal(t, "a < b and c > d\n\nUse `{braces}` and `<Tags>` in code.", doc.Tree.Render(doc.Tree.Blocks()...))
}

func TestPlainText(t *testing.T) {
	doc, err := New().Parse([]byte("## Hello `code` *world*\n"))
	require.NoError(t, err)

	blocks := doc.Tree.Blocks()
	require.Len(t, blocks, 1)
	assert.Equal(t, 2, HeadingLevel(blocks[0]))
	assert.Equal(t, "Hello code world", doc.Tree.PlainText(blocks[0]))
}

func TestIsScript(t *testing.T) {
	assert.True(t, IsScript(&ESM{}))
	assert.True(t, IsScript(&FlowScript{kind: KindJSXFlow}))
	assert.True(t, IsScript(&InlineScript{kind: KindTextExpression}))
	assert.False(t, IsScript(ast.NewParagraph()))
	assert.False(t, IsScript(ast.NewFencedCodeBlock(nil)))
}
