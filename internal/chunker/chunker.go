package chunker

import (
	"github.com/gosimple/slug"
	"github.com/yuin/goldmark/ast"

	"github.com/dshills/docsync/internal/parser"
	"github.com/dshills/docsync/pkg/types"
)

const (
	// TokensPerChar is the heuristic for estimating tokens (chars/4)
	TokensPerChar = 4
)

// Chunker splits parsed documents into heading-delimited sections
type Chunker struct{}

// New creates a new Chunker instance
func New() *Chunker {
	return &Chunker{}
}

type group struct {
	heading ast.Node // nil for content before the first heading
	blocks  []ast.Node
}

// Split partitions the tree's top-level blocks into sections. Every heading,
// whatever its level, starts a new section; blocks before the first heading
// form a leading section without a heading. Sections that render to nothing
// are dropped, and sequences are assigned to the remaining ones in order.
func (c *Chunker) Split(tree *parser.Tree) []types.Section {
	groups := []group{{}}
	for _, block := range tree.Blocks() {
		if parser.HeadingLevel(block) > 0 {
			groups = append(groups, group{heading: block})
		}
		last := &groups[len(groups)-1]
		last.blocks = append(last.blocks, block)
	}

	sections := make([]types.Section, 0, len(groups))
	for _, g := range groups {
		content := tree.Render(g.blocks...)
		if content == "" {
			continue
		}
		section := types.Section{
			Sequence:   len(sections),
			Content:    content,
			TokenCount: EstimateTokenCount(content),
		}
		if g.heading != nil {
			section.Heading = tree.PlainText(g.heading)
			section.Slug = slug.Make(section.Heading)
		}
		sections = append(sections, section)
	}
	return sections
}

// EstimateTokenCount estimates the number of tokens in text
func EstimateTokenCount(text string) int {
	return (len(text) + TokensPerChar - 1) / TokensPerChar
}
