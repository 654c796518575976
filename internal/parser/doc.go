// Package parser turns documentation source into a section-addressable tree.
//
// Documents are markdown with embedded script content: import/export
// statements, component tags such as <Tabs> and braced expressions. The
// parser builds a goldmark tree in which every script construct is its own
// node kind, so removing them is a predicate over node kinds rather than a
// text substitution. Code fences are parsed before any script rule sees
// their lines, which keeps their content intact.
//
// # Basic Usage
//
//	p := parser.New()
//	doc, err := p.Parse(source)
//	if err != nil {
//	    return err // wraps parser.ErrParse
//	}
//
//	fmt.Println(doc.Meta.Title())
//	for _, block := range doc.Tree.Blocks() {
//	    fmt.Println(doc.Tree.Render(block))
//	}
//
// # Metadata
//
// Metadata comes from a top-level declaration of the form
//
//	export const meta = {title: 'Auth', draft: true}
//
// Only string, number, boolean and regular expression properties are kept.
// A document without the declaration yields an empty Meta. Import/export
// blocks that are not valid JavaScript fail the parse.
//
// # Rendering
//
// Each top-level block remembers its source span. Render slices those spans
// and leaves out the ranges taken by removed script nodes, so the output is
// the author's own markdown rather than a re-serialization.
package parser
