// Package chunker divides parsed documents into sections for embedding.
//
// A section is one heading-delimited slice of a document. Splitting is a
// single pass over the top-level blocks: each heading opens a new section,
// and no nesting is kept, so a level-3 heading splits exactly like a
// level-1 heading.
//
// # Basic Usage
//
//	doc, err := parser.New().Parse(source)
//	if err != nil {
//	    return err
//	}
//
//	for _, s := range chunker.New().Split(doc.Tree) {
//	    fmt.Printf("%d %s (%s): ~%d tokens\n", s.Sequence, s.Heading, s.Slug, s.TokenCount)
//	}
//
// Token counts set here are estimates (chars/4). The embedding provider's
// reported count replaces them when a section is embedded.
package chunker
