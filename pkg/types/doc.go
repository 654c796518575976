// Package types provides shared type definitions for the docsync pipeline.
//
// This package defines domain types used across multiple components of docsync,
// including documents, their metadata, sections, and per-document failures.
//
// # Core Types
//
// Document is the indexed record of one documentation source file, keyed by its
// logical path. Its Checksum is a commit marker: it is only non-nil once every
// section derived from that content has been written with an embedding.
//
//	doc := &types.Document{
//	    Path: "/guides/auth",
//	    Meta: types.Meta{"title": "Auth"},
//	}
//
// Section is one heading-delimited markdown fragment of a document and the unit
// of embedding:
//
//	section := types.Section{
//	    Sequence: 0,
//	    Heading:  "Intro",
//	    Slug:     "intro",
//	    Content:  "# Intro\n\nHello.",
//	}
//
// # Failures
//
// DocumentError records which stage of the per-document cycle failed, so a run
// can report failures without aborting:
//
//	err := &types.DocumentError{Path: "/a", Stage: types.StageEmbed, Err: cause}
//	errors.Is(err, cause) // true
package types
