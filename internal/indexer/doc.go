// Package indexer keeps the search index in step with a documentation tree.
//
// # Basic Usage
//
//	w := walker.New(walker.NewFSTree(os.DirFS(dir), walker.PolicyAbort), walker.Options{})
//	idx := indexer.New(w, emb, store)
//
//	stats, err := idx.Sync(ctx, ".", &indexer.SyncConfig{})
//	fmt.Printf("indexed %d, skipped %d, failed %d\n", stats.Indexed, stats.Skipped, stats.Failed)
//
// # Per-Document Cycle
//
// Each document is fingerprinted (base64 SHA-256 of its raw bytes) and
// compared with the checksum stored for its logical path:
//
//  1. Equal checksum: the document is skipped before it is parsed.
//  2. Otherwise the old sections are deleted, the document row is upserted
//     with a NULL checksum and fresh metadata, the prose is split into
//     sections, and each section is embedded and inserted in order.
//  3. The checksum is written last. It is the commit marker: a document
//     with a non-NULL checksum has every section of that content stored.
//
// Any failure ends the cycle for that document only. It is reported as a
// *types.DocumentError carrying the failing stage, and the next run
// retries it because its checksum is still NULL.
//
// # Concurrency
//
// Documents and sections are processed sequentially, one provider call at
// a time. IndexLock rejects overlapping runs in one process; pass
// WithLocker to serialize runs across processes.
//
// # Cancellation
//
// The context is checked between documents. A cancelled run returns the
// statistics gathered so far together with the context error.
package indexer
