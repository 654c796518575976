// Package embedder turns section text into vector embeddings.
//
// Three providers are available. OpenAI and Jina talk to an
// OpenAI-compatible /embeddings endpoint; the local provider derives
// deterministic vectors from a content hash and needs no network.
//
// # Basic Usage
//
//	emb, err := embedder.New(embedder.Config{
//	    Provider:          embedder.ProviderOpenAI,
//	    APIKey:            os.Getenv("OPENAI_API_KEY"),
//	    RequestsPerSecond: 5,
//	})
//	if err != nil {
//	    return err
//	}
//	defer emb.Close()
//
//	result, err := emb.Embed(ctx, section.EmbeddingInput())
//	fmt.Println(len(result.Vector), result.TokenCount)
//
// # Failures
//
// Every failure of a remote call is reported wrapped in ErrProviderFailed.
// Rate limit responses (429), timeouts and 5xx responses are retried with
// exponential backoff; a Retry-After header extends the wait. A 400 that
// reports an exceeded context length is retried once with the input cut to
// MaxInputChars. Other 4xx responses fail immediately and can be inspected
// with errors.As against *APIError.
//
// # Caching
//
// Embeddings are cached in an LRU keyed by the SHA-256 of the input, so
// identical sections within a run are embedded once.
package embedder
