// Package postgres stores pages and sections in PostgreSQL, with section
// embeddings in a pgvector column. Schema migrations are embedded in the
// binary and applied with golang-migrate.
package postgres
