// Package reindex provides bulk re-embedding of stored tasks and notes,
// typically after the embedding model has changed.
//
// This package supports batched processing through a bounded worker pool,
// progress tracking, retry logic with exponential backoff, and vector
// normalization to keep stored embeddings compatible with dot-product
// similarity search.
package reindex
