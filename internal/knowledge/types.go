// Package knowledge implements the vector-indexed document store backing
// synergy retrieval: PostgreSQL + pgvector for storage and similarity
// search, with embeddings generated through a genkit ai.Embedder.
//
// The store sits outside the deterministic corpus core; corpus documents
// cross into it through the FromCorpus adapter.
package knowledge

import (
	"time"
)

// Document is one stored knowledge document. Metadata is flattened to
// string values for jsonb containment filtering.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
	CreateAt time.Time
}

// Result is a single search hit with its similarity score.
type Result struct {
	Document   Document
	Similarity float32 // cosine similarity (0-1)
}

// SearchOption configures search behavior using the functional options
// pattern.
type SearchOption func(*searchConfig)

type searchConfig struct {
	topK    int32
	filter  map[string]string
	timeout time.Duration
}

// WithTopK sets the maximum number of results. Default is 5.
func WithTopK(k int32) SearchOption {
	return func(c *searchConfig) {
		c.topK = k
	}
}

// WithFilter adds a metadata equality filter. Multiple filters combine
// with AND logic.
func WithFilter(key, value string) SearchOption {
	return func(c *searchConfig) {
		if c.filter == nil {
			c.filter = make(map[string]string)
		}
		c.filter[key] = value
	}
}

// WithTimeout overrides the per-search timeout. Default is 10 seconds.
func WithTimeout(d time.Duration) SearchOption {
	return func(c *searchConfig) {
		c.timeout = d
	}
}

func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{
		topK:    5,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
