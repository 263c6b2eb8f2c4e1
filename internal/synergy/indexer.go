package synergy

import (
	"context"
	"log/slog"
	"time"

	"github.com/deckwise/deckwise/internal/corpus"
	"github.com/deckwise/deckwise/internal/knowledge"
)

// DocumentAdder is the slice of the knowledge store the indexer needs.
type DocumentAdder interface {
	Add(ctx context.Context, doc knowledge.Document) error
}

// IndexResult summarizes one indexing run.
type IndexResult struct {
	Added    int
	Failed   int
	Duration time.Duration
}

// Indexer pushes corpus documents into the knowledge store.
type Indexer struct {
	store  DocumentAdder
	logger *slog.Logger
}

// NewIndexer creates an Indexer. A nil logger falls back to
// slog.Default().
func NewIndexer(store DocumentAdder, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{store: store, logger: logger}
}

// IndexCorpus embeds and upserts every document. One bad document does
// not abort the run; failures are counted and logged. Context
// cancellation stops the run with the partial result.
func (idx *Indexer) IndexCorpus(ctx context.Context, docs []corpus.Document) (IndexResult, error) {
	start := time.Now()
	result := IndexResult{}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		if err := idx.store.Add(ctx, knowledge.FromCorpus(doc)); err != nil {
			result.Failed++
			idx.logger.Warn("failed to index document", "id", doc.ID, "error", err)
			continue
		}
		result.Added++
	}

	result.Duration = time.Since(start)
	idx.logger.Info("indexed corpus", "added", result.Added, "failed", result.Failed)
	return result, nil
}
