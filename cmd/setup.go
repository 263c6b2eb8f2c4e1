package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deckwise/deckwise/db"
	"github.com/deckwise/deckwise/internal/config"
	"github.com/deckwise/deckwise/internal/knowledge"
)

// backend bundles everything the index and synergy commands share: a
// migrated database, a pgvector-aware pool, Genkit with the Google AI
// plugin, and the knowledge store on top.
type backend struct {
	genkit *genkit.Genkit
	store  *knowledge.Store
	pool   *pgxpool.Pool
}

func (b *backend) close() {
	b.pool.Close()
}

func newBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	if err := db.Migrate(cfg.PostgresURL(), logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	pool, err := knowledge.NewPool(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize genkit")
	}

	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	store := knowledge.New(knowledge.NewPgQuerier(pool), embedder, logger)

	return &backend{genkit: g, store: store, pool: pool}, nil
}
