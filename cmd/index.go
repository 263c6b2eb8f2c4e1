package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckwise/deckwise/internal/config"
	"github.com/deckwise/deckwise/internal/corpus"
	"github.com/deckwise/deckwise/internal/log"
	"github.com/deckwise/deckwise/internal/synergy"
)

var indexFlags struct {
	storage string
}

var indexCmd = &cobra.Command{
	Use:   "index [jsonl...]",
	Short: "Embed a JSONL corpus into the vector store",
	Long: `Index loads corpus documents from the given JSONL files, generates an
embedding for each, and upserts them into PostgreSQL. With no arguments
it indexes the combined corpus file from the storage directory.

Requires GEMINI_API_KEY and a reachable PostgreSQL with the pgvector
extension available.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexFlags.storage, "storage", "", "storage directory (default from config)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := log.New(log.Config{})

	paths := args
	if len(paths) == 0 {
		storageDir := cfg.StorageDir
		if indexFlags.storage != "" {
			storageDir = indexFlags.storage
		}
		paths = []string{filepath.Join(storageDir, cfg.OutputFile)}
	}

	var docs []corpus.Document
	for _, path := range paths {
		loaded, err := corpus.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load corpus %s: %w", path, err)
		}
		docs = append(docs, loaded...)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents to index")
	}

	ctx := cmd.Context()
	be, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer be.close()

	result, err := synergy.NewIndexer(be.store, logger).IndexCorpus(ctx, docs)
	if err != nil {
		return err
	}

	fmt.Printf("indexed %d documents (%d failed) in %s\n", result.Added, result.Failed, result.Duration.Round(10*time.Millisecond))
	return nil
}
