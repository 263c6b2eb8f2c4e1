// Package cmd wires the deckwise CLI: building JSONL corpora from card
// source files, indexing them into the vector store, and querying for
// card synergies.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "deckwise",
	Short: "Deckwise - trading card corpus builder and synergy finder",
	Long: `Deckwise turns raw trading card expansion files into a retrieval-ready
JSONL corpus, indexes it into PostgreSQL with vector embeddings, and
answers "what plays well with this card" questions with a generative
model.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
