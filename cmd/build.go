package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deckwise/deckwise/internal/card"
	"github.com/deckwise/deckwise/internal/config"
	"github.com/deckwise/deckwise/internal/corpus"
	"github.com/deckwise/deckwise/internal/log"
)

var buildFlags struct {
	out           string
	storage       string
	workers       int
	noSynergyTags bool
	perExpansion  bool
}

var buildCmd = &cobra.Command{
	Use:   "build [inputs...]",
	Short: "Build a JSONL corpus from card and guide source files",
	Long: `Build reads expansion JSON files and plain-text guides, renders each
card into a canonical retrieval document, and writes the corpus as JSONL.

Each .json input is parsed as an expansion file (pokemon, supporters,
items, tools); any other input is embedded verbatim as a guide document.
By default everything lands in one file; --per-expansion writes one file
per expansion instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildFlags.out, "out", "", "combined corpus filename (default from config)")
	buildCmd.Flags().StringVar(&buildFlags.storage, "storage", "", "output directory (default from config)")
	buildCmd.Flags().IntVar(&buildFlags.workers, "workers", 0, "parallel card builders (0 = sequential)")
	buildCmd.Flags().BoolVar(&buildFlags.noSynergyTags, "no-synergy-tags", false, "skip synergy tag extraction")
	buildCmd.Flags().BoolVar(&buildFlags.perExpansion, "per-expansion", false, "write one file per expansion")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := log.New(log.Config{})

	storageDir := cfg.StorageDir
	if buildFlags.storage != "" {
		storageDir = buildFlags.storage
	}
	outFile := cfg.OutputFile
	if buildFlags.out != "" {
		outFile = buildFlags.out
	}

	var opts []card.BuilderOption
	if buildFlags.noSynergyTags {
		opts = append(opts, card.WithoutTags())
	}
	if buildFlags.workers > 0 {
		opts = append(opts, card.WithWorkers(buildFlags.workers))
	}
	builder := card.NewBuilder(card.DefaultExtractor(), opts...)

	assembler, err := corpus.NewAssembler(storageDir, builder, logger)
	if err != nil {
		return fmt.Errorf("failed to create assembler: %w", err)
	}

	docs, err := assembler.BuildFromPaths(cmd.Context(), args)
	if err != nil {
		return err
	}

	if buildFlags.perExpansion {
		paths, err := assembler.WriteByExpansion(docs)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Printf("wrote %s\n", p)
		}
	} else {
		path, err := assembler.WriteAll(docs, outFile)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}

	fmt.Printf("%d documents from %d inputs\n", len(docs), len(args))
	return nil
}
