package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deckwise/deckwise/internal/config"
	"github.com/deckwise/deckwise/internal/log"
	"github.com/deckwise/deckwise/internal/synergy"
)

var synergyFlags struct {
	expansion         string
	sameExpansionOnly bool
	topK              int32
}

var synergyCmd = &cobra.Command{
	Use:   "synergy <card name>",
	Short: "Recommend cards that synergize with a target card",
	Long: `Synergy retrieves the indexed cards most similar to a synergy query
for the target card and asks a generative model to recommend picks with
short explanations. The target card itself is never recommended.`,
	Args: cobra.ExactArgs(1),
	RunE: runSynergy,
}

func init() {
	synergyCmd.Flags().StringVar(&synergyFlags.expansion, "expansion", "", "pin the target card to one expansion")
	synergyCmd.Flags().BoolVar(&synergyFlags.sameExpansionOnly, "same-expansion-only", false, "only recommend cards from the target's expansion")
	synergyCmd.Flags().Int32VarP(&synergyFlags.topK, "top-k", "k", 8, "number of card candidates to retrieve")
	rootCmd.AddCommand(synergyCmd)
}

func runSynergy(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := log.New(log.Config{})

	ctx := cmd.Context()
	be, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer be.close()

	opts := []synergy.Option{synergy.WithK(synergyFlags.topK)}
	if synergyFlags.expansion != "" {
		opts = append(opts, synergy.WithExpansion(synergyFlags.expansion))
	}
	if synergyFlags.sameExpansionOnly {
		opts = append(opts, synergy.SameExpansionOnly())
	}

	engine := synergy.NewEngine(be.genkit, be.store, cfg.ModelName, logger)
	answer, err := engine.FindSynergies(ctx, args[0], opts...)
	if err != nil {
		return err
	}

	fmt.Println(answer)
	return nil
}
