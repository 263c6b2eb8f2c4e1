package card

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/deckwise/deckwise/internal/corpus"
)

// unknownName labels records missing a name; raw dumps occasionally
// contain them and they must still produce a document.
const unknownName = "UNKNOWN"

// stageTiers maps normalized stage names to a numeric tier. Unrecognized
// stages get no tier.
var stageTiers = map[string]int{
	"basic":   0,
	"stage 1": 1,
	"stage1":  1,
	"stage-1": 1,
	"stage 2": 2,
	"stage2":  2,
	"stage-2": 2,
}

// listSeparator joins list-valued fields in the canonical text rendering.
const listSeparator = " | "

// Builder converts card records into normalized corpus documents. The
// canonical text rendering is deterministic for a given record; document
// IDs are freshly generated per build.
//
// Builder is stateless across calls and safe for concurrent use.
type Builder struct {
	extractor   *Extractor
	computeTags bool
	workers     int
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithoutTags disables synergy tag computation; documents then carry an
// empty tag set.
func WithoutTags() BuilderOption {
	return func(b *Builder) { b.computeTags = false }
}

// WithWorkers sets the number of goroutines used to build creature
// documents within one expansion. Values below 2 keep the sequential
// path. Output order is identical either way.
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) { b.workers = n }
}

// NewBuilder creates a Builder using the given tag extractor.
func NewBuilder(extractor *Extractor, opts ...BuilderOption) *Builder {
	b := &Builder{
		extractor:   extractor,
		computeTags: true,
		workers:     1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ExpansionDocuments parses raw expansion JSON and builds one document per
// card: creatures first (source order), then supporters, items, and tools.
// Evolution chains are resolved for the whole expansion before any
// creature document is built.
func (b *Builder) ExpansionDocuments(ctx context.Context, raw []byte, expansion string) ([]corpus.Document, error) {
	exp, err := ParseExpansion(raw)
	if err != nil {
		return nil, err
	}

	resolved := ResolveChains(exp.Pokemon)

	docs := make([]corpus.Document, len(resolved))
	if b.workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(b.workers)
		for i, rp := range resolved {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				docs[i] = b.PokemonDocument(rp, expansion)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, rp := range resolved {
			docs[i] = b.PokemonDocument(rp, expansion)
		}
	}

	for _, section := range []struct {
		name  string
		cards []Trainer
	}{
		{"supporters", exp.Supporters},
		{"items", exp.Items},
		{"tools", exp.Tools},
	} {
		for _, t := range section.cards {
			docs = append(docs, b.TrainerDocument(t, expansion, section.name))
		}
	}

	return docs, nil
}

// PokemonDocument renders one resolved creature record.
//
// The canonical text block has a fixed field order: identity line, type
// marker, expansion, the present-only scalar fields (stage, hp, retreat,
// evolves_from, weakness), a types line, one line per ability, then per
// attack the cost, damage, and effect lines. A numeric damage of zero is a
// real value and still renders.
func (b *Builder) PokemonDocument(rp ResolvedPokemon, expansion string) corpus.Document {
	name := NormalizeName(rp.Name)
	if name == "" {
		name = unknownName
	}
	stage := NormalizeName(rp.Stage)
	evolvesFrom := NormalizeName(rp.EvolvesFrom)

	lines := []string{
		"card: " + name,
		"type: pokemon",
		"expansion: " + expansion,
	}
	if stage != "" {
		lines = append(lines, "stage: "+stage)
	}
	if len(rp.HP) > 0 {
		lines = append(lines, "hp: "+strings.Join(rp.HP, listSeparator))
	}
	if len(rp.Retreat) > 0 {
		lines = append(lines, "retreat: "+strings.Join(rp.Retreat, listSeparator))
	}
	if evolvesFrom != "" {
		lines = append(lines, "evolves_from: "+evolvesFrom)
	}
	if len(rp.Weakness) > 0 {
		lines = append(lines, "weakness: "+strings.Join(rp.Weakness, listSeparator))
	}
	if len(rp.Types) > 0 {
		lines = append(lines, "types: "+strings.Join(rp.Types, listSeparator))
	}

	var tagText []string
	for _, ab := range rp.Abilities {
		if ab.Name != "" {
			lines = append(lines, "ability."+ab.Name+": "+ab.Text)
		} else {
			lines = append(lines, "ability: "+ab.Text)
		}
		tagText = append(tagText, ab.Text)
	}

	for _, atk := range rp.Attacks {
		atkName := strings.TrimSpace(atk.Name)
		if atkName == "" {
			atkName = "attack"
		}
		if len(atk.Cost) > 0 {
			lines = append(lines, "attack."+atkName+".cost: "+strings.Join(atk.Cost, listSeparator))
		}
		if atk.Damage.Valid {
			lines = append(lines, "attack."+atkName+".damage: "+atk.Damage.Value)
		}
		if atk.Effect != "" {
			lines = append(lines, "attack."+atkName+".effect: "+atk.Effect)
			tagText = append(tagText, atk.Effect)
		}
	}

	// Tags are computed over ability and attack-effect text only, not the
	// full rendered block.
	tags := []string{}
	if b.computeTags {
		tags = b.extractor.Extract(strings.Join(tagText, "\n"), rp.Types)
	}

	base := rp.Base
	if base == "" {
		base = name
	}
	types := rp.Types
	if types == nil {
		types = []string{}
	}

	metadata := map[string]any{
		"doc_type":            "card",
		"card_type":           "pokemon",
		"name":                name,
		"name_slug":           Slugify(name),
		"expansion":           expansion,
		"types":               types,
		"stage":               stage,
		"evolves_from":        evolvesFrom,
		"evolves_from_slug":   "",
		"evolution_base":      base,
		"evolution_base_slug": Slugify(base),
		"has_evolutions":      rp.HasDescendants,
		"synergy_tags":        tags,
	}
	if evolvesFrom != "" {
		metadata["evolves_from_slug"] = Slugify(evolvesFrom)
	}
	if tier, ok := stageTiers[strings.ToLower(stage)]; ok {
		metadata["stage_tier"] = tier
	}

	return corpus.New(strings.Join(lines, "\n"), metadata)
}

// TrainerDocument renders one supporter, item, or tool record. The section
// name supplied by the caller becomes both the type marker line and the
// card_type metadata value. Tags are computed over the effect text alone.
func (b *Builder) TrainerDocument(t Trainer, expansion, section string) corpus.Document {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		name = unknownName
	}

	lines := []string{
		"card: " + name,
		"type: " + section,
		"expansion: " + expansion,
	}
	if t.Effect != "" {
		lines = append(lines, "effect: "+t.Effect)
	}

	tags := []string{}
	if b.computeTags {
		tags = b.extractor.Extract(t.Effect, nil)
	}

	metadata := map[string]any{
		"doc_type":     "card",
		"card_type":    section,
		"name":         name,
		"expansion":    expansion,
		"synergy_tags": tags,
	}

	return corpus.New(strings.Join(lines, "\n"), metadata)
}

// GuideDocument wraps ancillary free text (rules, deck-building guides) in
// a document. The text is kept verbatim and no tags are computed.
func (b *Builder) GuideDocument(text, name string) corpus.Document {
	return corpus.New(text, map[string]any{
		"doc_type": "guide",
		"name":     name,
	})
}
