package synergy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/deckwise/deckwise/internal/knowledge"
)

// systemPrompt frames the model as a deck builder. Kept terse so card
// snippets dominate the context window.
const systemPrompt = "You are a competitive deck builder. Given card snippets and (optionally) " +
	"rules/guide snippets, recommend synergistic cards across pokemon, supporters, " +
	"items, and tools. Favor energy acceleration, tutoring, draw, switching, and " +
	"type synergies. Always explain briefly *why* each pick helps, and cite with " +
	"'Card Name (Expansion)'."

const defaultCandidates = 8
const guideCandidates = 3

// Option configures a single FindSynergies call.
type Option func(*queryConfig)

type queryConfig struct {
	expansion         string
	sameExpansionOnly bool
	topK              int32
}

// WithExpansion pins the target card to one expansion, disambiguating
// reprints.
func WithExpansion(expansion string) Option {
	return func(c *queryConfig) {
		c.expansion = expansion
	}
}

// SameExpansionOnly restricts card recommendations to the target's
// expansion. It has no effect unless WithExpansion is also given.
func SameExpansionOnly() Option {
	return func(c *queryConfig) {
		c.sameExpansionOnly = true
	}
}

// WithK sets how many card candidates are retrieved. Default is 8.
func WithK(k int32) Option {
	return func(c *queryConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

// Engine retrieves synergy candidates for a target card and synthesizes
// a natural-language recommendation.
type Engine struct {
	g      *genkit.Genkit
	store  Searcher
	cards  ai.Retriever
	guides ai.Retriever
	model  string
	logger *slog.Logger
}

// NewEngine wires the store into card and guide retrievers and returns an
// engine generating with the named model. A nil logger falls back to
// slog.Default().
func NewEngine(g *genkit.Genkit, store Searcher, model string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	r := NewRetriever(store)
	return &Engine{
		g:      g,
		store:  store,
		cards:  r.DefineCards(g, "cards"),
		guides: r.DefineGuides(g, "guides"),
		model:  model,
		logger: logger,
	}
}

// FindSynergies returns a natural-language answer recommending cards that
// synergize with the named card.
func (e *Engine) FindSynergies(ctx context.Context, cardName string, opts ...Option) (string, error) {
	cfg := &queryConfig{topK: defaultCandidates}
	for _, opt := range opts {
		opt(cfg)
	}

	target := e.lookupTarget(ctx, cardName, cfg.expansion)
	userQuery := buildUserQuery(cardName, target)

	candidates, err := e.retrieveCandidates(ctx, userQuery, cfg.topK)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve candidates: %w", err)
	}

	candidates = filterCandidates(candidates, cardName, cfg.expansion, cfg.sameExpansionOnly)
	if len(candidates) == 0 {
		e.logger.Warn("no candidates survived filtering", "card", cardName, "expansion", cfg.expansion)
	}

	response, err := genkit.Generate(ctx, e.g,
		ai.WithModelName(e.model),
		ai.WithPrompt(buildPrompt(userQuery, candidates)),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate synergy answer: %w", err)
	}
	return response.Text(), nil
}

// targetInfo is what the engine knows about the card being asked about.
// Zero value means the card was not found in the index.
type targetInfo struct {
	types string
	tags  string
}

// lookupTarget scans the nearest card documents for an exact
// case-insensitive name match, preferring the requested expansion. A miss
// is not an error; the query just loses its type and theme hints.
func (e *Engine) lookupTarget(ctx context.Context, cardName, expansion string) targetInfo {
	results, err := e.store.Search(ctx, cardName,
		knowledge.WithTopK(maxTopK),
		knowledge.WithFilter("doc_type", "card"),
	)
	if err != nil {
		e.logger.Warn("target card lookup failed", "card", cardName, "error", err)
		return targetInfo{}
	}

	var fallback *knowledge.Result
	for i, result := range results {
		md := result.Document.Metadata
		if !strings.EqualFold(md["name"], cardName) {
			continue
		}
		if expansion == "" || md["expansion"] == expansion {
			return targetInfo{types: md["types"], tags: md["synergy_tags"]}
		}
		if fallback == nil {
			fallback = &results[i]
		}
	}
	if fallback != nil {
		md := fallback.Document.Metadata
		return targetInfo{types: md["types"], tags: md["synergy_tags"]}
	}
	return targetInfo{}
}

func buildUserQuery(cardName string, target targetInfo) string {
	var sb strings.Builder
	sb.WriteString("Suggest cards that synergize with ")
	sb.WriteString(cardName)
	if target.types != "" {
		sb.WriteString(" (types: ")
		sb.WriteString(target.types)
		sb.WriteString(")")
	}
	if target.tags != "" {
		sb.WriteString(" using themes: ")
		sb.WriteString(target.tags)
	}
	sb.WriteString(". Explain why each pick helps a competitive deck.")
	return sb.String()
}

// retrieveCandidates pulls card candidates plus a few guide snippets.
func (e *Engine) retrieveCandidates(ctx context.Context, query string, topK int32) ([]*ai.Document, error) {
	cardResp, err := e.cards.Retrieve(ctx, &ai.RetrieverRequest{
		Query:   ai.DocumentFromText(query, nil),
		Options: map[string]any{"k": int(topK)},
	})
	if err != nil {
		return nil, err
	}

	guideResp, err := e.guides.Retrieve(ctx, &ai.RetrieverRequest{
		Query:   ai.DocumentFromText(query, nil),
		Options: map[string]any{"k": guideCandidates},
	})
	if err != nil {
		// Guides are optional context; an empty guide table is common.
		e.logger.Warn("guide retrieval failed", "error", err)
		return cardResp.Documents, nil
	}

	return append(cardResp.Documents, guideResp.Documents...), nil
}

// filterCandidates keeps card and guide documents, drops the target card
// itself (case-insensitive name, and expansion when one is pinned), and
// optionally drops cards from other expansions.
func filterCandidates(docs []*ai.Document, targetName, expansion string, sameExpansionOnly bool) []*ai.Document {
	out := make([]*ai.Document, 0, len(docs))
	for _, doc := range docs {
		docType := metaString(doc, "doc_type")
		if docType != "card" && docType != "guide" {
			continue
		}
		if docType == "card" {
			sameName := strings.EqualFold(metaString(doc, "name"), targetName)
			sameExpansion := expansion == "" || metaString(doc, "expansion") == expansion
			if sameName && sameExpansion {
				continue
			}
			if sameExpansionOnly && expansion != "" && metaString(doc, "expansion") != expansion {
				continue
			}
		}
		out = append(out, doc)
	}
	return out
}

func metaString(doc *ai.Document, key string) string {
	if doc == nil || doc.Metadata == nil {
		return ""
	}
	s, _ := doc.Metadata[key].(string)
	return s
}

func buildPrompt(userQuery string, candidates []*ai.Document) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nCONTEXT SNIPPETS:\n")
	for _, doc := range candidates {
		sb.WriteString("---\n")
		if len(doc.Content) > 0 {
			sb.WriteString(doc.Content[0].Text)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nUSER QUERY: ")
	sb.WriteString(userQuery)
	return sb.String()
}
