package synergy

import (
	"context"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/deckwise/deckwise/internal/knowledge"
)

// maxTopK bounds retriever fan-out. The target-card lookup scans up to
// this many hits, so anything above it buys nothing.
const maxTopK = 25

// Searcher is the slice of the knowledge store the retriever needs.
type Searcher interface {
	Search(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Result, error)
}

// Retriever bridges a knowledge Searcher to the Genkit ai.Retriever
// interface.
type Retriever struct {
	store Searcher
}

// NewRetriever creates a Retriever over the given store.
func NewRetriever(store Searcher) *Retriever {
	return &Retriever{store: store}
}

// DefineCards registers a Genkit retriever that searches card documents
// only (doc_type="card").
func (r *Retriever) DefineCards(g *genkit.Genkit, name string) ai.Retriever {
	return r.define(g, name, "card", 8)
}

// DefineGuides registers a Genkit retriever that searches guide documents
// only (doc_type="guide").
func (r *Retriever) DefineGuides(g *genkit.Genkit, name string) ai.Retriever {
	return r.define(g, name, "guide", 3)
}

func (r *Retriever) define(g *genkit.Genkit, name, docType string, defaultK int32) ai.Retriever {
	return genkit.DefineRetriever(
		g, name, nil,
		func(ctx context.Context, req *ai.RetrieverRequest) (*ai.RetrieverResponse, error) {
			queryText := extractQueryText(req)
			topK := extractTopK(req, defaultK)

			results, err := r.store.Search(ctx, queryText,
				knowledge.WithTopK(topK),
				knowledge.WithFilter("doc_type", docType),
			)
			if err != nil {
				return nil, err
			}

			return &ai.RetrieverResponse{
				Documents: toGenkitDocuments(results),
			}, nil
		},
	)
}

// extractQueryText pulls the query text out of a RetrieverRequest.
func extractQueryText(req *ai.RetrieverRequest) string {
	if req.Query != nil && len(req.Query.Content) > 0 {
		return req.Query.Content[0].Text
	}
	return ""
}

// extractTopK reads the "k" option from the request, accepting the
// numeric types JSON decoding may produce. Values outside [1, maxTopK]
// fall back to defaultK.
func extractTopK(req *ai.RetrieverRequest, defaultK int32) int32 {
	opts, ok := req.Options.(map[string]any)
	if !ok {
		return defaultK
	}
	raw, ok := opts["k"]
	if !ok {
		return defaultK
	}

	var k int
	switch v := raw.(type) {
	case int:
		k = v
	case int32:
		k = int(v)
	case int64:
		k = int(v)
	case float64:
		k = int(v)
	case float32:
		k = int(v)
	default:
		return defaultK
	}

	if k < 1 || k > maxTopK {
		return defaultK
	}
	return int32(k)
}

// toGenkitDocuments converts search results into Genkit documents,
// carrying the similarity score along in metadata.
func toGenkitDocuments(results []knowledge.Result) []*ai.Document {
	docs := make([]*ai.Document, len(results))
	for i, result := range results {
		metadata := make(map[string]any, len(result.Document.Metadata)+1)
		for k, v := range result.Document.Metadata {
			metadata[k] = v
		}
		metadata["similarity"] = result.Similarity
		docs[i] = ai.DocumentFromText(result.Document.Content, metadata)
	}
	return docs
}
