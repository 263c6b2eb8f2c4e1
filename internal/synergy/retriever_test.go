package synergy

import (
	"testing"

	"github.com/firebase/genkit/go/ai"

	"github.com/deckwise/deckwise/internal/knowledge"
)

func TestExtractQueryText(t *testing.T) {
	tests := []struct {
		name string
		req  *ai.RetrieverRequest
		want string
	}{
		{
			name: "text query",
			req:  &ai.RetrieverRequest{Query: ai.DocumentFromText("synergy with Eevee", nil)},
			want: "synergy with Eevee",
		},
		{
			name: "nil query",
			req:  &ai.RetrieverRequest{},
			want: "",
		},
		{
			name: "empty content",
			req:  &ai.RetrieverRequest{Query: &ai.Document{}},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractQueryText(tt.req); got != tt.want {
				t.Errorf("extractQueryText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractTopK(t *testing.T) {
	tests := []struct {
		name string
		opts any
		want int32
	}{
		{"int", map[string]any{"k": 7}, 7},
		{"float64 from json", map[string]any{"k": float64(12)}, 12},
		{"int64", map[string]any{"k": int64(3)}, 3},
		{"zero falls back", map[string]any{"k": 0}, 8},
		{"negative falls back", map[string]any{"k": -1}, 8},
		{"over cap falls back", map[string]any{"k": 26}, 8},
		{"at cap", map[string]any{"k": 25}, 25},
		{"wrong type falls back", map[string]any{"k": "lots"}, 8},
		{"missing key", map[string]any{}, 8},
		{"no options", nil, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &ai.RetrieverRequest{Options: tt.opts}
			if got := extractTopK(req, 8); got != tt.want {
				t.Errorf("extractTopK() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestToGenkitDocuments(t *testing.T) {
	results := []knowledge.Result{
		{
			Document: knowledge.Document{
				ID:       "a",
				Content:  "card: Eevee",
				Metadata: map[string]string{"doc_type": "card", "name": "Eevee"},
			},
			Similarity: 0.87,
		},
	}

	docs := toGenkitDocuments(results)
	if len(docs) != 1 {
		t.Fatalf("got %d documents", len(docs))
	}
	if docs[0].Content[0].Text != "card: Eevee" {
		t.Errorf("content = %q", docs[0].Content[0].Text)
	}
	if docs[0].Metadata["name"] != "Eevee" {
		t.Errorf("metadata = %v", docs[0].Metadata)
	}
	if docs[0].Metadata["similarity"] != float32(0.87) {
		t.Errorf("similarity = %v", docs[0].Metadata["similarity"])
	}
}
