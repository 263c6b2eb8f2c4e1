package synergy

import (
	"context"
	"errors"
	"testing"

	"github.com/deckwise/deckwise/internal/corpus"
	"github.com/deckwise/deckwise/internal/knowledge"
	"github.com/deckwise/deckwise/internal/log"
)

type recordingStore struct {
	added   []knowledge.Document
	failIDs map[string]bool
}

func (s *recordingStore) Add(ctx context.Context, doc knowledge.Document) error {
	if s.failIDs[doc.ID] {
		return errors.New("embedding unavailable")
	}
	s.added = append(s.added, doc)
	return nil
}

func TestIndexCorpus(t *testing.T) {
	store := &recordingStore{}
	idx := NewIndexer(store, log.NewNop())

	docs := []corpus.Document{
		{ID: "a", Text: "card: Eevee", Metadata: map[string]any{"doc_type": "card", "name": "Eevee"}},
		{ID: "b", Text: "guide text", Metadata: map[string]any{"doc_type": "guide"}},
	}

	result, err := idx.IndexCorpus(context.Background(), docs)
	if err != nil {
		t.Fatalf("IndexCorpus: %v", err)
	}
	if result.Added != 2 || result.Failed != 0 {
		t.Errorf("result = %+v", result)
	}
	if store.added[0].Content != "card: Eevee" || store.added[0].Metadata["name"] != "Eevee" {
		t.Errorf("stored doc = %+v", store.added[0])
	}
}

func TestIndexCorpusContinuesPastFailures(t *testing.T) {
	store := &recordingStore{failIDs: map[string]bool{"b": true}}
	idx := NewIndexer(store, log.NewNop())

	docs := []corpus.Document{
		{ID: "a", Text: "one"},
		{ID: "b", Text: "two"},
		{ID: "c", Text: "three"},
	}

	result, err := idx.IndexCorpus(context.Background(), docs)
	if err != nil {
		t.Fatalf("IndexCorpus: %v", err)
	}
	if result.Added != 2 || result.Failed != 1 {
		t.Errorf("result = %+v", result)
	}
}

func TestIndexCorpusCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	idx := NewIndexer(&recordingStore{}, log.NewNop())
	result, err := idx.IndexCorpus(ctx, []corpus.Document{{ID: "a", Text: "x"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if result.Added != 0 {
		t.Errorf("result = %+v", result)
	}
}
