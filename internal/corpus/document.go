// Package corpus defines the normalized document model and its JSONL
// persistence, plus the assembler that turns raw input files into an
// ordered document sequence.
//
// A Document is the unit of retrievable text: an opaque unique ID, a
// canonical text rendering, and a flat metadata mapping (string keys to
// scalars or lists of scalars). Documents are created once by a builder,
// never mutated in place; updates require rebuilding.
package corpus

import (
	"github.com/google/uuid"
)

// MiscGroup is the grouping key used for documents without an expansion.
const MiscGroup = "misc"

// Document is one normalized, immutable unit of text plus metadata.
// The JSON field names match the persisted line format.
type Document struct {
	ID       string         `json:"doc_id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// New creates a Document with a freshly generated unique ID. Identity is
// session-scoped, not content-addressed: rebuilding the same record yields
// a new ID.
func New(text string, metadata map[string]any) Document {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return Document{
		ID:       uuid.NewString(),
		Text:     text,
		Metadata: metadata,
	}
}

// GroupKey returns the document's expansion name for partitioned
// persistence, or MiscGroup when absent.
func (d Document) GroupKey() string {
	if exp, ok := d.Metadata["expansion"].(string); ok && exp != "" {
		return exp
	}
	return MiscGroup
}
