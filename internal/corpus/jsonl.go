package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// ErrMissingText indicates a persisted line without the mandatory "text"
// field. Unlike doc_id (synthesized) and metadata (defaulted), text cannot
// be recovered, so the line is a fatal parse error.
var ErrMissingText = errors.New("document line missing text field")

// maxLineSize bounds a single JSONL line. Guide documents embed whole
// rulebook files, so the default bufio.Scanner limit of 64KB is too small.
const maxLineSize = 16 * 1024 * 1024

// WriteTo writes documents to w, one compact JSON object per line, in the
// given order.
func WriteTo(w io.Writer, docs []Document) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, d := range docs {
		// Encoder appends exactly one newline per value.
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("failed to encode document %s: %w", d.ID, err)
		}
	}
	return bw.Flush()
}

// ReadFrom parses line-delimited JSON documents from r. Blank lines are
// skipped. A line missing doc_id gets a fresh one; missing metadata
// defaults to an empty map; missing text fails with ErrMissingText.
func ReadFrom(r io.Reader) ([]Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var docs []Document
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var raw struct {
			DocID    string         `json:"doc_id"`
			Text     *string        `json:"text"`
			Metadata map[string]any `json:"metadata"`
		}
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNo, err)
		}
		if raw.Text == nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, ErrMissingText)
		}

		id := raw.DocID
		if id == "" {
			id = uuid.NewString()
		}
		metadata := raw.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}

		docs = append(docs, Document{ID: id, Text: *raw.Text, Metadata: metadata})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	return docs, nil
}

// Load reads a persisted corpus file. Inverse of the assembler's WriteAll
// and WriteByExpansion for a single file.
func Load(path string) ([]Document, error) {
	f, err := os.Open(path) // #nosec G304 -- corpus path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	docs, err := ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}
