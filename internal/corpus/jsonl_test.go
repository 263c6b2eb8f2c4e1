package corpus

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	docs := []Document{
		New("card: Eevee\ntype: pokemon", map[string]any{
			"doc_type":     "card",
			"name":         "Eevee",
			"expansion":    "A3b",
			"synergy_tags": []string{"draw", "tutor"},
		}),
		New("guide text\nwith lines", map[string]any{"doc_type": "guide", "name": "rules"}),
	}

	var buf bytes.Buffer
	if err := WriteTo(&buf, docs); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	loaded, err := ReadFrom(&buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(loaded) != len(docs) {
		t.Fatalf("loaded %d docs, want %d", len(loaded), len(docs))
	}

	for i := range docs {
		if loaded[i].ID != docs[i].ID {
			t.Errorf("doc %d: ID changed on round trip", i)
		}
		if loaded[i].Text != docs[i].Text {
			t.Errorf("doc %d: text changed on round trip", i)
		}
		// Metadata round-trips through JSON, so compare JSON forms.
		want, _ := json.Marshal(docs[i].Metadata)
		got, _ := json.Marshal(loaded[i].Metadata)
		if !bytes.Equal(want, got) {
			t.Errorf("doc %d: metadata %s, want %s", i, got, want)
		}
	}
}

func TestWriteToOneObjectPerLine(t *testing.T) {
	docs := []Document{
		New("first", nil),
		New("second", nil),
	}

	var buf bytes.Buffer
	if err := WriteTo(&buf, docs); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for i, line := range lines {
		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			t.Errorf("line %d is not a standalone JSON object: %v", i, err)
		}
		for _, key := range []string{"doc_id", "text", "metadata"} {
			if _, ok := obj[key]; !ok {
				t.Errorf("line %d missing %q", i, key)
			}
		}
	}
}

func TestWriteToDoesNotEscapeHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, []Document{New("attack does 30+ <damage>", nil)}); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if strings.Contains(buf.String(), `<`) {
		t.Errorf("HTML escaping should be off: %s", buf.String())
	}
}

func TestReadFromSkipsBlankLines(t *testing.T) {
	input := "\n" + `{"doc_id":"a","text":"one","metadata":{}}` + "\n\n   \n" +
		`{"doc_id":"b","text":"two","metadata":{}}` + "\n"

	docs, err := ReadFrom(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d docs, want 2", len(docs))
	}
}

func TestReadFromSynthesizesMissingID(t *testing.T) {
	input := `{"text":"no id here","metadata":{"doc_type":"guide"}}` + "\n"

	docs, err := ReadFrom(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if docs[0].ID == "" {
		t.Error("missing doc_id must be synthesized")
	}
}

func TestReadFromMissingTextFatal(t *testing.T) {
	input := `{"doc_id":"a","metadata":{}}` + "\n"

	_, err := ReadFrom(strings.NewReader(input))
	if !errors.Is(err, ErrMissingText) {
		t.Errorf("err = %v, want ErrMissingText", err)
	}
}

func TestReadFromEmptyTextIsValid(t *testing.T) {
	// An explicitly empty text field is present, just empty.
	input := `{"doc_id":"a","text":"","metadata":{}}` + "\n"

	docs, err := ReadFrom(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if docs[0].Text != "" {
		t.Errorf("text = %q", docs[0].Text)
	}
}

func TestReadFromDefaultsMetadata(t *testing.T) {
	input := `{"doc_id":"a","text":"t"}` + "\n"

	docs, err := ReadFrom(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if docs[0].Metadata == nil || len(docs[0].Metadata) != 0 {
		t.Errorf("metadata = %v, want empty map", docs[0].Metadata)
	}
}

func TestReadFromInvalidJSON(t *testing.T) {
	if _, err := ReadFrom(strings.NewReader("{broken\n")); err == nil {
		t.Error("expected error for invalid JSON line")
	}
}

func TestGroupKey(t *testing.T) {
	withExp := New("t", map[string]any{"expansion": "A3b"})
	if withExp.GroupKey() != "A3b" {
		t.Errorf("GroupKey = %q", withExp.GroupKey())
	}

	guide := New("t", map[string]any{"doc_type": "guide"})
	if guide.GroupKey() != MiscGroup {
		t.Errorf("GroupKey = %q, want %q", guide.GroupKey(), MiscGroup)
	}

	empty := New("t", map[string]any{"expansion": ""})
	if empty.GroupKey() != MiscGroup {
		t.Errorf("empty expansion GroupKey = %q, want %q", empty.GroupKey(), MiscGroup)
	}
}

func TestNewGeneratesUniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		d := New("x", nil)
		if seen[d.ID] {
			t.Fatalf("duplicate ID %s", d.ID)
		}
		seen[d.ID] = true
	}
}
