package knowledge

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/deckwise/deckwise/internal/corpus"
)

// FromCorpus converts a corpus document into a storable knowledge
// document. Corpus metadata is flat (scalars and lists of scalars), so it
// flattens losslessly enough for filtering: scalars keep their text form
// and lists join with ", ".
func FromCorpus(doc corpus.Document) Document {
	metadata := make(map[string]string, len(doc.Metadata))
	for k, v := range doc.Metadata {
		metadata[k] = metaString(v)
	}
	return Document{
		ID:       doc.ID,
		Content:  doc.Text,
		Metadata: metadata,
		CreateAt: time.Now(),
	}
}

func metaString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []string:
		return strings.Join(x, ", ")
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = metaString(item)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(x)
	}
}
