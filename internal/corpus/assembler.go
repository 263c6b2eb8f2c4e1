package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// SourceBuilder turns one input source into documents. The interface is
// defined here, by the consumer; internal/card provides the production
// implementation.
type SourceBuilder interface {
	// ExpansionDocuments parses raw structured expansion data and returns
	// one document per card, creatures first (in source order), then
	// supporters, items, and tools.
	ExpansionDocuments(ctx context.Context, raw []byte, expansion string) ([]Document, error)

	// GuideDocument wraps free text (rulebooks, deck-building guides) in a
	// single document labeled with name.
	GuideDocument(text, name string) Document
}

// Assembler orchestrates document building across a set of input files and
// persists the result as line-delimited JSON under a storage directory.
//
// Writes are serialized through a file lock so concurrent invocations
// cannot interleave partial output.
type Assembler struct {
	storageDir string
	builder    SourceBuilder
	logger     *slog.Logger
}

// NewAssembler creates an Assembler rooted at storageDir, creating the
// directory if absent.
func NewAssembler(storageDir string, builder SourceBuilder, logger *slog.Logger) (*Assembler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(storageDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Assembler{
		storageDir: storageDir,
		builder:    builder,
		logger:     logger,
	}, nil
}

// StorageDir returns the directory the assembler writes into.
func (a *Assembler) StorageDir() string {
	return a.storageDir
}

// BuildFromPaths builds documents for each input path in order. Files with
// a .json extension are parsed as expansion data (named after the file
// stem); anything else is treated as a free-text guide. Sources are
// processed one at a time so a malformed file fails with its path attached
// and without touching other sources.
func (a *Assembler) BuildFromPaths(ctx context.Context, paths []string) ([]Document, error) {
	var docs []Document
	for _, p := range paths {
		built, err := a.buildSource(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		docs = append(docs, built...)
	}
	a.logger.Debug("built corpus", "sources", len(paths), "documents", len(docs))
	return docs, nil
}

func (a *Assembler) buildSource(ctx context.Context, path string) ([]Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- input paths come from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return a.builder.ExpansionDocuments(ctx, data, stem)
	}
	return []Document{a.builder.GuideDocument(string(data), stem)}, nil
}

// WriteAll writes the combined corpus to filename inside the storage
// directory, one JSON object per line in input order, and returns the
// written path.
func (a *Assembler) WriteAll(docs []Document, filename string) (string, error) {
	lock, err := a.acquireLock()
	if err != nil {
		return "", err
	}
	defer func() {
		_ = lock.Unlock()
	}()

	out := filepath.Join(a.storageDir, filename)
	if err := a.writeFile(out, docs); err != nil {
		return "", err
	}
	a.logger.Debug("wrote combined corpus", "path", out, "documents", len(docs))
	return out, nil
}

// WriteByExpansion partitions documents by their expansion metadata
// (absent means the misc group) and writes one cards_<group>.jsonl per
// group. Group files list documents in input order; returned paths follow
// first-seen group order.
func (a *Assembler) WriteByExpansion(docs []Document) ([]string, error) {
	lock, err := a.acquireLock()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = lock.Unlock()
	}()

	groups := make(map[string][]Document)
	var order []string
	for _, d := range docs {
		key := d.GroupKey()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], d)
	}

	written := make([]string, 0, len(order))
	for _, key := range order {
		out := filepath.Join(a.storageDir, "cards_"+key+".jsonl")
		if err := a.writeFile(out, groups[key]); err != nil {
			return nil, err
		}
		written = append(written, out)
	}
	a.logger.Debug("wrote grouped corpus", "groups", len(written))
	return written, nil
}

func (a *Assembler) writeFile(path string, docs []Document) error {
	f, err := os.Create(path) // #nosec G304 -- path is derived from the storage dir
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteTo(f, docs); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// acquireLock takes an exclusive lock on the storage directory's lockfile.
func (a *Assembler) acquireLock() (*flock.Flock, error) {
	lock := flock.New(filepath.Join(a.storageDir, ".corpus.lock"))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("failed to lock storage directory: %w", err)
	}
	return lock, nil
}
