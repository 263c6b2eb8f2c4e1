package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
)

// UpsertDocumentParams carries one document row for insert-or-update.
type UpsertDocumentParams struct {
	ID        string
	Content   string
	Embedding pgvector.Vector
	Metadata  []byte
	CreatedAt time.Time
}

// SearchDocumentsParams carries a vector search request. A nil
// FilterMetadata means no metadata filter.
type SearchDocumentsParams struct {
	QueryEmbedding pgvector.Vector
	FilterMetadata []byte
	Limit          int32
}

// DocumentRow is one row returned by a search.
type DocumentRow struct {
	ID         string
	Content    string
	Metadata   []byte
	CreatedAt  time.Time
	Similarity float32
}

// PgQuerier implements Querier against PostgreSQL via pgx. All statements
// are parameterized; filter metadata is always produced by json.Marshal
// upstream, never raw user input.
type PgQuerier struct {
	pool *pgxpool.Pool
}

// NewPgQuerier wraps a connection pool.
func NewPgQuerier(pool *pgxpool.Pool) *PgQuerier {
	return &PgQuerier{pool: pool}
}

// NewPool creates a pgx connection pool with pgvector types registered on
// every connection.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return pool, nil
}

// UpsertDocument inserts a document or replaces its content, embedding,
// and metadata when the ID already exists.
func (q *PgQuerier) UpsertDocument(ctx context.Context, p UpsertDocumentParams) error {
	const stmt = `
		INSERT INTO documents (id, content, embedding, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content,
		    embedding = EXCLUDED.embedding,
		    metadata = EXCLUDED.metadata`

	_, err := q.pool.Exec(ctx, stmt, p.ID, p.Content, p.Embedding, p.Metadata, p.CreatedAt)
	return err
}

// SearchDocuments returns the documents nearest to the query embedding by
// cosine distance, optionally restricted by jsonb containment.
func (q *PgQuerier) SearchDocuments(ctx context.Context, p SearchDocumentsParams) ([]DocumentRow, error) {
	const stmt = `
		SELECT id, content, metadata, created_at, 1 - (embedding <=> $1) AS similarity
		FROM documents
		WHERE $2::jsonb IS NULL OR metadata @> $2::jsonb
		ORDER BY embedding <=> $1
		LIMIT $3`

	rows, err := q.pool.Query(ctx, stmt, p.QueryEmbedding, p.FilterMetadata, p.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		var row DocumentRow
		if err := rows.Scan(&row.ID, &row.Content, &row.Metadata, &row.CreatedAt, &row.Similarity); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CountDocuments counts documents matching the filter; nil counts all.
func (q *PgQuerier) CountDocuments(ctx context.Context, filterMetadata []byte) (int64, error) {
	const stmt = `
		SELECT count(*) FROM documents
		WHERE $1::jsonb IS NULL OR metadata @> $1::jsonb`

	var count int64
	err := q.pool.QueryRow(ctx, stmt, filterMetadata).Scan(&count)
	return count, err
}

// DeleteDocument removes a document by ID.
func (q *PgQuerier) DeleteDocument(ctx context.Context, id string) error {
	_, err := q.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}
