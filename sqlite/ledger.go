package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fwojciec/skywatch"
)

// Compile-time interface verification.
var _ skywatch.Ledger = (*Ledger)(nil)

// Ledger implements skywatch.Ledger using SQLite. One row per document
// URL records the furthest lifecycle state the document has reached, so
// later runs can skip documents already seen through to completion.
type Ledger struct {
	db *DB
}

// NewLedger creates a new Ledger.
func NewLedger(db *DB) *Ledger {
	return &Ledger{db: db}
}

// Status returns the recorded lifecycle state for a document URL.
// Returns ENOTFOUND for URLs the ledger has never seen.
func (l *Ledger) Status(ctx context.Context, url string) (skywatch.Status, error) {
	var status string

	err := l.db.QueryRowContext(ctx, `
		SELECT status FROM documents WHERE url = ?
	`, url).Scan(&status)

	if err == sql.ErrNoRows {
		return "", skywatch.Errorf(skywatch.ENOTFOUND, "document not found")
	}
	if err != nil {
		return "", err
	}

	return skywatch.Status(status), nil
}

// Record upserts a document's current state. The row is keyed by URL, so
// a document advancing through the state machine rewrites the same row.
func (l *Ledger) Record(ctx context.Context, doc *skywatch.Document) error {
	if doc.URL == "" {
		return skywatch.Errorf(skywatch.EINVALID, "document URL required")
	}
	if doc.Status == "" {
		return skywatch.Errorf(skywatch.EINVALID, "document status required")
	}

	var fetchedAt string
	if !doc.FetchedAt.IsZero() {
		fetchedAt = doc.FetchedAt.Format(time.RFC3339)
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO documents (url, name, content_hash, status, reason, fetched_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			name = excluded.name,
			content_hash = excluded.content_hash,
			status = excluded.status,
			reason = excluded.reason,
			fetched_at = excluded.fetched_at,
			updated_at = excluded.updated_at
	`, doc.URL, doc.Name, doc.ContentHash, doc.Status, doc.Reason, fetchedAt,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}

	return nil
}

// FindByStatus returns the documents currently in the given state, most
// recently updated first. Useful for inspecting what a past run left
// behind.
func (l *Ledger) FindByStatus(ctx context.Context, status skywatch.Status) ([]*skywatch.Document, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT url, name, content_hash, status, reason, fetched_at
		FROM documents
		WHERE status = ?
		ORDER BY updated_at DESC
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*skywatch.Document
	for rows.Next() {
		var doc skywatch.Document
		var fetchedAt string

		if err := rows.Scan(&doc.URL, &doc.Name, &doc.ContentHash, &doc.Status, &doc.Reason, &fetchedAt); err != nil {
			return nil, err
		}
		if fetchedAt != "" {
			doc.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt)
			if err != nil {
				return nil, fmt.Errorf("failed to parse fetched_at: %w", err)
			}
		}

		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}
