package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/routines/internal/codec"
	"github.com/roach88/routines/internal/jsontree"
)

// ErrNotFound is returned by Get for an unknown sequence number.
var ErrNotFound = errors.New("journal entry not found")

// Entry is one flushed document version.
type Entry struct {
	Seq       int64          `json:"seq"`
	Document  codec.Document `json:"document"`
	Hash      string         `json:"hash"`
	Size      int            `json:"size"`
	WrittenAt int64          `json:"written_at"`
	Content   []byte         `json:"-"`
}

// HashDocument returns the content hash recorded for doc.
func HashDocument(doc codec.Document, content []byte) string {
	domain := jsontree.DomainRoutines
	if doc == codec.DocIndex {
		domain = jsontree.DomainIndex
	}
	return jsontree.HashBytes(domain, content)
}

// Append records a flushed document and returns the stored entry.
func (j *Journal) Append(ctx context.Context, doc codec.Document, content []byte) (Entry, error) {
	e := Entry{
		Document:  doc,
		Hash:      HashDocument(doc, content),
		Size:      len(content),
		WrittenAt: j.now().Unix(),
		Content:   content,
	}

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO flushes (document, hash, size, content, written_at)
		VALUES (?, ?, ?, ?, ?)
	`, string(e.Document), e.Hash, e.Size, e.Content, e.WrittenAt)
	if err != nil {
		return Entry{}, fmt.Errorf("append %s: %w", doc, err)
	}

	e.Seq, err = res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("append %s: %w", doc, err)
	}
	return e, nil
}

// List returns entries newest first without their content. An empty doc
// lists every document. A limit of zero or less means no limit.
func (j *Journal) List(ctx context.Context, doc codec.Document, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, document, hash, size, written_at
		FROM flushes
		WHERE ? = '' OR document = ?
		ORDER BY seq DESC
		LIMIT ?
	`, string(doc), string(doc), limit)
	if err != nil {
		return nil, fmt.Errorf("query flushes: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var document string
		if err := rows.Scan(&e.Seq, &document, &e.Hash, &e.Size, &e.WrittenAt); err != nil {
			return nil, fmt.Errorf("scan flush: %w", err)
		}
		e.Document = codec.Document(document)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flushes: %w", err)
	}
	return entries, nil
}

// Get returns one entry including its content.
func (j *Journal) Get(ctx context.Context, seq int64) (Entry, error) {
	var e Entry
	var document string
	err := j.db.QueryRowContext(ctx, `
		SELECT seq, document, hash, size, written_at, content
		FROM flushes
		WHERE seq = ?
	`, seq).Scan(&e.Seq, &document, &e.Hash, &e.Size, &e.WrittenAt, &e.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("seq %d: %w", seq, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get flush %d: %w", seq, err)
	}
	e.Document = codec.Document(document)
	return e, nil
}
