package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cmcs/claimserver/types"
)

// DocumentRepository handles persistence for document metadata.
// Documents are immutable once created; there is no update path.
type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Get(ctx context.Context, id int) (types.Document, error) {
	const query = `
		SELECT id, claim_id, file_name, upload_date, file_type, file_size
		FROM documents
		WHERE id = $1`
	var doc types.Document
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.ClaimID,
		&doc.FileName,
		&doc.UploadDate,
		&doc.FileType,
		&doc.FileSize,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Document{}, ErrNotFound
		}
		return types.Document{}, err
	}
	return doc, nil
}

func (r *DocumentRepository) ListByClaim(ctx context.Context, claimID int) ([]types.Document, error) {
	const query = `
		SELECT id, claim_id, file_name, upload_date, file_type, file_size
		FROM documents
		WHERE claim_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		var doc types.Document
		if err := rows.Scan(&doc.ID, &doc.ClaimID, &doc.FileName, &doc.UploadDate, &doc.FileType, &doc.FileSize); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc types.Document) (types.Document, error) {
	doc.UploadDate = time.Now()

	const query = `
		INSERT INTO documents (claim_id, file_name, upload_date, file_type, file_size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		doc.ClaimID,
		doc.FileName,
		doc.UploadDate,
		doc.FileType,
		doc.FileSize,
	).Scan(&doc.ID); err != nil {
		return types.Document{}, mapError(err)
	}
	return doc, nil
}
