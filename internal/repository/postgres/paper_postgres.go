package postgres

import (
	"context"
	"database/sql"

	"docarchive/internal/model"
	"docarchive/internal/repository"
)

// PaperPostgres is a PostgreSQL implementation of repository.PaperRepository.
type PaperPostgres struct {
	db *sql.DB
}

// NewPaperPostgres creates a new PaperPostgres repository.
func NewPaperPostgres(db *sql.DB) *PaperPostgres {
	return &PaperPostgres{db: db}
}

var _ repository.PaperRepository = (*PaperPostgres)(nil)

// paperColumns uses COALESCE so optional columns scan into plain strings;
// an empty StorageRef means no file was ever uploaded.
const paperColumns = `id, document_id, title, COALESCE(content, ''), COALESCE(storage_ref, ''), COALESCE(file_type, ''), size, created_at`

func scanPaper(row interface{ Scan(...any) error }) (*model.Paper, error) {
	var p model.Paper
	if err := row.Scan(
		&p.ID,
		&p.DocumentID,
		&p.Title,
		&p.Content,
		&p.StorageRef,
		&p.FileType,
		&p.Size,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new paper row and returns the stored record.
// Empty optional fields are stored as NULL.
func (r *PaperPostgres) Create(ctx context.Context, p *model.Paper) (*model.Paper, error) {
	const q = `
		INSERT INTO papers (id, document_id, title, content, storage_ref, file_type, size, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8)
		RETURNING ` + paperColumns
	row := r.db.QueryRowContext(ctx, q,
		p.ID,
		p.DocumentID,
		p.Title,
		p.Content,
		p.StorageRef,
		p.FileType,
		p.Size,
		p.CreatedAt,
	)
	return scanPaper(row)
}

// ListByDocument returns the papers of a document in creation order.
func (r *PaperPostgres) ListByDocument(ctx context.Context, documentID string) ([]model.Paper, error) {
	const q = `
		SELECT ` + paperColumns + `
		FROM papers
		WHERE document_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	papers := make([]model.Paper, 0)
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return papers, nil
}
