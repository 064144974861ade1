// Package repository contains data access abstractions. Implementations live
// in subpackages (e.g. postgres) and contain no business logic.
package repository

import (
	"context"

	"docarchive/internal/model"
)

// DocumentRepository defines persistence operations for documents.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID without its papers; callers that
	// need the papers combine this with PaperRepository.ListByDocument.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a paginated list of documents and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// Delete removes a document by ID. Paper rows go with it via the schema's
	// ON DELETE CASCADE. Returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error
}

// PaperRepository defines persistence operations for paper records.
type PaperRepository interface {
	// Create inserts a new paper row and returns the stored record.
	Create(ctx context.Context, p *model.Paper) (*model.Paper, error)

	// ListByDocument returns all papers of a document in stable backing-store
	// order (creation order, then id).
	ListByDocument(ctx context.Context, documentID string) ([]model.Paper, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
