package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docarchive/internal/archive"
	"docarchive/internal/model"
	"docarchive/internal/repository"
	"docarchive/internal/storage"
)

var (
	ErrIDRequired    = errors.New("id is required")
	ErrNotFound      = errors.New("document not found")
	ErrEmptyDocument = errors.New("document has no papers")
	ErrReaderNil     = errors.New("reader is nil")
)

// DefaultFetchTimeout bounds a single object store fetch during bundling.
const DefaultFetchTimeout = 30 * time.Second

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// BundleResult carries one assembled archive back to the HTTP layer.
type BundleResult struct {
	Filename string
	Content  []byte
}

// DocumentService defines the use cases for handling documents and their papers.
type DocumentService interface {
	// Create validates and stores a new document's metadata.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// List returns documents using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// Get returns a single document by its ID together with its papers.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Delete removes a document, its papers, and their stored objects.
	Delete(ctx context.Context, id string) error

	// AttachPaper uploads a file to object storage, records a paper row, and
	// rolls back the stored object if the insert fails.
	// originalFilename is used only to extract the extension.
	AttachPaper(ctx context.Context, documentID string, r io.Reader, originalFilename, title, contentType string, size int64) (*model.Paper, error)

	// Bundle resolves a document with its papers and assembles one ZIP
	// archive with an entry per paper. Papers whose bytes cannot be fetched
	// are represented by text placeholders; an empty document refuses
	// bundling with ErrEmptyDocument.
	Bundle(ctx context.Context, id string) (*BundleResult, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store        storage.Storage
	docs         repository.DocumentRepository
	papers       repository.PaperRepository
	fetchTimeout time.Duration
}

// NewDocumentService constructs a new DocumentService. A non-positive
// fetchTimeout falls back to DefaultFetchTimeout.
func NewDocumentService(store storage.Storage, docs repository.DocumentRepository, papers repository.PaperRepository, fetchTimeout time.Duration) DocumentService {
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &documentService{store: store, docs: docs, papers: papers, fetchTimeout: fetchTimeout}
}

func (s *documentService) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if doc == nil {
		return nil, errors.New("document is nil")
	}
	if doc.Status == "" {
		doc.Status = model.StatusPending
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc.ID = uuid.New().String()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	return s.docs.Create(ctx, doc)
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.docs.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a document by ID with its papers attached in store order.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	return s.aggregate(ctx, id)
}

// aggregate resolves a document identifier to its metadata plus the full
// ordered list of paper records.
func (s *documentService) aggregate(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	papers, err := s.papers.ListByDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	doc.Papers = papers
	return doc, nil
}

// Delete removes a document's stored objects, then its rows.
func (s *documentService) Delete(ctx context.Context, id string) error {
	doc, err := s.aggregate(ctx, id)
	if err != nil {
		return err
	}
	// Remove stored objects first; if one fails, keep the DB rows so the
	// reference is not lost.
	for _, p := range doc.Papers {
		if p.StorageRef == "" {
			continue
		}
		if err := s.store.Delete(ctx, p.StorageRef); err != nil {
			return fmt.Errorf("delete storage object %s: %w", p.StorageRef, err)
		}
	}
	// Paper rows cascade with the document row.
	return s.docs.Delete(ctx, id)
}

func (s *documentService) AttachPaper(ctx context.Context, documentID string, r io.Reader, originalFilename, title, contentType string, size int64) (*model.Paper, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	// The document must exist before we accept a paper for it.
	if _, err := s.docs.FindByID(ctx, documentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	paperID := uuid.New().String()
	ext := strings.TrimPrefix(filepath.Ext(originalFilename), ".")
	genName := paperID
	if ext != "" {
		genName += "." + ext
	}
	key := filepath.ToSlash(filepath.Join("papers", genName))

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	if title == "" {
		title = strings.TrimSuffix(originalFilename, filepath.Ext(originalFilename))
	}
	paper := &model.Paper{
		ID:         paperID,
		DocumentID: documentID,
		Title:      title,
		StorageRef: objInfo.Key,
		FileType:   ext,
		Size:       objInfo.Size,
		CreatedAt:  time.Now().UTC(),
	}
	stored, err := s.papers.Create(ctx, paper)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *documentService) Bundle(ctx context.Context, id string) (*BundleResult, error) {
	doc, err := s.aggregate(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(doc.Papers) == 0 {
		return nil, ErrEmptyDocument
	}

	entries := make([]archive.Entry, 0, len(doc.Papers))
	for _, p := range doc.Papers {
		entries = append(entries, archive.Entry{
			Name:    archive.EntryName(p),
			Content: s.paperContent(ctx, doc, p),
		})
	}

	buf, err := archive.Build(entries)
	if err != nil {
		return nil, fmt.Errorf("assemble archive: %w", err)
	}
	return &BundleResult{
		Filename: archive.SanitizeFilename(doc.Title) + ".zip",
		Content:  buf,
	}, nil
}

// paperContent fetches one paper's bytes from the object store, downgrading
// every failure to a diagnostic placeholder so a single missing file never
// aborts the bundle.
func (s *documentService) paperContent(ctx context.Context, doc *model.Document, p model.Paper) []byte {
	if p.StorageRef == "" {
		return placeholder(doc, p, "no attachment was ever provided")
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	obj, _, err := s.store.Get(fetchCtx, p.StorageRef)
	if err != nil {
		return placeholder(doc, p, "object store error: "+err.Error())
	}
	defer obj.Close()

	content, err := io.ReadAll(obj)
	if err != nil {
		return placeholder(doc, p, "object store read error: "+err.Error())
	}
	return content
}

// placeholder renders the UTF-8 text entry substituted for a paper whose real
// bytes could not be retrieved, carrying enough identifiers for a human
// inspecting the archive to diagnose the gap.
func placeholder(doc *model.Document, p model.Paper, reason string) []byte {
	var b strings.Builder
	b.WriteString("missing attachment\n")
	fmt.Fprintf(&b, "paper: %s\n", p.Title)
	fmt.Fprintf(&b, "paper_id: %s\n", p.ID)
	fmt.Fprintf(&b, "document_id: %s\n", doc.ID)
	fmt.Fprintf(&b, "created_at: %s\n", p.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "reason: %s\n", reason)
	return []byte(b.String())
}
