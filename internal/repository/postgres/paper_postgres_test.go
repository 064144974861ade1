package postgres

import (
	"context"
	"testing"
	"time"

	"docarchive/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var paperCols = []string{"id", "document_id", "title", "content", "storage_ref", "file_type", "size", "created_at"}

func TestPaperPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewPaperPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	p := &model.Paper{
		ID:         "paper-1",
		DocumentID: "doc-1",
		Title:      "verdict",
		StorageRef: "papers/paper-1.pdf",
		FileType:   "pdf",
		Size:       2048,
		CreatedAt:  now,
	}

	rows := sqlmock.NewRows(paperCols).
		AddRow(p.ID, p.DocumentID, p.Title, "", p.StorageRef, p.FileType, p.Size, p.CreatedAt)

	mock.ExpectQuery("INSERT INTO papers").
		WithArgs(p.ID, p.DocumentID, p.Title, p.Content, p.StorageRef, p.FileType, p.Size, p.CreatedAt).
		WillReturnRows(rows)

	got, err := repo.Create(ctx, p)

	assert.NoError(t, err)
	assert.Equal(t, p.StorageRef, got.StorageRef)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaperPostgres_ListByDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewPaperPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()

	t.Run("returns papers in order with null columns coalesced", func(t *testing.T) {
		rows := sqlmock.NewRows(paperCols).
			AddRow("paper-1", "doc-1", "verdict", "", "papers/paper-1.pdf", "pdf", 2048, now).
			AddRow("paper-2", "doc-1", "appendix", "inline text", "", "", 0, now.Add(time.Minute))

		mock.ExpectQuery("SELECT (.+) FROM papers").
			WithArgs("doc-1").
			WillReturnRows(rows)

		papers, err := repo.ListByDocument(ctx, "doc-1")
		assert.NoError(t, err)
		assert.Len(t, papers, 2)
		assert.Equal(t, "papers/paper-1.pdf", papers[0].StorageRef)
		assert.Empty(t, papers[1].StorageRef)
		assert.Equal(t, "inline text", papers[1].Content)
	})

	t.Run("no papers yields empty slice", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM papers").
			WithArgs("doc-2").
			WillReturnRows(sqlmock.NewRows(paperCols))

		papers, err := repo.ListByDocument(ctx, "doc-2")
		assert.NoError(t, err)
		assert.Empty(t, papers)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
