package service

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"docarchive/internal/model"
	repoMocks "docarchive/internal/repository/mocks"
	"docarchive/internal/storage"
	storeMocks "docarchive/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBundleService(mStore *storeMocks.MockStorage, mDocs *repoMocks.MockDocumentRepository, mPapers *repoMocks.MockPaperRepository) DocumentService {
	return NewDocumentService(mStore, mDocs, mPapers, time.Second)
}

func readZip(t *testing.T, data []byte) ([]string, map[string][]byte) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	contents := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		names = append(names, f.Name)
		contents[f.Name] = b
	}
	return names, contents
}

func TestDocumentService_Bundle(t *testing.T) {
	ctx := context.Background()

	t.Run("document not found", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mDocs := new(repoMocks.MockDocumentRepository)
		mPapers := new(repoMocks.MockPaperRepository)
		svc := newBundleService(mStore, mDocs, mPapers)

		mDocs.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		res, err := svc.Bundle(ctx, "missing")
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrNotFound)
		mStore.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("empty document refuses bundling", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mDocs := new(repoMocks.MockDocumentRepository)
		mPapers := new(repoMocks.MockPaperRepository)
		svc := newBundleService(mStore, mDocs, mPapers)

		mDocs.On("FindByID", ctx, "doc-2").Return(&model.Document{ID: "doc-2", Title: "empty case"}, nil)
		mPapers.On("ListByDocument", ctx, "doc-2").Return([]model.Paper{}, nil)

		res, err := svc.Bundle(ctx, "doc-2")
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrEmptyDocument)
		mStore.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("all papers resolve", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mDocs := new(repoMocks.MockDocumentRepository)
		mPapers := new(repoMocks.MockPaperRepository)
		svc := newBundleService(mStore, mDocs, mPapers)

		doc := &model.Document{ID: "doc-1", Title: "Case42"}
		papers := []model.Paper{
			{ID: "p1", DocumentID: "doc-1", Title: "verdict", StorageRef: "papers/p1.pdf", FileType: "pdf"},
			{ID: "p2", DocumentID: "doc-1", Title: "appendix", StorageRef: "papers/p2.docx", FileType: "docx"},
		}
		mDocs.On("FindByID", ctx, "doc-1").Return(doc, nil)
		mPapers.On("ListByDocument", ctx, "doc-1").Return(papers, nil)
		mStore.On("Get", mock.Anything, "papers/p1.pdf").
			Return(io.NopCloser(strings.NewReader("pdf bytes")), storage.ObjectInfo{Key: "papers/p1.pdf"}, nil)
		mStore.On("Get", mock.Anything, "papers/p2.docx").
			Return(io.NopCloser(strings.NewReader("docx bytes")), storage.ObjectInfo{Key: "papers/p2.docx"}, nil)

		res, err := svc.Bundle(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "Case42.zip", res.Filename)

		names, contents := readZip(t, res.Content)
		assert.Equal(t, []string{"verdict.pdf", "appendix.docx"}, names)
		assert.Equal(t, []byte("pdf bytes"), contents["verdict.pdf"])
		assert.Equal(t, []byte("docx bytes"), contents["appendix.docx"])
	})

	t.Run("store failure becomes placeholder entry", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mDocs := new(repoMocks.MockDocumentRepository)
		mPapers := new(repoMocks.MockPaperRepository)
		svc := newBundleService(mStore, mDocs, mPapers)

		doc := &model.Document{ID: "doc-1", Title: "Case42"}
		papers := []model.Paper{
			{ID: "p1", DocumentID: "doc-1", Title: "verdict", StorageRef: "papers/p1.pdf", FileType: "pdf"},
			{ID: "p2", DocumentID: "doc-1", Title: "lost", StorageRef: "papers/gone.pdf", FileType: "pdf"},
		}
		mDocs.On("FindByID", ctx, "doc-1").Return(doc, nil)
		mPapers.On("ListByDocument", ctx, "doc-1").Return(papers, nil)
		mStore.On("Get", mock.Anything, "papers/p1.pdf").
			Return(io.NopCloser(strings.NewReader("pdf bytes")), storage.ObjectInfo{}, nil)
		mStore.On("Get", mock.Anything, "papers/gone.pdf").
			Return(nil, storage.ObjectInfo{}, errors.New("object does not exist"))

		res, err := svc.Bundle(ctx, "doc-1")
		require.NoError(t, err)

		names, contents := readZip(t, res.Content)
		require.Equal(t, []string{"verdict.pdf", "lost.pdf"}, names)
		assert.Equal(t, []byte("pdf bytes"), contents["verdict.pdf"])

		ph := string(contents["lost.pdf"])
		assert.Contains(t, ph, "paper_id: p2")
		assert.Contains(t, ph, "document_id: doc-1")
		assert.Contains(t, ph, "object does not exist")
	})

	t.Run("arabic title with missing attachment", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mDocs := new(repoMocks.MockDocumentRepository)
		mPapers := new(repoMocks.MockPaperRepository)
		svc := newBundleService(mStore, mDocs, mPapers)

		doc := &model.Document{ID: "d1", Title: "حكم 123"}
		papers := []model.Paper{
			{ID: "p1", DocumentID: "d1", Title: "scan", StorageRef: "papers/p1.pdf", FileType: "pdf"},
			{ID: "p2", DocumentID: "d1", Title: "draft"},
		}
		mDocs.On("FindByID", ctx, "d1").Return(doc, nil)
		mPapers.On("ListByDocument", ctx, "d1").Return(papers, nil)
		mStore.On("Get", mock.Anything, "papers/p1.pdf").
			Return(io.NopCloser(bytes.NewReader([]byte("0123456789"))), storage.ObjectInfo{}, nil)

		res, err := svc.Bundle(ctx, "d1")
		require.NoError(t, err)
		assert.Equal(t, "حكم_123.zip", res.Filename)

		names, contents := readZip(t, res.Content)
		require.Len(t, names, 2)
		assert.Len(t, contents["scan.pdf"], 10)
		assert.Contains(t, string(contents["draft.txt"]), "no attachment was ever provided")
		// No fetch is attempted for a paper without a storage reference.
		mStore.AssertNumberOfCalls(t, "Get", 1)
	})
}

func TestDocumentService_AttachPaper(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name             string
		originalFilename string
		contentType      string
		size             int64
		setupMocks       func(mStore *storeMocks.MockStorage, mDocs *repoMocks.MockDocumentRepository, mPapers *repoMocks.MockPaperRepository) io.Reader
		wantErr          error
		wantErrMsg       string
	}{
		{
			name:             "happy path",
			originalFilename: "scan.pdf",
			contentType:      "application/pdf",
			size:             11,
			setupMocks: func(mStore *storeMocks.MockStorage, mDocs *repoMocks.MockDocumentRepository, mPapers *repoMocks.MockPaperRepository) io.Reader {
				r := strings.NewReader("hello world")
				mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
				mStore.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "papers/") && strings.HasSuffix(key, ".pdf")
				}), r, storage.PutObjectOptions{
					Size:        11,
					ContentType: "application/pdf",
					Metadata:    map[string]string{"original-filename": "scan.pdf"},
				}).Return(storage.ObjectInfo{
					Key:  "papers/uuid.pdf",
					Size: 11,
				}, nil)
				mPapers.On("Create", ctx, mock.MatchedBy(func(p *model.Paper) bool {
					return p.DocumentID == "doc-1" && p.StorageRef == "papers/uuid.pdf" && p.FileType == "pdf" && p.Title == "scan"
				})).Return(&model.Paper{ID: "gen-id"}, nil)
				return r
			},
			wantErr: nil,
		},
		{
			name:             "validation error - nil reader",
			originalFilename: "scan.pdf",
			setupMocks: func(mStore *storeMocks.MockStorage, mDocs *repoMocks.MockDocumentRepository, mPapers *repoMocks.MockPaperRepository) io.Reader {
				return nil
			},
			wantErr: ErrReaderNil,
		},
		{
			name:             "document missing",
			originalFilename: "scan.pdf",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mDocs *repoMocks.MockDocumentRepository, mPapers *repoMocks.MockPaperRepository) io.Reader {
				mDocs.On("FindByID", ctx, "doc-1").Return(nil, sql.ErrNoRows)
				return strings.NewReader("hello")
			},
			wantErr: ErrNotFound,
		},
		{
			name:             "storage error",
			originalFilename: "scan.pdf",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mDocs *repoMocks.MockDocumentRepository, mPapers *repoMocks.MockPaperRepository) io.Reader {
				r := strings.NewReader("hello")
				mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
				return r
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name:             "repository error with successful rollback",
			originalFilename: "scan.pdf",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mDocs *repoMocks.MockDocumentRepository, mPapers *repoMocks.MockPaperRepository) io.Reader {
				r := strings.NewReader("hello")
				mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						return storage.ObjectInfo{Key: key}
					}, nil)
				mPapers.On("Create", ctx, mock.Anything).
					Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(nil)
				return r
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:             "repository error with failed rollback",
			originalFilename: "scan.pdf",
			size:             5,
			setupMocks: func(mStore *storeMocks.MockStorage, mDocs *repoMocks.MockDocumentRepository, mPapers *repoMocks.MockPaperRepository) io.Reader {
				r := strings.NewReader("hello")
				mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						return storage.ObjectInfo{Key: key}
					}, nil)
				mPapers.On("Create", ctx, mock.Anything).
					Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(errors.New("delete fail"))
				return r
			},
			wantErrMsg: "rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mDocs := new(repoMocks.MockDocumentRepository)
			mPapers := new(repoMocks.MockPaperRepository)
			svc := newBundleService(mStore, mDocs, mPapers)

			r := tt.setupMocks(mStore, mDocs, mPapers)
			paper, err := svc.AttachPaper(ctx, "doc-1", r, tt.originalFilename, "", tt.contentType, tt.size)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, paper)
			} else if tt.wantErrMsg != "" {
				assert.ErrorContains(t, err, tt.wantErrMsg)
				assert.Nil(t, paper)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, paper)
			}

			mStore.AssertExpectations(t)
			mDocs.AssertExpectations(t)
			mPapers.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches papers", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mDocs := new(repoMocks.MockDocumentRepository)
		mPapers := new(repoMocks.MockPaperRepository)
		svc := newBundleService(mStore, mDocs, mPapers)

		mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
		mPapers.On("ListByDocument", ctx, "doc-1").Return([]model.Paper{{ID: "p1"}}, nil)

		doc, err := svc.Get(ctx, "doc-1")
		assert.NoError(t, err)
		assert.Len(t, doc.Papers, 1)
	})

	t.Run("empty id", func(t *testing.T) {
		svc := newBundleService(new(storeMocks.MockStorage), new(repoMocks.MockDocumentRepository), new(repoMocks.MockPaperRepository))
		_, err := svc.Get(ctx, "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes stored objects then rows", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mDocs := new(repoMocks.MockDocumentRepository)
		mPapers := new(repoMocks.MockPaperRepository)
		svc := newBundleService(mStore, mDocs, mPapers)

		mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
		mPapers.On("ListByDocument", ctx, "doc-1").Return([]model.Paper{
			{ID: "p1", StorageRef: "papers/p1.pdf"},
			{ID: "p2"}, // no stored object to remove
		}, nil)
		mStore.On("Delete", ctx, "papers/p1.pdf").Return(nil)
		mDocs.On("Delete", ctx, "doc-1").Return(nil)

		assert.NoError(t, svc.Delete(ctx, "doc-1"))
		mStore.AssertNumberOfCalls(t, "Delete", 1)
	})

	t.Run("keeps rows when object delete fails", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mDocs := new(repoMocks.MockDocumentRepository)
		mPapers := new(repoMocks.MockPaperRepository)
		svc := newBundleService(mStore, mDocs, mPapers)

		mDocs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
		mPapers.On("ListByDocument", ctx, "doc-1").Return([]model.Paper{{ID: "p1", StorageRef: "papers/p1.pdf"}}, nil)
		mStore.On("Delete", ctx, "papers/p1.pdf").Return(errors.New("store down"))

		err := svc.Delete(ctx, "doc-1")
		assert.ErrorContains(t, err, "store down")
		mDocs.AssertNotCalled(t, "Delete", ctx, "doc-1")
	})
}
