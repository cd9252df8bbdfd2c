package report_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"go-research/internal/comment"
	"go-research/internal/report"
	reporterrors "go-research/internal/report/errors"
	"go-research/internal/shared/cache"
	"go-research/internal/shared/ordering"

	reportMock "go-research/internal/report/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakeBlobStore struct {
	mu      sync.Mutex
	saved   map[string]string
	removed []string
	saveErr error
	rmErr   error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{saved: map[string]string{}}
}

func (f *fakeBlobStore) Save(_ context.Context, key string, r io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	data, _ := io.ReadAll(r)
	f.mu.Lock()
	f.saved[key] = string(data)
	f.mu.Unlock()
	return nil
}

func (f *fakeBlobStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.saved[key]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func (f *fakeBlobStore) Remove(_ context.Context, key string) error {
	if f.rmErr != nil {
		return f.rmErr
	}
	f.mu.Lock()
	delete(f.saved, key)
	f.removed = append(f.removed, key)
	f.mu.Unlock()
	return nil
}

func (f *fakeBlobStore) SignedURL(key, _ string, _ time.Duration) (string, error) {
	return "https://files.test/" + key, nil
}

type serviceDeps struct {
	db      *sql.DB
	gdb     *gorm.DB
	sqlMock sqlmock.Sqlmock
	service report.Service
	repo    *reportMock.MockRepository
	blobs   *fakeBlobStore
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, _ := sqlmock.New()
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)

	repo := reportMock.NewMockRepository(ctrl)
	repo.EXPECT().WithTx(gomock.Any()).Return(repo).AnyTimes()

	blobs := newFakeBlobStore()

	svc := report.NewService(gdb, repo, blobs, cache.NewMemory(), nil)

	return &serviceDeps{
		db:      db,
		gdb:     gdb,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
		blobs:   blobs,
	}
}

func intPtr(v int) *int { return &v }

func TestReportService_Create(t *testing.T) {
	companyID := uuid.New()

	req := report.CreateReportRequest{
		Title: "Q2 model update", Analyst: "Chen", Category: "follow_up",
	}

	t.Run("stores the blob then the row", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().NextDisplayOrder(gomock.Any(), companyID).Return(2, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r *report.Report) error {
				assert.Equal(t, companyID, r.CompanyID)
				assert.Equal(t, 2, *r.DisplayOrder)
				assert.Contains(t, deps.blobs.saved, r.FilePath)
				return nil
			})
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Create(context.Background(), companyID.String(), req, "model.pdf", 1024, strings.NewReader("%PDF-"))

		assert.NoError(t, err)
		assert.Equal(t, "model.pdf", resp.FileName)
		assert.Equal(t, int64(1024), resp.FileSizeBytes)
		assert.NotEmpty(t, resp.FileSize)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("rejects an unknown category", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		bad := req
		bad.Category = "rumor"
		_, err := deps.service.Create(context.Background(), companyID.String(), bad, "model.pdf", 1024, strings.NewReader("%PDF-"))

		assert.ErrorIs(t, err, reporterrors.ErrInvalidCategory)
		assert.Empty(t, deps.blobs.saved)
	})

	t.Run("failed row insert drops the blob", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().NextDisplayOrder(gomock.Any(), companyID).Return(0, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Create(context.Background(), companyID.String(), req, "model.pdf", 1024, strings.NewReader("%PDF-"))

		assert.Error(t, err)
		assert.Empty(t, deps.blobs.saved)
	})
}

func TestReportService_ListByCompany(t *testing.T) {
	companyID := uuid.New()

	newReport := func(title string, order *int, createdAt time.Time) report.Report {
		return report.Report{
			ID: uuid.New(), CompanyID: companyID, Title: title,
			Category: report.CategoryInitiation, FileName: title + ".pdf",
			FileSize: 100, FilePath: title + ".pdf",
			DisplayOrder: order, CreatedAt: createdAt,
		}
	}

	t.Run("sorts by order and keeps comment order", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		base := time.Now()
		withComments := newReport("second", intPtr(1), base)
		withComments.Comments = []comment.Comment{
			{ID: uuid.New(), ReportID: withComments.ID, Content: "older", CreatedAt: base.Add(-time.Hour)},
			{ID: uuid.New(), ReportID: withComments.ID, Content: "newer", CreatedAt: base},
		}

		deps.repo.EXPECT().FindByCompany(gomock.Any(), companyID).Return([]report.Report{
			newReport("unordered", nil, base),
			withComments,
			newReport("first", intPtr(0), base),
		}, nil)

		resp, err := deps.service.ListByCompany(context.Background(), companyID.String())

		assert.NoError(t, err)
		assert.Equal(t, "first", resp[0].Title)
		assert.Equal(t, "second", resp[1].Title)
		assert.Equal(t, "unordered", resp[2].Title)
		assert.Equal(t, "older", resp[1].Comments[0].Content)
		assert.Equal(t, "newer", resp[1].Comments[1].Content)
	})

	t.Run("second read is served from cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().FindByCompany(gomock.Any(), companyID).
			Return([]report.Report{newReport("only", intPtr(0), time.Now())}, nil).
			Times(1)

		first, err := deps.service.ListByCompany(context.Background(), companyID.String())
		assert.NoError(t, err)

		second, err := deps.service.ListByCompany(context.Background(), companyID.String())
		assert.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("mutation invalidates the cached list", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		stale := newReport("Before", intPtr(0), time.Now())

		deps.repo.EXPECT().FindByCompany(gomock.Any(), companyID).
			Return([]report.Report{stale}, nil).
			Times(1)
		first, err := deps.service.ListByCompany(context.Background(), companyID.String())
		assert.NoError(t, err)
		assert.Equal(t, "Before", first[0].Title)

		deps.repo.EXPECT().FindByID(gomock.Any(), companyID, stale.ID).Return(&stale, nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		_, err = deps.service.UpdateMetadata(context.Background(), companyID.String(), stale.ID.String(), report.UpdateReportRequest{Title: "After"})
		assert.NoError(t, err)

		updated := stale
		updated.Title = "After"
		deps.repo.EXPECT().FindByCompany(gomock.Any(), companyID).
			Return([]report.Report{updated}, nil).
			Times(1)
		second, err := deps.service.ListByCompany(context.Background(), companyID.String())
		assert.NoError(t, err)
		assert.Equal(t, "After", second[0].Title)
	})

	t.Run("malformed company id", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.ListByCompany(context.Background(), "nope")

		assert.ErrorIs(t, err, reporterrors.ErrInvalidCompanyID)
	})
}

func TestReportService_UpdateMetadata(t *testing.T) {
	companyID, reportID := uuid.New(), uuid.New()

	t.Run("backdates createdAt when requested", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().FindByID(gomock.Any(), companyID, reportID).
			Return(&report.Report{ID: reportID, CompanyID: companyID, Title: "Old", CreatedAt: time.Now()}, nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r *report.Report) error {
				assert.Equal(t, 2023, r.CreatedAt.Year())
				assert.Equal(t, "New", r.Title)
				return nil
			})

		_, err := deps.service.UpdateMetadata(context.Background(), companyID.String(), reportID.String(), report.UpdateReportRequest{
			Title: "New", CreatedAt: "2023-04-01T00:00:00Z",
		})

		assert.NoError(t, err)
	})

	t.Run("rejects a malformed createdAt", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.UpdateMetadata(context.Background(), companyID.String(), reportID.String(), report.UpdateReportRequest{
			CreatedAt: "yesterday",
		})

		assert.ErrorIs(t, err, reporterrors.ErrInvalidCreatedAt)
	})

	t.Run("report under another company is absent", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().FindByID(gomock.Any(), companyID, reportID).
			Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.UpdateMetadata(context.Background(), companyID.String(), reportID.String(), report.UpdateReportRequest{Title: "X"})

		assert.ErrorIs(t, err, reporterrors.ErrReportNotFound)
	})
}

func TestReportService_Delete(t *testing.T) {
	companyID, reportID := uuid.New(), uuid.New()

	t.Run("removes the blob after commit", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().FindByID(gomock.Any(), companyID, reportID).
			Return(&report.Report{ID: reportID, CompanyID: companyID, FilePath: "blob.pdf"}, nil)
		deps.repo.EXPECT().Delete(gomock.Any(), reportID).Return(nil)
		deps.sqlMock.ExpectCommit()

		err := deps.service.Delete(context.Background(), companyID.String(), reportID.String())

		assert.NoError(t, err)
		assert.Equal(t, []string{"blob.pdf"}, deps.blobs.removed)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("row delete failure keeps the blob", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().FindByID(gomock.Any(), companyID, reportID).
			Return(&report.Report{ID: reportID, CompanyID: companyID, FilePath: "blob.pdf"}, nil)
		deps.repo.EXPECT().Delete(gomock.Any(), reportID).Return(errors.New("db down"))
		deps.sqlMock.ExpectRollback()

		err := deps.service.Delete(context.Background(), companyID.String(), reportID.String())

		assert.Error(t, err)
		assert.Empty(t, deps.blobs.removed)
	})
}

func TestReportService_Reorder(t *testing.T) {
	companyID := uuid.New()

	t.Run("applies the batch in one transaction", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		updates := []ordering.Update{{ID: uuid.NewString(), Order: 0}}

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().UpdateOrders(gomock.Any(), companyID, updates).Return(nil)
		deps.sqlMock.ExpectCommit()

		err := deps.service.Reorder(context.Background(), companyID.String(), updates)

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("a stale id fails the whole batch", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		updates := []ordering.Update{{ID: uuid.NewString(), Order: 0}}

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().UpdateOrders(gomock.Any(), companyID, updates).Return(gorm.ErrRecordNotFound)
		deps.sqlMock.ExpectRollback()

		err := deps.service.Reorder(context.Background(), companyID.String(), updates)

		assert.ErrorIs(t, err, reporterrors.ErrReportNotFound)
	})
}

func TestReportService_DownloadURL(t *testing.T) {
	companyID, reportID := uuid.New(), uuid.New()

	t.Run("signs a link for the stored blob", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().FindByID(gomock.Any(), companyID, reportID).
			Return(&report.Report{ID: reportID, CompanyID: companyID, FilePath: "blob.pdf", FileName: "model.pdf"}, nil)

		resp, err := deps.service.DownloadURL(context.Background(), companyID.String(), reportID.String())

		assert.NoError(t, err)
		assert.Equal(t, "https://files.test/blob.pdf", resp.DownloadURL)
	})

	t.Run("unknown report", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().FindByID(gomock.Any(), companyID, reportID).
			Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.DownloadURL(context.Background(), companyID.String(), reportID.String())

		assert.ErrorIs(t, err, reporterrors.ErrReportNotFound)
	})
}

func TestReportService_PurgeByCompany(t *testing.T) {
	deps := setupServiceTest(t)
	defer deps.db.Close()

	companyID := uuid.New()
	r1, r2 := uuid.New(), uuid.New()

	deps.repo.EXPECT().FindByCompany(gomock.Any(), companyID).Return([]report.Report{
		{ID: r1, CompanyID: companyID, FilePath: "a.pdf"},
		{ID: r2, CompanyID: companyID, FilePath: "b.pdf"},
	}, nil)
	deps.repo.EXPECT().DeleteByCompany(gomock.Any(), companyID).Return(nil)

	purged, err := deps.service.PurgeByCompany(context.Background(), deps.gdb, companyID)

	assert.NoError(t, err)
	assert.Len(t, purged, 2)
	assert.Equal(t, "a.pdf", purged[0].FilePath)
	assert.Equal(t, r1.String(), purged[0].ID)
	// The caller owns blob removal; purging must not touch storage.
	assert.Empty(t, deps.blobs.removed)
}
