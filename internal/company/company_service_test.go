package company_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"go-research/internal/company"
	companyerrors "go-research/internal/company/errors"
	"go-research/internal/shared/cache"
	"go-research/internal/shared/ordering"

	companyMock "go-research/internal/company/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakePurger struct {
	purged []company.PurgedReport
	err    error
	calls  int
}

func (f *fakePurger) PurgeByCompany(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]company.PurgedReport, error) {
	f.calls++
	return f.purged, f.err
}

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
	sqlMock sqlmock.Sqlmock
	service company.Service
	repo    *companyMock.MockRepository
	purger  *fakePurger
	blobs   *fakeBlobStore
	store   *cache.Memory
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, _ := sqlmock.New()
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)

	repo := companyMock.NewMockRepository(ctrl)
	repo.EXPECT().WithTx(gomock.Any()).Return(repo).AnyTimes()

	purger := &fakePurger{}
	blobs := newFakeBlobStore()
	store := cache.NewMemory()

	svc := company.NewService(gdb, repo, purger, blobs, store, nil)

	return &serviceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
		purger:  purger,
		blobs:   blobs,
		store:   store,
	}
}

func intPtr(v int) *int { return &v }

func TestCompanyService_Create(t *testing.T) {
	t.Run("assigns the next display order inside a transaction", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().NextDisplayOrder(gomock.Any()).Return(3, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c *company.Company) error {
				assert.Equal(t, 3, *c.DisplayOrder)
				return nil
			})
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Create(context.Background(), company.CreateCompanyRequest{
			Name: "Moutai", Code: "600519", Type: "a_share",
		})

		assert.NoError(t, err)
		assert.Equal(t, "Moutai", resp.Name)
		assert.Equal(t, 3, *resp.Order)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("rejects an unknown company type before touching the database", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(context.Background(), company.CreateCompanyRequest{
			Name: "X", Code: "Y", Type: "crypto",
		})

		assert.ErrorIs(t, err, companyerrors.ErrInvalidCompanyType)
	})

	t.Run("duplicate code surfaces the conflict and rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().NextDisplayOrder(gomock.Any()).Return(0, nil)
		deps.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(errors.New(`duplicate key value violates unique constraint "uq_company_code"`))
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Create(context.Background(), company.CreateCompanyRequest{
			Name: "Moutai", Code: "600519", Type: "a_share",
		})

		assert.ErrorIs(t, err, companyerrors.ErrCompanyCodeExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestCompanyService_GetAll(t *testing.T) {
	newCompany := func(name string, order *int, createdAt time.Time) company.Company {
		return company.Company{
			ID: uuid.New(), Name: name, Code: name, Type: company.TypeAShare,
			DisplayOrder: order, CreatedAt: createdAt,
		}
	}

	t.Run("sorts by order with unordered rows last", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		base := time.Now()
		deps.repo.EXPECT().FindAll(gomock.Any()).Return([]company.Company{
			newCompany("legacy-new", nil, base),
			newCompany("second", intPtr(2), base),
			newCompany("first", intPtr(1), base),
			newCompany("legacy-old", nil, base.Add(-time.Hour)),
		}, nil)

		resp, err := deps.service.GetAll(context.Background())

		assert.NoError(t, err)
		names := make([]string, len(resp))
		for i, r := range resp {
			names[i] = r.Name
		}
		assert.Equal(t, []string{"first", "second", "legacy-new", "legacy-old"}, names)
	})

	t.Run("second read is served from cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().FindAll(gomock.Any()).
			Return([]company.Company{newCompany("only", intPtr(0), time.Now())}, nil).
			Times(1)

		first, err := deps.service.GetAll(context.Background())
		assert.NoError(t, err)

		second, err := deps.service.GetAll(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("mutation invalidates the cached list", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		stale := company.Company{
			ID: id, Name: "Before", Code: "0001", Type: company.TypeAShare,
			DisplayOrder: intPtr(0), CreatedAt: time.Now(),
		}

		deps.repo.EXPECT().FindAll(gomock.Any()).
			Return([]company.Company{stale}, nil).
			Times(1)
		first, err := deps.service.GetAll(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, "Before", first[0].Name)

		deps.repo.EXPECT().FindByID(gomock.Any(), id).Return(&stale, nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		_, err = deps.service.Update(context.Background(), id.String(), company.UpdateCompanyRequest{Name: "After"})
		assert.NoError(t, err)

		updated := stale
		updated.Name = "After"
		deps.repo.EXPECT().FindAll(gomock.Any()).
			Return([]company.Company{updated}, nil).
			Times(1)
		second, err := deps.service.GetAll(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, "After", second[0].Name)
	})

	t.Run("concurrent cold reads collapse into one query", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().FindAll(gomock.Any()).
			DoAndReturn(func(context.Context) ([]company.Company, error) {
				time.Sleep(50 * time.Millisecond)
				return []company.Company{newCompany("only", intPtr(0), time.Now())}, nil
			}).
			Times(1)

		var wg sync.WaitGroup
		results := make([][]company.CompanyResponse, 5)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				resp, err := deps.service.GetAll(context.Background())
				assert.NoError(t, err)
				results[i] = resp
			}(i)
		}
		wg.Wait()

		for _, r := range results {
			assert.Equal(t, results[0], r)
		}
	})

	t.Run("repository failure is shared, not cached", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().FindAll(gomock.Any()).Return(nil, errors.New("db down")).Times(1)
		_, err := deps.service.GetAll(context.Background())
		assert.Error(t, err)

		deps.repo.EXPECT().FindAll(gomock.Any()).
			Return([]company.Company{newCompany("only", intPtr(0), time.Now())}, nil).
			Times(1)
		resp, err := deps.service.GetAll(context.Background())
		assert.NoError(t, err)
		assert.Len(t, resp, 1)
	})
}

func TestCompanyService_Update(t *testing.T) {
	deps := setupServiceTest(t)
	defer deps.db.Close()

	id := uuid.New()

	t.Run("partial update keeps untouched fields", func(t *testing.T) {
		deps.repo.EXPECT().FindByID(gomock.Any(), id).Return(&company.Company{
			ID: id, Name: "Old", Code: "0001", Type: company.TypeHK, Description: "keep me",
		}, nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c *company.Company) error {
				assert.Equal(t, "New", c.Name)
				assert.Equal(t, "keep me", c.Description)
				return nil
			})

		resp, err := deps.service.Update(context.Background(), id.String(), company.UpdateCompanyRequest{Name: "New"})

		assert.NoError(t, err)
		assert.Equal(t, "New", resp.Name)
	})

	t.Run("explicit empty description clears the field", func(t *testing.T) {
		deps.repo.EXPECT().FindByID(gomock.Any(), id).Return(&company.Company{
			ID: id, Name: "Old", Code: "0001", Type: company.TypeHK, Description: "stale",
		}, nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c *company.Company) error {
				assert.Equal(t, "", c.Description)
				return nil
			})

		cleared := ""
		resp, err := deps.service.Update(context.Background(), id.String(), company.UpdateCompanyRequest{Description: &cleared})

		assert.NoError(t, err)
		assert.Equal(t, "", resp.Description)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := deps.service.Update(context.Background(), "not-a-uuid", company.UpdateCompanyRequest{})
		assert.ErrorIs(t, err, companyerrors.ErrInvalidCompanyID)
	})

	t.Run("unknown id maps to not found", func(t *testing.T) {
		deps.repo.EXPECT().FindByID(gomock.Any(), id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Update(context.Background(), id.String(), company.UpdateCompanyRequest{Name: "X"})

		assert.ErrorIs(t, err, companyerrors.ErrCompanyNotFound)
	})
}

func TestCompanyService_Delete(t *testing.T) {
	t.Run("cascades reports and removes their blobs after commit", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		deps.purger.purged = []company.PurgedReport{
			{ID: "r1", FilePath: "blob-1.pdf"},
			{ID: "r2", FilePath: "blob-2.pdf"},
		}

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().FindByID(gomock.Any(), id).
			Return(&company.Company{ID: id, IconPath: "icon.png"}, nil)
		deps.repo.EXPECT().Delete(gomock.Any(), id).Return(nil)
		deps.sqlMock.ExpectCommit()

		err := deps.service.Delete(context.Background(), id.String())

		assert.NoError(t, err)
		assert.Equal(t, 1, deps.purger.calls)
		assert.ElementsMatch(t, []string{"icon.png", "blob-1.pdf", "blob-2.pdf"}, deps.blobs.removed)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("purge failure rolls back and leaves blobs alone", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		deps.purger.err = errors.New("purge exploded")

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().FindByID(gomock.Any(), id).
			Return(&company.Company{ID: id, IconPath: "icon.png"}, nil)
		deps.sqlMock.ExpectRollback()

		err := deps.service.Delete(context.Background(), id.String())

		assert.Error(t, err)
		assert.Empty(t, deps.blobs.removed)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("unknown id maps to not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().FindByID(gomock.Any(), id).Return(nil, gorm.ErrRecordNotFound)
		deps.sqlMock.ExpectRollback()

		err := deps.service.Delete(context.Background(), id.String())

		assert.ErrorIs(t, err, companyerrors.ErrCompanyNotFound)
	})
}

func TestCompanyService_Reorder(t *testing.T) {
	t.Run("applies the whole batch in one transaction", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		updates := []ordering.Update{
			{ID: uuid.NewString(), Order: 0},
			{ID: uuid.NewString(), Order: 1},
		}

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().UpdateOrders(gomock.Any(), updates).Return(nil)
		deps.sqlMock.ExpectCommit()

		err := deps.service.Reorder(context.Background(), updates)

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("a stale id fails the whole batch", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		updates := []ordering.Update{{ID: uuid.NewString(), Order: 0}}

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().UpdateOrders(gomock.Any(), updates).Return(gorm.ErrRecordNotFound)
		deps.sqlMock.ExpectRollback()

		err := deps.service.Reorder(context.Background(), updates)

		assert.ErrorIs(t, err, companyerrors.ErrCompanyNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("malformed id is rejected before the transaction", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		err := deps.service.Reorder(context.Background(), []ordering.Update{{ID: "nope", Order: 0}})

		assert.ErrorIs(t, err, companyerrors.ErrInvalidCompanyID)
	})
}

func TestCompanyService_Icon(t *testing.T) {
	t.Run("upload replaces the previous blob", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		deps.repo.EXPECT().FindByID(gomock.Any(), id).
			Return(&company.Company{ID: id, IconPath: "old.png"}, nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		resp, err := deps.service.UploadIcon(context.Background(), id.String(), "logo.png", strings.NewReader("png-bytes"))

		assert.NoError(t, err)
		assert.Contains(t, resp.IconURL, "https://files.test/")
		assert.Contains(t, deps.blobs.removed, "old.png")
		assert.Len(t, deps.blobs.saved, 1)
	})

	t.Run("failed row update drops the new blob", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		deps.repo.EXPECT().FindByID(gomock.Any(), id).Return(&company.Company{ID: id}, nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		_, err := deps.service.UploadIcon(context.Background(), id.String(), "logo.png", strings.NewReader("png-bytes"))

		assert.Error(t, err)
		assert.Empty(t, deps.blobs.saved)
	})

	t.Run("remove clears the path and the blob", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		id := uuid.New()
		deps.repo.EXPECT().FindByID(gomock.Any(), id).
			Return(&company.Company{ID: id, IconPath: "old.png"}, nil)
		deps.repo.EXPECT().Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, c *company.Company) error {
				assert.Empty(t, c.IconPath)
				return nil
			})

		resp, err := deps.service.RemoveIcon(context.Background(), id.String())

		assert.NoError(t, err)
		assert.Empty(t, resp.IconURL)
		assert.Contains(t, deps.blobs.removed, "old.png")
	})
}
