package report

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"go-research/internal/company"
	"go-research/internal/events"
	"go-research/internal/messaging/kafka"
	reporterrors "go-research/internal/report/errors"
	"go-research/internal/shared/cache"
	"go-research/internal/shared/contextutil"
	"go-research/internal/shared/ordering"
	"go-research/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

//go:generate mockgen -source=report_service.go -destination=mock/report_service_mock.go -package=mock
type Service interface {
	ListByCompany(ctx context.Context, companyID string) ([]ReportResponse, error)
	Create(ctx context.Context, companyID string, req CreateReportRequest, fileName string, size int64, file io.Reader) (ReportResponse, error)
	UpdateMetadata(ctx context.Context, companyID, reportID string, req UpdateReportRequest) (ReportResponse, error)
	Delete(ctx context.Context, companyID, reportID string) error
	Reorder(ctx context.Context, companyID string, updates []ordering.Update) error
	DownloadURL(ctx context.Context, companyID, reportID string) (DownloadResponse, error)

	// PurgeByCompany implements the cascade for company deletion. It runs
	// inside the caller's transaction and hands back the orphaned blob
	// keys for post-commit removal.
	PurgeByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]company.PurgedReport, error)
	// EnsureOwned reports whether the report exists under the company.
	EnsureOwned(ctx context.Context, companyID, reportID uuid.UUID) error
}

type service struct {
	db     *gorm.DB
	repo   Repository
	blobs  storage.Store
	store  cache.Store
	outbox kafka.OutboxRepository
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	blobs storage.Store,
	store cache.Store,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("report.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		blobs:  blobs,
		store:  store,
		outbox: outbox,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) ListByCompany(ctx context.Context, companyID string) ([]ReportResponse, error) {
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return nil, reporterrors.ErrInvalidCompanyID
	}

	key := cache.Key("reports_list", map[string]string{"companyId": companyID})

	if s.store != nil {
		if raw, ok, err := s.store.Get(ctx, key); err == nil && ok {
			var resp []ReportResponse
			if json.Unmarshal(raw, &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		reports, err := s.repo.FindByCompany(ctx, cid)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := toListResponse(ordering.Sort(reports))

		if s.store != nil {
			if raw, err := json.Marshal(resp); err == nil {
				if err := s.store.Set(ctx, key, raw, cache.DefaultTTL, cache.ReportTag(companyID)); err != nil {
					s.logger.Warn("cache reports list failed", zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]ReportResponse), nil
}

func (s *service) Create(ctx context.Context, companyID string, req CreateReportRequest, fileName string, size int64, file io.Reader) (ReportResponse, error) {
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return ReportResponse{}, reporterrors.ErrInvalidCompanyID
	}
	if !Category(req.Category).Valid() {
		return ReportResponse{}, reporterrors.ErrInvalidCategory
	}

	rid := contextutil.GetRequestID(ctx)

	rep := &Report{
		ID:        uuid.New(),
		CompanyID: cid,
		Title:     req.Title,
		Analyst:   req.Analyst,
		Category:  Category(req.Category),
		FileName:  fileName,
		FileSize:  size,
		FilePath:  uuid.NewString() + ".pdf",
	}

	// Blob first; a row pointing at a missing blob is worse than a
	// stray blob with no row.
	if err := s.blobs.Save(ctx, rep.FilePath, file); err != nil {
		s.logger.Error("save report blob failed",
			zap.String("request_id", rid),
			zap.String("company_id", companyID),
			zap.Error(err),
		)
		return ReportResponse{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		next, err := qtx.NextDisplayOrder(ctx, cid)
		if err != nil {
			return err
		}
		rep.DisplayOrder = &next

		if err := qtx.Create(ctx, rep); err != nil {
			return mapRepositoryError(err)
		}

		return s.queueEvent(ctx, tx, rid, "report_uploaded", rep.ID.String(), events.ReportUploadedEvent{
			EventType:  "report_uploaded",
			RequestID:  rid,
			ReportID:   rep.ID.String(),
			CompanyID:  companyID,
			FileName:   rep.FileName,
			FileSize:   rep.FileSize,
			OccurredAt: time.Now().UTC(),
		})
	})
	if err != nil {
		if rmErr := s.blobs.Remove(ctx, rep.FilePath); rmErr != nil {
			s.logger.Warn("remove dangling report blob failed", zap.String("key", rep.FilePath), zap.Error(rmErr))
		}
		return ReportResponse{}, err
	}

	s.invalidate(ctx, cache.ReportTag(companyID))

	s.logger.Info("report uploaded",
		zap.String("request_id", rid),
		zap.String("report_id", rep.ID.String()),
		zap.String("company_id", companyID),
		zap.Int64("size", size),
	)
	return toResponse(*rep), nil
}

func (s *service) UpdateMetadata(ctx context.Context, companyID, reportID string, req UpdateReportRequest) (ReportResponse, error) {
	cid, rid, err := parseIDs(companyID, reportID)
	if err != nil {
		return ReportResponse{}, err
	}

	if req.Category != "" && !Category(req.Category).Valid() {
		return ReportResponse{}, reporterrors.ErrInvalidCategory
	}

	var backdate time.Time
	if req.CreatedAt != "" {
		backdate, err = time.Parse(time.RFC3339, req.CreatedAt)
		if err != nil {
			return ReportResponse{}, reporterrors.ErrInvalidCreatedAt
		}
	}

	rep, err := s.repo.FindByID(ctx, cid, rid)
	if err != nil {
		return ReportResponse{}, mapRepositoryError(err)
	}

	if req.Title != "" {
		rep.Title = req.Title
	}
	if req.Analyst != "" {
		rep.Analyst = req.Analyst
	}
	if req.Category != "" {
		rep.Category = Category(req.Category)
	}
	if !backdate.IsZero() {
		rep.CreatedAt = backdate
	}

	if err := s.repo.Update(ctx, rep); err != nil {
		return ReportResponse{}, mapRepositoryError(err)
	}

	s.invalidate(ctx, cache.ReportTag(companyID))

	return toResponse(*rep), nil
}

func (s *service) Delete(ctx context.Context, companyID, reportID string) error {
	cid, rid, err := parseIDs(companyID, reportID)
	if err != nil {
		return err
	}

	reqID := contextutil.GetRequestID(ctx)

	var filePath string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		rep, err := qtx.FindByID(ctx, cid, rid)
		if err != nil {
			return mapRepositoryError(err)
		}
		filePath = rep.FilePath

		if err := qtx.Delete(ctx, rid); err != nil {
			return mapRepositoryError(err)
		}

		return s.queueEvent(ctx, tx, reqID, "report_deleted", reportID, events.ReportDeletedEvent{
			EventType:  "report_deleted",
			RequestID:  reqID,
			ReportID:   reportID,
			CompanyID:  companyID,
			OccurredAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, cache.ReportTag(companyID))

	if filePath != "" {
		if err := s.blobs.Remove(ctx, filePath); err != nil {
			s.logger.Error("remove report blob failed",
				zap.String("report_id", reportID),
				zap.String("key", filePath),
				zap.Error(err),
			)
			s.queueOrphanedEvent(ctx, reqID, companyID, reportID, filePath, err)
		}
	}

	s.logger.Info("report deleted",
		zap.String("request_id", reqID),
		zap.String("report_id", reportID),
		zap.String("company_id", companyID),
	)
	return nil
}

func (s *service) Reorder(ctx context.Context, companyID string, updates []ordering.Update) error {
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return reporterrors.ErrInvalidCompanyID
	}
	for _, u := range updates {
		if _, err := uuid.Parse(u.ID); err != nil {
			return reporterrors.ErrInvalidReportID
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).UpdateOrders(ctx, cid, updates)
	})
	if err != nil {
		s.logger.Error("reorder reports failed",
			zap.String("company_id", companyID),
			zap.Int("count", len(updates)),
			zap.Error(err),
		)
		return mapRepositoryError(err)
	}

	s.invalidate(ctx, cache.ReportTag(companyID))
	return nil
}

func (s *service) DownloadURL(ctx context.Context, companyID, reportID string) (DownloadResponse, error) {
	cid, rid, err := parseIDs(companyID, reportID)
	if err != nil {
		return DownloadResponse{}, err
	}

	rep, err := s.repo.FindByID(ctx, cid, rid)
	if err != nil {
		return DownloadResponse{}, mapRepositoryError(err)
	}

	url, err := s.blobs.SignedURL(rep.FilePath, rep.FileName, storage.DownloadTTL)
	if err != nil {
		s.logger.Error("sign download url failed", zap.String("report_id", reportID), zap.Error(err))
		return DownloadResponse{}, err
	}

	return DownloadResponse{DownloadURL: url}, nil
}

func (s *service) PurgeByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]company.PurgedReport, error) {
	qtx := s.repo.WithTx(tx)

	reports, err := qtx.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if err := qtx.DeleteByCompany(ctx, companyID); err != nil {
		return nil, mapRepositoryError(err)
	}

	purged := make([]company.PurgedReport, len(reports))
	for i, r := range reports {
		purged[i] = company.PurgedReport{ID: r.ID.String(), FilePath: r.FilePath}
	}
	return purged, nil
}

func (s *service) EnsureOwned(ctx context.Context, companyID, reportID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, companyID, reportID); err != nil {
		return mapRepositoryError(err)
	}
	return nil
}

func (s *service) queueEvent(ctx context.Context, tx *gorm.DB, rid, eventType, reportID string, event any) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "report",
		AggregateID:   reportID,
		EventType:     eventType,
		Topic:         events.ReportLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) queueOrphanedEvent(ctx context.Context, rid, companyID, reportID, filePath string, cause error) {
	if s.outbox == nil {
		return
	}

	event := events.ReportBlobOrphanedEvent{
		EventType:  "report_blob_orphaned",
		RequestID:  rid,
		ReportID:   reportID,
		CompanyID:  companyID,
		FilePath:   filePath,
		Reason:     cause.Error(),
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	if err := s.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "report",
		AggregateID:   reportID,
		EventType:     event.EventType,
		Topic:         events.ReportLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("queue orphaned blob event failed", zap.String("report_id", reportID), zap.Error(err))
	}
}

func (s *service) invalidate(ctx context.Context, tags ...string) {
	if s.store == nil {
		return
	}
	if err := s.store.Invalidate(ctx, tags...); err != nil {
		s.logger.Error("cache invalidation failed", zap.Strings("tags", tags), zap.Error(err))
	}
}

func parseIDs(companyID, reportID string) (uuid.UUID, uuid.UUID, error) {
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return uuid.Nil, uuid.Nil, reporterrors.ErrInvalidCompanyID
	}
	rid, err := uuid.Parse(reportID)
	if err != nil {
		return uuid.Nil, uuid.Nil, reporterrors.ErrInvalidReportID
	}
	return cid, rid, nil
}
