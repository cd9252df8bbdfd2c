package company

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"time"

	companyerrors "go-research/internal/company/errors"
	"go-research/internal/events"
	"go-research/internal/messaging/kafka"
	"go-research/internal/shared/cache"
	"go-research/internal/shared/contextutil"
	"go-research/internal/shared/ordering"
	"go-research/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Icon links comfortably outlive the cached list responses embedding them.
const iconURLTTL = 24 * time.Hour

// PurgedReport identifies one report removed during a company cascade.
type PurgedReport struct {
	ID       string
	FilePath string
}

// ReportPurger is implemented by the report service. PurgeByCompany
// deletes every report and comment the company owns within tx and
// returns the storage keys of the now-orphaned blobs, which the caller
// removes after commit.
type ReportPurger interface {
	PurgeByCompany(ctx context.Context, tx *gorm.DB, companyID uuid.UUID) ([]PurgedReport, error)
}

//go:generate mockgen -source=company_service.go -destination=mock/company_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateCompanyRequest) (CompanyResponse, error)
	GetAll(ctx context.Context) ([]CompanyResponse, error)
	GetByID(ctx context.Context, id string) (CompanyResponse, error)
	Update(ctx context.Context, id string, req UpdateCompanyRequest) (CompanyResponse, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, updates []ordering.Update) error
	UploadIcon(ctx context.Context, id, fileName string, file io.Reader) (CompanyResponse, error)
	RemoveIcon(ctx context.Context, id string) (CompanyResponse, error)
}

type service struct {
	db      *gorm.DB
	repo    Repository
	reports ReportPurger
	blobs   storage.Store
	store   cache.Store
	outbox  kafka.OutboxRepository
	sf      *singleflight.Group
	logger  *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	reports ReportPurger,
	blobs storage.Store,
	store cache.Store,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("company.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("company.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		reports: reports,
		blobs:   blobs,
		store:   store,
		outbox:  outbox,
		sf:      &singleflight.Group{},
		logger:  l,
	}
}

func (s *service) Create(ctx context.Context, req CreateCompanyRequest) (CompanyResponse, error) {
	if !CompanyType(req.Type).Valid() {
		return CompanyResponse{}, companyerrors.ErrInvalidCompanyType
	}

	comp := &Company{
		ID:          uuid.New(),
		Name:        req.Name,
		Code:        req.Code,
		Type:        CompanyType(req.Type),
		Description: req.Description,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		// New companies go to the end of the list.
		next, err := qtx.NextDisplayOrder(ctx)
		if err != nil {
			return err
		}
		comp.DisplayOrder = &next

		if err := qtx.Create(ctx, comp); err != nil {
			return mapRepositoryError(err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("create company failed", zap.String("code", req.Code), zap.Error(err))
		return CompanyResponse{}, err
	}

	s.invalidate(ctx, cache.CompanyTag)

	s.logger.Info("company created",
		zap.String("company_id", comp.ID.String()),
		zap.String("code", comp.Code),
	)
	return s.toResponse(*comp), nil
}

func (s *service) GetAll(ctx context.Context) ([]CompanyResponse, error) {
	key := cache.Key("companies_list", nil)

	if s.store != nil {
		if raw, ok, err := s.store.Get(ctx, key); err == nil && ok {
			var resp []CompanyResponse
			if json.Unmarshal(raw, &resp) == nil {
				return resp, nil
			}
		}
	}

	// Concurrent identical reads collapse into one repo query and share
	// its outcome, success or failure.
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		companies, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := s.toListResponse(ordering.Sort(companies))

		if s.store != nil {
			if raw, err := json.Marshal(resp); err == nil {
				if err := s.store.Set(ctx, key, raw, cache.DefaultTTL, cache.CompanyTag); err != nil {
					s.logger.Warn("cache companies list failed", zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]CompanyResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (CompanyResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return CompanyResponse{}, companyerrors.ErrInvalidCompanyID
	}

	comp, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return CompanyResponse{}, mapRepositoryError(err)
	}

	return s.toResponse(*comp), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateCompanyRequest) (CompanyResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return CompanyResponse{}, companyerrors.ErrInvalidCompanyID
	}

	if req.Type != "" && !CompanyType(req.Type).Valid() {
		return CompanyResponse{}, companyerrors.ErrInvalidCompanyType
	}

	comp, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return CompanyResponse{}, mapRepositoryError(err)
	}

	if req.Name != "" {
		comp.Name = req.Name
	}
	if req.Code != "" {
		comp.Code = req.Code
	}
	if req.Type != "" {
		comp.Type = CompanyType(req.Type)
	}
	if req.Description != nil {
		comp.Description = *req.Description
	}

	if err := s.repo.Update(ctx, comp); err != nil {
		return CompanyResponse{}, mapRepositoryError(err)
	}

	s.invalidate(ctx, cache.CompanyTag)

	return s.toResponse(*comp), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return companyerrors.ErrInvalidCompanyID
	}

	rid := contextutil.GetRequestID(ctx)

	var purged []PurgedReport
	var iconPath string

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		comp, err := qtx.FindByID(ctx, uid)
		if err != nil {
			return mapRepositoryError(err)
		}
		iconPath = comp.IconPath

		purged, err = s.reports.PurgeByCompany(ctx, tx, uid)
		if err != nil {
			return err
		}

		if err := qtx.Delete(ctx, uid); err != nil {
			return mapRepositoryError(err)
		}

		return s.queueDeletedEvent(ctx, tx, rid, uid, len(purged))
	})
	// The request-scoped logger already carries the request id.
	log := contextutil.GetLogger(ctx, s.logger)
	if err != nil {
		log.Error("delete company failed",
			zap.String("company_id", id),
			zap.Error(err),
		)
		return err
	}

	s.invalidate(ctx, cache.CompanyTag, cache.ReportTag(id))
	s.removeOrphanedBlobs(ctx, rid, id, iconPath, purged)

	log.Info("company deleted",
		zap.String("company_id", id),
		zap.Int("reports_cascaded", len(purged)),
	)
	return nil
}

func (s *service) Reorder(ctx context.Context, updates []ordering.Update) error {
	for _, u := range updates {
		if _, err := uuid.Parse(u.ID); err != nil {
			return companyerrors.ErrInvalidCompanyID
		}
	}

	// All-or-nothing: a failed batch leaves the stored order untouched so
	// the caller can re-fetch server truth and retry.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).UpdateOrders(ctx, updates)
	})
	if err != nil {
		s.logger.Error("reorder companies failed", zap.Int("count", len(updates)), zap.Error(err))
		return mapRepositoryError(err)
	}

	s.invalidate(ctx, cache.CompanyTag)
	return nil
}

func (s *service) UploadIcon(ctx context.Context, id, fileName string, file io.Reader) (CompanyResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return CompanyResponse{}, companyerrors.ErrInvalidCompanyID
	}

	comp, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return CompanyResponse{}, mapRepositoryError(err)
	}

	key := uuid.NewString() + filepath.Ext(fileName)
	if err := s.blobs.Save(ctx, key, file); err != nil {
		s.logger.Error("save icon blob failed", zap.String("company_id", id), zap.Error(err))
		return CompanyResponse{}, err
	}

	previous := comp.IconPath
	comp.IconPath = key
	if err := s.repo.Update(ctx, comp); err != nil {
		// The row still points at the old icon; drop the new blob instead.
		if rmErr := s.blobs.Remove(ctx, key); rmErr != nil {
			s.logger.Warn("remove dangling icon blob failed", zap.String("key", key), zap.Error(rmErr))
		}
		return CompanyResponse{}, mapRepositoryError(err)
	}

	if previous != "" {
		if err := s.blobs.Remove(ctx, previous); err != nil {
			s.logger.Warn("remove replaced icon blob failed", zap.String("key", previous), zap.Error(err))
		}
	}

	s.invalidate(ctx, cache.CompanyTag)

	return s.toResponse(*comp), nil
}

func (s *service) RemoveIcon(ctx context.Context, id string) (CompanyResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return CompanyResponse{}, companyerrors.ErrInvalidCompanyID
	}

	comp, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return CompanyResponse{}, mapRepositoryError(err)
	}

	previous := comp.IconPath
	comp.IconPath = ""
	if err := s.repo.Update(ctx, comp); err != nil {
		return CompanyResponse{}, mapRepositoryError(err)
	}

	if previous != "" {
		if err := s.blobs.Remove(ctx, previous); err != nil {
			s.logger.Warn("remove icon blob failed", zap.String("key", previous), zap.Error(err))
		}
	}

	s.invalidate(ctx, cache.CompanyTag)

	return s.toResponse(*comp), nil
}

func (s *service) queueDeletedEvent(ctx context.Context, tx *gorm.DB, rid string, companyID uuid.UUID, reportCount int) error {
	if s.outbox == nil {
		return nil
	}

	event := events.CompanyDeletedEvent{
		EventType:   "company_deleted",
		RequestID:   rid,
		CompanyID:   companyID.String(),
		ReportCount: reportCount,
		OccurredAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "company",
		AggregateID:   companyID.String(),
		EventType:     event.EventType,
		Topic:         events.CompanyLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

// removeOrphanedBlobs runs after the cascade committed. A blob that
// cannot be removed is reported through the outbox for reconciliation
// rather than silently leaked.
func (s *service) removeOrphanedBlobs(ctx context.Context, rid, companyID, iconPath string, purged []PurgedReport) {
	if iconPath != "" {
		if err := s.blobs.Remove(ctx, iconPath); err != nil {
			s.logger.Warn("remove icon blob failed", zap.String("key", iconPath), zap.Error(err))
		}
	}

	for _, p := range purged {
		if p.FilePath == "" {
			continue
		}
		if err := s.blobs.Remove(ctx, p.FilePath); err == nil {
			continue
		} else {
			s.logger.Error("remove report blob failed",
				zap.String("report_id", p.ID),
				zap.String("key", p.FilePath),
				zap.Error(err),
			)
			s.queueOrphanedEvent(ctx, rid, companyID, p, err)
		}
	}
}

func (s *service) queueOrphanedEvent(ctx context.Context, rid, companyID string, p PurgedReport, cause error) {
	if s.outbox == nil {
		return
	}

	event := events.ReportBlobOrphanedEvent{
		EventType:  "report_blob_orphaned",
		RequestID:  rid,
		ReportID:   p.ID,
		CompanyID:  companyID,
		FilePath:   p.FilePath,
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
		AggregateID:   p.ID,
		EventType:     event.EventType,
		Topic:         events.ReportLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("queue orphaned blob event failed", zap.String("report_id", p.ID), zap.Error(err))
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

func (s *service) toResponse(c Company) CompanyResponse {
	resp := CompanyResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Code:        c.Code,
		Type:        string(c.Type),
		Description: c.Description,
		Order:       c.DisplayOrder,
	}
	if !c.CreatedAt.IsZero() {
		resp.CreatedAt = c.CreatedAt.Format(time.RFC3339)
	}
	if !c.UpdatedAt.IsZero() {
		resp.UpdatedAt = c.UpdatedAt.Format(time.RFC3339)
	}
	if c.IconPath != "" && s.blobs != nil {
		if url, err := s.blobs.SignedURL(c.IconPath, "icon"+filepath.Ext(c.IconPath), iconURLTTL); err == nil {
			resp.IconURL = url
		}
	}
	return resp
}

func (s *service) toListResponse(companies []Company) []CompanyResponse {
	res := make([]CompanyResponse, len(companies))
	for i, c := range companies {
		res[i] = s.toResponse(c)
	}
	return res
}
