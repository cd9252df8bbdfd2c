package app

import (
	"fmt"
	"os"

	"go-research/internal/auth"
	"go-research/internal/comment"
	"go-research/internal/company"
	"go-research/internal/messaging/kafka"
	"go-research/internal/report"
	"go-research/internal/shared/cache"
	"go-research/internal/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	store cache.Store,
) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	// --- Blob storage ---
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	storageDir := os.Getenv("STORAGE_DIR")
	if storageDir == "" {
		storageDir = "data/blobs"
	}
	signer := storage.NewSigner([]byte(jwtSecret), baseURL)
	blobs, err := storage.NewLocal(storageDir, signer)
	if err != nil {
		return err
	}

	// --- Repositories ---
	companyRepo := company.NewRepository(gormDB)
	reportRepo := report.NewRepository(gormDB)
	commentRepo := comment.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	// --- Services ---
	authService := auth.NewService(
		os.Getenv("ADMIN_USERNAME"),
		[]byte(os.Getenv("ADMIN_PASSWORD_HASH")),
		[]byte(jwtSecret),
	)
	reportService := report.NewService(gormDB, reportRepo, blobs, store, outboxRepo)
	companyService := company.NewService(gormDB, companyRepo, reportService, blobs, store, outboxRepo)
	commentService := comment.NewService(commentRepo, reportService, store)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	companyHandler := company.NewHandler(companyService)
	reportHandler := report.NewHandler(reportService)
	commentHandler := comment.NewHandler(commentService)
	storageHandler := storage.NewHandler(blobs, signer)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		company.RegisterRoutes(api, companyHandler)
		report.RegisterRoutes(api, reportHandler)
		comment.RegisterRoutes(api, commentHandler)
	}

	storage.RegisterRoutes(router, storageHandler)

	return nil
}
