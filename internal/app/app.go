package app

import (
	"os"

	"go-research/internal/shared/cache"
	"go-research/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BuildApp(router *gin.Engine) error {
	logger := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	if err := migrate(gormDB); err != nil {
		return err
	}

	// Without Redis the catalog still works; reads are cached in
	// process and invalidated the same way.
	var store cache.Store = cache.NewMemory()
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisClient, err := connection.ConnectRedisWithRetry(addr, 5)
		if err != nil {
			return err
		}
		store = cache.NewRedis(redisClient)
		logger.Info("redis connection established")
	} else {
		logger.Warn("REDIS_ADDR not set, using in-process cache")
	}

	return registerModules(router, gormDB, store)
}
