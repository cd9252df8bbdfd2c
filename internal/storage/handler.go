package storage

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"go-research/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves signed download URLs. The token is the whole credential;
// these routes sit outside the bearer-auth group.
type Handler struct {
	store  Store
	signer *Signer
	logger *zap.Logger
}

func NewHandler(store Store, signer *Signer, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("storage.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("storage.handler")
	}
	return &Handler{store: store, signer: signer, logger: l}
}

func (h *Handler) Download(c *gin.Context) {
	key, fileName, err := h.signer.Verify(c.Param("token"))
	if err != nil {
		response.Error(c, http.StatusForbidden, "Download link is invalid or has expired")
		return
	}

	blob, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		h.logger.Error("open blob failed", zap.String("key", key), zap.Error(err))
		response.Error(c, http.StatusNotFound, "File not found")
		return
	}
	defer blob.Close()

	contentType := mime.TypeByExtension(filepath.Ext(fileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, blob); err != nil {
		h.logger.Warn("stream blob interrupted", zap.String("key", key), zap.Error(err))
	}
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/files/:token", h.Download)
}
