package company

import (
	"net/http"
	"path/filepath"
	"strings"

	companyerrors "go-research/internal/company/errors"
	"go-research/internal/shared/apperror"
	"go-research/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxIconSize rejects oversized icons before any blob work happens.
const maxIconSize = 2 << 20 // 2MB

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("company.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("company.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	comp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	response.Success(c, http.StatusCreated, comp)
}

func (h *Handler) GetAll(c *gin.Context) {
	companies, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	response.Success(c, http.StatusOK, companies)
}

func (h *Handler) GetByID(c *gin.Context) {
	comp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	response.Success(c, http.StatusOK, comp)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	comp, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	response.Success(c, http.StatusOK, comp)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Error("delete company failed", zap.String("company_id", c.Param("id")), zap.Error(err))
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Reorder(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	if err := h.service.Reorder(c.Request.Context(), req.OrderUpdates); err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	response.Success(c, http.StatusOK, nil)
}

func (h *Handler) UploadIcon(c *gin.Context) {
	file, err := c.FormFile("icon")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Icon file is required")
		return
	}

	if file.Size > maxIconSize {
		httpErr := apperror.ToHTTP(companyerrors.ErrIconTooLarge)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		httpErr := apperror.ToHTTP(companyerrors.ErrIconNotImage)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Unable to read icon file")
		return
	}
	defer src.Close()

	comp, err := h.service.UploadIcon(c.Request.Context(), c.Param("id"), file.Filename, src)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	response.Success(c, http.StatusOK, comp)
}

func (h *Handler) RemoveIcon(c *gin.Context) {
	comp, err := h.service.RemoveIcon(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	response.Success(c, http.StatusOK, comp)
}
