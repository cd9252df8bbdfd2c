package report

import (
	"net/http"
	"path/filepath"
	"strings"

	reporterrors "go-research/internal/report/errors"
	"go-research/internal/shared/apperror"
	"go-research/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxReportSize rejects oversized uploads before any blob work happens.
const maxReportSize = 50 << 20 // 50MB

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("report.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("report.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) ListByCompany(c *gin.Context) {
	reports, err := h.service.ListByCompany(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	response.Success(c, http.StatusOK, reports)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBind(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Report file is required")
		return
	}

	if file.Size > maxReportSize {
		httpErr := apperror.ToHTTP(reporterrors.ErrFileTooLarge)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		httpErr := apperror.ToHTTP(reporterrors.ErrFileNotPDF)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Unable to read report file")
		return
	}
	defer src.Close()

	rep, err := h.service.Create(c.Request.Context(), c.Param("id"), req, file.Filename, file.Size, src)
	if err != nil {
		h.logger.Error("create report failed", zap.String("company_id", c.Param("id")), zap.Error(err))
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	response.Success(c, http.StatusCreated, rep)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	rep, err := h.service.UpdateMetadata(c.Request.Context(), c.Param("companyId"), c.Param("reportId"), req)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	response.Success(c, http.StatusOK, rep)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("companyId"), c.Param("reportId")); err != nil {
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

	if err := h.service.Reorder(c.Request.Context(), c.Param("id"), req.OrderUpdates); err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	response.Success(c, http.StatusOK, nil)
}

func (h *Handler) Download(c *gin.Context) {
	resp, err := h.service.DownloadURL(c.Request.Context(), c.Param("companyId"), c.Param("reportId"))
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	response.Success(c, http.StatusOK, resp)
}
