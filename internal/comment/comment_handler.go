package comment

import (
	"net/http"

	"go-research/internal/shared/apperror"
	"go-research/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("comment.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("comment.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	comments, err := h.service.Create(c.Request.Context(), c.Param("companyId"), c.Param("reportId"), req)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	response.Success(c, http.StatusCreated, comments)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	comments, err := h.service.Update(c.Request.Context(), c.Param("companyId"), c.Param("reportId"), c.Param("commentId"), req)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	response.Success(c, http.StatusOK, comments)
}

func (h *Handler) Delete(c *gin.Context) {
	comments, err := h.service.Delete(c.Request.Context(), c.Param("companyId"), c.Param("reportId"), c.Param("commentId"))
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Message)
		return
	}

	response.Success(c, http.StatusOK, comments)
}
