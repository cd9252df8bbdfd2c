package comment

import (
	"go-research/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
) {
	comments := r.Group("/reports/:companyId/:reportId/comments")

	comments.Use(middleware.AuthMiddleware())

	{
		comments.POST("", h.Create)
		comments.PUT("/:commentId", h.Update)
		comments.DELETE("/:commentId", h.Delete)
	}
}
