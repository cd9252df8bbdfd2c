package company

import (
	"go-research/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
) {
	companies := r.Group("/companies")

	companies.Use(middleware.AuthMiddleware())

	{
		companies.GET("", h.GetAll)
		companies.POST("", h.Create)
		companies.POST("/reorder", h.Reorder)
		companies.GET("/:id", h.GetByID)
		companies.PUT("/:id", h.Update)
		companies.DELETE("/:id", h.Delete)
		companies.POST("/:id/icon", middleware.RateLimitByIP(2, 5), h.UploadIcon)
		companies.DELETE("/:id/icon", h.RemoveIcon)
	}
}
