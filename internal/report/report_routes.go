package report

import (
	"go-research/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
) {
	companyReports := r.Group("/companies/:id/reports")

	companyReports.Use(middleware.AuthMiddleware())

	{
		companyReports.GET("", h.ListByCompany)
		companyReports.POST("", middleware.RateLimitByIP(2, 5), h.Create)
		companyReports.POST("/reorder", h.Reorder)
	}

	reports := r.Group("/reports/:companyId/:reportId")

	reports.Use(middleware.AuthMiddleware())

	{
		reports.PUT("", h.Update)
		reports.DELETE("", h.Delete)
		reports.GET("/download", h.Download)
	}
}
