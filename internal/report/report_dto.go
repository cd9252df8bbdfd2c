package report

import (
	"time"

	"go-research/internal/comment"
	"go-research/internal/shared/ordering"

	"github.com/dustin/go-humanize"
)

// CreateReportRequest carries the multipart form fields; the PDF itself
// arrives as the "file" part.
type CreateReportRequest struct {
	Title    string `form:"title" binding:"required"`
	Analyst  string `form:"analyst" binding:"required"`
	Category string `form:"category" binding:"required"`
}

// UpdateReportRequest updates metadata only. CreatedAt, when set,
// backdates the report for imported research; the file never changes.
type UpdateReportRequest struct {
	Title     string `json:"title"`
	Analyst   string `json:"analyst"`
	Category  string `json:"category"`
	CreatedAt string `json:"createdAt"`
}

type ReorderRequest struct {
	OrderUpdates []ordering.Update `json:"orderUpdates" binding:"required,min=1,dive"`
}

type ReportResponse struct {
	ID            string                    `json:"id"`
	CompanyID     string                    `json:"companyId"`
	Title         string                    `json:"title"`
	Analyst       string                    `json:"analyst"`
	Category      string                    `json:"category"`
	FileName      string                    `json:"fileName"`
	FileSize      string                    `json:"fileSize"`
	FileSizeBytes int64                     `json:"fileSizeBytes"`
	Order         *int                      `json:"order"`
	Comments      []comment.CommentResponse `json:"comments"`
	CreatedAt     string                    `json:"createdAt"`
	UpdatedAt     string                    `json:"updatedAt"`
}

type DownloadResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

func toResponse(r Report) ReportResponse {
	resp := ReportResponse{
		ID:            r.ID.String(),
		CompanyID:     r.CompanyID.String(),
		Title:         r.Title,
		Analyst:       r.Analyst,
		Category:      string(r.Category),
		FileName:      r.FileName,
		FileSize:      humanize.Bytes(uint64(r.FileSize)),
		FileSizeBytes: r.FileSize,
		Order:         r.DisplayOrder,
		Comments:      comment.ToListResponse(r.Comments),
	}
	if !r.CreatedAt.IsZero() {
		resp.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	if !r.UpdatedAt.IsZero() {
		resp.UpdatedAt = r.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func toListResponse(reports []Report) []ReportResponse {
	res := make([]ReportResponse, len(reports))
	for i, r := range reports {
		res[i] = toResponse(r)
	}
	return res
}
