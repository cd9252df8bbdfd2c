package comment

import "time"

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentResponse struct {
	ID        string `json:"id"`
	ReportID  string `json:"reportId"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func ToResponse(c Comment) CommentResponse {
	resp := CommentResponse{
		ID:       c.ID.String(),
		ReportID: c.ReportID.String(),
		Content:  c.Content,
	}
	if !c.CreatedAt.IsZero() {
		resp.CreatedAt = c.CreatedAt.Format(time.RFC3339)
	}
	if !c.UpdatedAt.IsZero() {
		resp.UpdatedAt = c.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

// ToListResponse keeps the createdAt-asc order the repository returns.
func ToListResponse(comments []Comment) []CommentResponse {
	res := make([]CommentResponse, len(comments))
	for i, c := range comments {
		res[i] = ToResponse(c)
	}
	return res
}
