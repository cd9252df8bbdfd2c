package company

import "go-research/internal/shared/ordering"

type CreateCompanyRequest struct {
	Name        string `json:"name" binding:"required"`
	Code        string `json:"code" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
}

// Description is a pointer so an explicit "" clears the field while an
// absent key leaves it unchanged.
type UpdateCompanyRequest struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Type        string  `json:"type"`
	Description *string `json:"description"`
}

type ReorderRequest struct {
	OrderUpdates []ordering.Update `json:"orderUpdates" binding:"required,min=1,dive"`
}

type CompanyResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Type        string `json:"type"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl,omitempty"`
	Order       *int   `json:"order"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}
