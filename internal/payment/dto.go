// AngelaMos | 2026
// dto.go

package payment

import (
	"time"

	"github.com/angelamos/coursegate/internal/tier"
)

type SubmitRequest struct {
	RequestedTier string `json:"requested_tier" validate:"required,oneof=tier1 tier2"`
	Reference     string `json:"reference"      validate:"required,min=1,max=200"`
	Note          string `json:"note"           validate:"omitempty,max=1000"`
}

type ReviewRequest struct {
	Approve    bool   `json:"approve"`
	ReviewNote string `json:"review_note" validate:"omitempty,max=1000"`
}

type RequestResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	RequestedTier tier.Tier  `json:"requested_tier"`
	Reference     string     `json:"reference"`
	Note          string     `json:"note,omitempty"`
	Status        Status     `json:"status"`
	ReviewNote    string     `json:"review_note,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
}

type ListRequestsParams struct {
	Status   Status
	UserID   string
	Page     int
	PageSize int
}

func (p *ListRequestsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}
}

func (p *ListRequestsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type ListResponse struct {
	Requests []RequestResponse `json:"requests"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

func toResponse(r *Request) RequestResponse {
	return RequestResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		RequestedTier: r.RequestedTier,
		Reference:     r.Reference,
		Note:          r.Note,
		Status:        r.Status,
		ReviewNote:    r.ReviewNote,
		CreatedAt:     r.CreatedAt,
		ReviewedAt:    r.ReviewedAt,
	}
}
