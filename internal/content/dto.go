// AngelaMos | 2026
// dto.go

package content

import (
	"github.com/angelamos/coursegate/internal/tier"
)

type CreateItemRequest struct {
	Kind         string `json:"kind"          validate:"required,oneof=course tool blog"`
	Slug         string `json:"slug"          validate:"required,min=1,max=120"`
	Title        string `json:"title"         validate:"required,min=1,max=200"`
	Category     string `json:"category"      validate:"omitempty,max=80"`
	Teaser       string `json:"teaser"        validate:"omitempty,max=500"`
	Body         string `json:"body"          validate:"omitempty"`
	TierRequired string `json:"tier_required" validate:"required,oneof=free tier1 tier2"`
	Published    bool   `json:"published"`
	SortOrder    int    `json:"sort_order"    validate:"min=0"`
}

type UpdateItemRequest struct {
	Title        *string `json:"title"         validate:"omitempty,min=1,max=200"`
	Category     *string `json:"category"      validate:"omitempty,max=80"`
	Teaser       *string `json:"teaser"        validate:"omitempty,max=500"`
	Body         *string `json:"body"          validate:"omitempty"`
	TierRequired *string `json:"tier_required" validate:"omitempty,oneof=free tier1 tier2"`
	Published    *bool   `json:"published"`
	SortOrder    *int    `json:"sort_order"    validate:"omitempty,min=0"`
}

type ListItemsParams struct {
	Kind     Kind
	Category string
	Page     int
	PageSize int
}

func (p *ListItemsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}
}

func (p *ListItemsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type ListResponse struct {
	Items    []View `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// AdminItemResponse exposes the full record, body and publication state
// included, for the management surface.
type AdminItemResponse struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Teaser       string    `json:"teaser"`
	Body         string    `json:"body"`
	TierRequired tier.Tier `json:"tier_required"`
	Published    bool      `json:"published"`
	SortOrder    int       `json:"sort_order"`
}

func toAdminResponse(item *Item) AdminItemResponse {
	return AdminItemResponse{
		ID:           item.ID,
		Kind:         item.Kind,
		Slug:         item.Slug,
		Title:        item.Title,
		Category:     item.Category,
		Teaser:       item.Teaser,
		Body:         item.Body,
		TierRequired: item.TierRequired,
		Published:    item.Published,
		SortOrder:    item.SortOrder,
	}
}
