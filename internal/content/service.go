// AngelaMos | 2026
// service.go

package content

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelamos/coursegate/internal/core"
	"github.com/angelamos/coursegate/internal/tier"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// BrowseItems lists published items projected for the viewer. Locked items
// stay in the listing so the catalog shows what signing in or upgrading
// unlocks.
func (s *Service) BrowseItems(
	ctx context.Context,
	viewer Viewer,
	params ListItemsParams,
) (*ListResponse, error) {
	params.Normalize()

	items, total, err := s.repo.List(ctx, params, false)
	if err != nil {
		return nil, fmt.Errorf("browse items: %w", err)
	}

	views := make([]View, 0, len(items))
	for i := range items {
		views = append(views, Resolve(viewer, &items[i]))
	}

	return &ListResponse{
		Items:    views,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

// ViewItem resolves a single published item for the viewer. An unpublished
// item is reported as not found rather than locked, so drafts stay invisible.
func (s *Service) ViewItem(
	ctx context.Context,
	viewer Viewer,
	kind Kind,
	slug string,
) (*View, error) {
	item, err := s.repo.GetBySlug(ctx, kind, slug)
	if err != nil {
		return nil, err
	}

	if !item.Published {
		return nil, fmt.Errorf("view item: %w", core.ErrNotFound)
	}

	view := Resolve(viewer, item)
	return &view, nil
}

func (s *Service) CreateItem(
	ctx context.Context,
	req CreateItemRequest,
) (*AdminItemResponse, error) {
	requiredTier := tier.Tier(req.TierRequired)
	if !tier.Valid(requiredTier) {
		return nil, fmt.Errorf("create item: invalid tier %q", req.TierRequired)
	}

	item := &Item{
		ID:           uuid.New().String(),
		Kind:         Kind(req.Kind),
		Slug:         req.Slug,
		Title:        req.Title,
		Category:     req.Category,
		Teaser:       req.Teaser,
		Body:         req.Body,
		TierRequired: requiredTier,
		Published:    req.Published,
		SortOrder:    req.SortOrder,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	resp := toAdminResponse(item)
	return &resp, nil
}

func (s *Service) GetItem(
	ctx context.Context,
	id string,
) (*AdminItemResponse, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := toAdminResponse(item)
	return &resp, nil
}

func (s *Service) UpdateItem(
	ctx context.Context,
	id string,
	req UpdateItemRequest,
) (*AdminItemResponse, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Teaser != nil {
		item.Teaser = *req.Teaser
	}
	if req.Body != nil {
		item.Body = *req.Body
	}
	if req.TierRequired != nil {
		requiredTier := tier.Tier(*req.TierRequired)
		if !tier.Valid(requiredTier) {
			return nil, fmt.Errorf(
				"update item: invalid tier %q",
				*req.TierRequired,
			)
		}
		item.TierRequired = requiredTier
	}
	if req.Published != nil {
		item.Published = *req.Published
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	resp := toAdminResponse(item)
	return &resp, nil
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListAll(
	ctx context.Context,
	params ListItemsParams,
) ([]AdminItemResponse, int, error) {
	params.Normalize()

	items, total, err := s.repo.List(ctx, params, true)
	if err != nil {
		return nil, 0, fmt.Errorf("list all items: %w", err)
	}

	resps := make([]AdminItemResponse, 0, len(items))
	for i := range items {
		resps = append(resps, toAdminResponse(&items[i]))
	}

	return resps, total, nil
}

func (s *Service) CountByKind(ctx context.Context) (map[Kind]int, error) {
	return s.repo.CountByKind(ctx)
}
