// AngelaMos | 2026
// service.go

package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/angelamos/coursegate/internal/core"
	"github.com/angelamos/coursegate/internal/tier"
	"github.com/angelamos/coursegate/internal/user"
)

var (
	ErrPendingExists  = errors.New("pending payment request exists")
	ErrAlreadySettled = errors.New("payment request already settled")
	ErrNotAnUpgrade   = errors.New("requested tier is not an upgrade")
)

// TierUpdater is the slice of the user service needed to apply an approved
// upgrade.
type TierUpdater interface {
	UpdateUserTier(
		ctx context.Context,
		id string,
		newTier tier.Tier,
	) (*user.User, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
}

type Service struct {
	repo  Repository
	users TierUpdater
}

func NewService(repo Repository, users TierUpdater) *Service {
	return &Service{repo: repo, users: users}
}

// Submit files an upgrade request. One pending request per user: a second
// submission is rejected until an admin settles the first.
func (s *Service) Submit(
	ctx context.Context,
	userID string,
	req SubmitRequest,
) (*RequestResponse, error) {
	requestedTier := tier.Tier(req.RequestedTier)
	if !tier.Valid(requestedTier) {
		return nil, fmt.Errorf(
			"submit payment request: invalid tier %q: %w",
			req.RequestedTier,
			core.ErrInvalidInput,
		)
	}

	current, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	currentRank, err := tier.Rank(current.Tier)
	if err != nil {
		return nil, fmt.Errorf("submit payment request: %w", err)
	}
	requestedRank, err := tier.Rank(requestedTier)
	if err != nil {
		return nil, fmt.Errorf("submit payment request: %w", err)
	}
	if requestedRank <= currentRank {
		return nil, ErrNotAnUpgrade
	}

	pending, err := s.repo.HasPendingForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrPendingExists
	}

	request := &Request{
		ID:            uuid.New().String(),
		UserID:        userID,
		RequestedTier: requestedTier,
		Reference:     req.Reference,
		Note:          req.Note,
		Status:        StatusPending,
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, err
	}

	resp := toResponse(request)
	return &resp, nil
}

// Review settles a pending request. Approval upgrades the user's tier; the
// tier write happens before the request is marked settled so a crash leaves
// a re-reviewable request rather than a paid user without access.
func (s *Service) Review(
	ctx context.Context,
	requestID, reviewerID string,
	req ReviewRequest,
) (*RequestResponse, error) {
	request, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.IsSettled() {
		return nil, ErrAlreadySettled
	}

	if req.Approve {
		if _, err := s.users.UpdateUserTier(
			ctx,
			request.UserID,
			request.RequestedTier,
		); err != nil {
			return nil, fmt.Errorf("apply tier upgrade: %w", err)
		}
		request.Status = StatusApproved
	} else {
		request.Status = StatusRejected
	}

	request.ReviewedBy = &reviewerID
	request.ReviewNote = req.ReviewNote

	if err := s.repo.Settle(ctx, request); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Another admin settled it between our read and write.
			return nil, ErrAlreadySettled
		}
		return nil, err
	}

	slog.Info("payment request settled",
		"request_id", request.ID,
		"user_id", request.UserID,
		"status", request.Status,
		"reviewed_by", reviewerID,
	)

	resp := toResponse(request)
	return &resp, nil
}

func (s *Service) GetRequest(
	ctx context.Context,
	id string,
) (*RequestResponse, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := toResponse(request)
	return &resp, nil
}

func (s *Service) ListRequests(
	ctx context.Context,
	params ListRequestsParams,
) (*ListResponse, error) {
	params.Normalize()

	requests, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	resps := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		resps = append(resps, toResponse(&requests[i]))
	}

	return &ListResponse{
		Requests: resps,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

func (s *Service) ListForUser(
	ctx context.Context,
	userID string,
	page, pageSize int,
) (*ListResponse, error) {
	return s.ListRequests(ctx, ListRequestsParams{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
}

func (s *Service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx)
}
