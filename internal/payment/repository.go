// AngelaMos | 2026
// repository.go

package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/angelamos/coursegate/internal/core"
)

type Repository interface {
	Create(ctx context.Context, request *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	HasPendingForUser(ctx context.Context, userID string) (bool, error)
	Settle(ctx context.Context, request *Request) error
	List(ctx context.Context, params ListRequestsParams) ([]Request, int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, request *Request) error {
	query := `
		INSERT INTO payment_requests
			(id, user_id, requested_tier, reference, note, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &request.CreatedAt, query,
		request.ID,
		request.UserID,
		request.RequestedTier,
		request.Reference,
		request.Note,
		request.Status,
	)
	if err != nil {
		return fmt.Errorf("create payment request: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Request, error) {
	query := `
		SELECT id, user_id, requested_tier, reference, note, status,
		       reviewed_by, review_note, created_at, reviewed_at
		FROM payment_requests
		WHERE id = $1`

	var request Request
	err := r.db.GetContext(ctx, &request, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get payment request: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get payment request: %w", err)
	}

	return &request, nil
}

func (r *repository) HasPendingForUser(
	ctx context.Context,
	userID string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM payment_requests
			WHERE user_id = $1 AND status = 'pending'
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID); err != nil {
		return false, fmt.Errorf("check pending payment request: %w", err)
	}

	return exists, nil
}

// Settle records the review outcome. The pending-status guard makes review
// idempotent under concurrent admins: only one settle wins.
func (r *repository) Settle(ctx context.Context, request *Request) error {
	query := `
		UPDATE payment_requests
		SET status = $2, reviewed_by = $3, review_note = $4, reviewed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING reviewed_at`

	err := r.db.GetContext(ctx, &request.ReviewedAt, query,
		request.ID,
		request.Status,
		request.ReviewedBy,
		request.ReviewNote,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("settle payment request: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("settle payment request: %w", err)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListRequestsParams,
) ([]Request, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	if params.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, params.UserID)
		argIdx++
	}

	whereClause := "TRUE"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM payment_requests WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payment requests: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, requested_tier, reference, note, status,
		       reviewed_by, review_note, created_at, reviewed_at
		FROM payment_requests
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var requests []Request
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payment requests: %w", err)
	}

	return requests, total, nil
}

func (r *repository) CountByStatus(
	ctx context.Context,
) (map[Status]int, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM payment_requests
		GROUP BY status`

	var rows []struct {
		Status Status `db:"status"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count payment requests by status: %w", err)
	}

	counts := make(map[Status]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}
