// AngelaMos | 2026
// repository.go

package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelamos/coursegate/internal/core"
)

type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id string) (*Item, error)
	GetBySlug(ctx context.Context, kind Kind, slug string) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListItemsParams, includeUnpublished bool) ([]Item, int, error)
	CountByKind(ctx context.Context) (map[Kind]int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO content_items
			(id, kind, slug, title, category, teaser, body, tier_required,
			 published, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, item, query,
		item.ID,
		item.Kind,
		item.Slug,
		item.Title,
		item.Category,
		item.Teaser,
		item.Body,
		item.TierRequired,
		item.Published,
		item.SortOrder,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create content item: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create content item: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Item, error) {
	query := `
		SELECT id, kind, slug, title, category, teaser, body, tier_required,
		       published, sort_order, created_at, updated_at
		FROM content_items
		WHERE id = $1`

	var item Item
	err := r.db.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get content item: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get content item: %w", err)
	}

	return &item, nil
}

func (r *repository) GetBySlug(
	ctx context.Context,
	kind Kind,
	slug string,
) (*Item, error) {
	query := `
		SELECT id, kind, slug, title, category, teaser, body, tier_required,
		       published, sort_order, created_at, updated_at
		FROM content_items
		WHERE kind = $1 AND slug = $2`

	var item Item
	err := r.db.GetContext(ctx, &item, query, kind, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get content item: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get content item: %w", err)
	}

	return &item, nil
}

func (r *repository) Update(ctx context.Context, item *Item) error {
	query := `
		UPDATE content_items
		SET title = $2, category = $3, teaser = $4, body = $5,
		    tier_required = $6, published = $7, sort_order = $8,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &item.UpdatedAt, query,
		item.ID,
		item.Title,
		item.Category,
		item.Teaser,
		item.Body,
		item.TierRequired,
		item.Published,
		item.SortOrder,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update content item: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update content item: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM content_items WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete content item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete content item: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete content item: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListItemsParams,
	includeUnpublished bool,
) ([]Item, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	if !includeUnpublished {
		conditions = append(conditions, "published = TRUE")
	}

	if params.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, params.Kind)
		argIdx++
	}

	if params.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, params.Category)
		argIdx++
	}

	whereClause := "TRUE"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM content_items WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count content items: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, kind, slug, title, category, teaser, body, tier_required,
		       published, sort_order, created_at, updated_at
		FROM content_items
		WHERE %s
		ORDER BY sort_order ASC, created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var items []Item
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list content items: %w", err)
	}

	return items, total, nil
}

func (r *repository) CountByKind(
	ctx context.Context,
) (map[Kind]int, error) {
	query := `
		SELECT kind, COUNT(*) AS count
		FROM content_items
		WHERE published = TRUE
		GROUP BY kind`

	var rows []struct {
		Kind  Kind `db:"kind"`
		Count int  `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count content items by kind: %w", err)
	}

	counts := make(map[Kind]int, len(rows))
	for _, row := range rows {
		counts[row.Kind] = row.Count
	}

	return counts, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
