package repository

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/reamshq/statement-parser/internal/common"
	"github.com/reamshq/statement-parser/internal/entity"
)

type CategoryRepository interface {
	Create(ctx context.Context, c *entity.Category) (*entity.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	List(ctx context.Context, limit, offset int, includeInactive bool) (entity.Page[entity.Category], error)
	Update(ctx context.Context, c *entity.Category) (*entity.Category, error)
	Deactivate(ctx context.Context, id uuid.UUID, by string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryRepo struct {
	db  DB
	log *slog.Logger
}

func NewCategoryRepository(db DB, logger *slog.Logger) CategoryRepository {
	return &categoryRepo{db: db, log: logger}
}

const categoryColumns = `id, name, identification_regex, color, is_active, description, created_by, created_at, updated_at, updated_by`

func (r *categoryRepo) Create(ctx context.Context, c *entity.Category) (*entity.Category, error) {
	if err := validateCategoryRegex(c.IdentificationRegex); err != nil {
		return nil, err
	}
	c.ID = uuid.New()
	c.IsActive = true
	c.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO categories (id, name, identification_regex, color, is_active, description, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Name, c.IdentificationRegex, c.Color, c.IsActive, c.Description, c.CreatedBy, c.CreatedAt)
	if err != nil {
		r.log.Error("failed to create category", "name", c.Name, "error", err)
		return nil, common.WrapError(err, "create category")
	}
	return c, nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	row := r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.log.Error("failed to get category", "category_id", id, "error", err)
		return nil, common.WrapError(err, "get category")
	}
	return c, nil
}

func (r *categoryRepo) List(ctx context.Context, limit, offset int, includeInactive bool) (entity.Page[entity.Category], error) {
	page := entity.Page[entity.Category]{Items: []entity.Category{}, Limit: limit, Offset: offset}

	filter := ` WHERE is_active = TRUE`
	if includeInactive {
		filter = ``
	}
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM categories`+filter).Scan(&page.Total); err != nil {
		return page, common.WrapError(err, "count categories")
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories`+filter+` ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		r.log.Error("failed to list categories", "error", err)
		return page, common.WrapError(err, "list categories")
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return page, common.WrapError(err, "scan category")
		}
		page.Items = append(page.Items, *c)
	}
	return page, rows.Err()
}

func (r *categoryRepo) Update(ctx context.Context, c *entity.Category) (*entity.Category, error) {
	if err := validateCategoryRegex(c.IdentificationRegex); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c.UpdatedAt = &now
	tag, err := r.db.Exec(ctx,
		`UPDATE categories SET name = $2, identification_regex = $3, color = $4, description = $5, updated_at = $6, updated_by = $7
		 WHERE id = $1`,
		c.ID, c.Name, c.IdentificationRegex, c.Color, c.Description, c.UpdatedAt, c.UpdatedBy)
	if err != nil {
		r.log.Error("failed to update category", "category_id", c.ID, "error", err)
		return nil, common.WrapError(err, "update category")
	}
	if tag.RowsAffected() == 0 {
		return nil, common.ErrNotFound
	}
	return c, nil
}

func (r *categoryRepo) Deactivate(ctx context.Context, id uuid.UUID, by string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE categories SET is_active = FALSE, updated_at = $2, updated_by = $3 WHERE id = $1`,
		id, time.Now().UTC(), by)
	if err != nil {
		r.log.Error("failed to deactivate category", "category_id", id, "error", err)
		return common.WrapError(err, "deactivate category")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to delete category", "category_id", id, "error", err)
		return common.WrapError(err, "delete category")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// validateCategoryRegex rejects patterns that would panic auto-categorization
// later. Stored patterns are compiled on every match pass, so they must be
// valid at write time.
func validateCategoryRegex(pattern *string) error {
	if pattern == nil || *pattern == "" {
		return nil
	}
	if _, err := regexp.Compile(*pattern); err != nil {
		return &common.ValidationError{Field: "identification_regex", Message: err.Error()}
	}
	return nil
}

func scanCategory(row pgx.Row) (*entity.Category, error) {
	var c entity.Category
	err := row.Scan(&c.ID, &c.Name, &c.IdentificationRegex, &c.Color, &c.IsActive,
		&c.Description, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt, &c.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
