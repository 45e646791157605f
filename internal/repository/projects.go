package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/reamshq/statement-parser/internal/common"
	"github.com/reamshq/statement-parser/internal/entity"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) (*entity.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	List(ctx context.Context, limit, offset int, includeInactive bool) (entity.Page[entity.Project], error)
	Update(ctx context.Context, p *entity.Project) (*entity.Project, error)
	Deactivate(ctx context.Context, id uuid.UUID, by string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type projectRepo struct {
	db  DB
	log *slog.Logger
}

func NewProjectRepository(db DB, logger *slog.Logger) ProjectRepository {
	return &projectRepo{db: db, log: logger}
}

const projectColumns = `id, name, developer_name, investor_name, is_activated, remarks, created_by, created_at, updated_at, updated_by`

func (r *projectRepo) Create(ctx context.Context, p *entity.Project) (*entity.Project, error) {
	p.ID = uuid.New()
	p.IsActivated = true
	p.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO projects (id, name, developer_name, investor_name, is_activated, remarks, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Name, p.DeveloperName, p.InvestorName, p.IsActivated, p.Remarks, p.CreatedBy, p.CreatedAt)
	if err != nil {
		r.log.Error("failed to create project", "name", p.Name, "error", err)
		return nil, common.WrapError(err, "create project")
	}
	return p, nil
}

func (r *projectRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	row := r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.log.Error("failed to get project", "project_id", id, "error", err)
		return nil, common.WrapError(err, "get project")
	}
	return p, nil
}

func (r *projectRepo) List(ctx context.Context, limit, offset int, includeInactive bool) (entity.Page[entity.Project], error) {
	page := entity.Page[entity.Project]{Items: []entity.Project{}, Limit: limit, Offset: offset}

	filter := ` WHERE is_activated = TRUE`
	if includeInactive {
		filter = ``
	}
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM projects`+filter).Scan(&page.Total); err != nil {
		return page, common.WrapError(err, "count projects")
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+projectColumns+` FROM projects`+filter+` ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		r.log.Error("failed to list projects", "error", err)
		return page, common.WrapError(err, "list projects")
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return page, common.WrapError(err, "scan project")
		}
		page.Items = append(page.Items, *p)
	}
	return page, rows.Err()
}

func (r *projectRepo) Update(ctx context.Context, p *entity.Project) (*entity.Project, error) {
	now := time.Now().UTC()
	p.UpdatedAt = &now
	tag, err := r.db.Exec(ctx,
		`UPDATE projects SET name = $2, developer_name = $3, investor_name = $4, remarks = $5, updated_at = $6, updated_by = $7
		 WHERE id = $1`,
		p.ID, p.Name, p.DeveloperName, p.InvestorName, p.Remarks, p.UpdatedAt, p.UpdatedBy)
	if err != nil {
		r.log.Error("failed to update project", "project_id", p.ID, "error", err)
		return nil, common.WrapError(err, "update project")
	}
	if tag.RowsAffected() == 0 {
		return nil, common.ErrNotFound
	}
	return p, nil
}

// Deactivate is the soft delete: the row stays queryable but drops out of
// default listings.
func (r *projectRepo) Deactivate(ctx context.Context, id uuid.UUID, by string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE projects SET is_activated = FALSE, updated_at = $2, updated_by = $3 WHERE id = $1`,
		id, time.Now().UTC(), by)
	if err != nil {
		r.log.Error("failed to deactivate project", "project_id", id, "error", err)
		return common.WrapError(err, "deactivate project")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *projectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to delete project", "project_id", id, "error", err)
		return common.WrapError(err, "delete project")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanProject(row pgx.Row) (*entity.Project, error) {
	var p entity.Project
	err := row.Scan(&p.ID, &p.Name, &p.DeveloperName, &p.InvestorName, &p.IsActivated,
		&p.Remarks, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt, &p.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
