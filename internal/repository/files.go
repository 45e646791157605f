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

type StatementFileRepository interface {
	Create(ctx context.Context, f *entity.StatementFile) (*entity.StatementFile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.StatementFile, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) (entity.Page[entity.StatementFile], error)
	Update(ctx context.Context, f *entity.StatementFile) (*entity.StatementFile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type statementFileRepo struct {
	db  DB
	log *slog.Logger
}

func NewStatementFileRepository(db DB, logger *slog.Logger) StatementFileRepository {
	return &statementFileRepo{db: db, log: logger}
}

const fileColumns = `id, bank_account_id, file_path, period_start, period_end, uploaded_by, uploaded_at, updated_at, updated_by`

func (r *statementFileRepo) Create(ctx context.Context, f *entity.StatementFile) (*entity.StatementFile, error) {
	if f.PeriodEnd.Before(f.PeriodStart) {
		return nil, &common.ValidationError{Field: "period_end", Message: "must not precede period_start"}
	}
	f.ID = uuid.New()
	f.UploadedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO statement_files (id, bank_account_id, file_path, period_start, period_end, uploaded_by, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.ID, f.BankAccountID, f.FilePath, f.PeriodStart, f.PeriodEnd, f.UploadedBy, f.UploadedAt)
	if err != nil {
		r.log.Error("failed to create statement file", "account_id", f.BankAccountID, "error", err)
		return nil, common.WrapError(err, "create statement file")
	}
	return f, nil
}

func (r *statementFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.StatementFile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+fileColumns+` FROM statement_files WHERE id = $1`, id)
	f, err := scanStatementFile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.log.Error("failed to get statement file", "file_id", id, "error", err)
		return nil, common.WrapError(err, "get statement file")
	}
	return f, nil
}

func (r *statementFileRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) (entity.Page[entity.StatementFile], error) {
	page := entity.Page[entity.StatementFile]{Items: []entity.StatementFile{}, Limit: limit, Offset: offset}

	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM statement_files WHERE bank_account_id = $1`, accountID).Scan(&page.Total); err != nil {
		return page, common.WrapError(err, "count statement files")
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+fileColumns+` FROM statement_files WHERE bank_account_id = $1 ORDER BY period_start DESC LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		r.log.Error("failed to list statement files", "account_id", accountID, "error", err)
		return page, common.WrapError(err, "list statement files")
	}
	defer rows.Close()

	for rows.Next() {
		f, err := scanStatementFile(rows)
		if err != nil {
			return page, common.WrapError(err, "scan statement file")
		}
		page.Items = append(page.Items, *f)
	}
	return page, rows.Err()
}

func (r *statementFileRepo) Update(ctx context.Context, f *entity.StatementFile) (*entity.StatementFile, error) {
	if f.PeriodEnd.Before(f.PeriodStart) {
		return nil, &common.ValidationError{Field: "period_end", Message: "must not precede period_start"}
	}
	now := time.Now().UTC()
	f.UpdatedAt = &now
	tag, err := r.db.Exec(ctx,
		`UPDATE statement_files SET file_path = $2, period_start = $3, period_end = $4, updated_at = $5, updated_by = $6
		 WHERE id = $1`,
		f.ID, f.FilePath, f.PeriodStart, f.PeriodEnd, f.UpdatedAt, f.UpdatedBy)
	if err != nil {
		r.log.Error("failed to update statement file", "file_id", f.ID, "error", err)
		return nil, common.WrapError(err, "update statement file")
	}
	if tag.RowsAffected() == 0 {
		return nil, common.ErrNotFound
	}
	return f, nil
}

// Delete removes the file record and, through ON DELETE CASCADE, its entries.
func (r *statementFileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM statement_files WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to delete statement file", "file_id", id, "error", err)
		return common.WrapError(err, "delete statement file")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanStatementFile(row pgx.Row) (*entity.StatementFile, error) {
	var f entity.StatementFile
	err := row.Scan(&f.ID, &f.BankAccountID, &f.FilePath, &f.PeriodStart, &f.PeriodEnd,
		&f.UploadedBy, &f.UploadedAt, &f.UpdatedAt, &f.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
