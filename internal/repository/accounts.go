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

type BankAccountRepository interface {
	Create(ctx context.Context, a *entity.BankAccount) (*entity.BankAccount, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.BankAccount, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) (entity.Page[entity.BankAccount], error)
	Update(ctx context.Context, a *entity.BankAccount) (*entity.BankAccount, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type bankAccountRepo struct {
	db  DB
	log *slog.Logger
}

func NewBankAccountRepository(db DB, logger *slog.Logger) BankAccountRepository {
	return &bankAccountRepo{db: db, log: logger}
}

const accountColumns = `id, project_id, account_number, bank_name, color, account_type, created_by, created_at, updated_at, updated_by`

func (r *bankAccountRepo) Create(ctx context.Context, a *entity.BankAccount) (*entity.BankAccount, error) {
	a.ID = uuid.New()
	a.AccountNumber = maskAccountNumber(a.AccountNumber)
	a.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO bank_accounts (id, project_id, account_number, bank_name, color, account_type, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.ProjectID, a.AccountNumber, a.BankName, a.Color, a.AccountType, a.CreatedBy, a.CreatedAt)
	if err != nil {
		r.log.Error("failed to create bank account", "project_id", a.ProjectID, "error", err)
		return nil, common.WrapError(err, "create bank account")
	}
	return a, nil
}

func (r *bankAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.BankAccount, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM bank_accounts WHERE id = $1`, id)
	a, err := scanBankAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.log.Error("failed to get bank account", "account_id", id, "error", err)
		return nil, common.WrapError(err, "get bank account")
	}
	return a, nil
}

func (r *bankAccountRepo) ListByProject(ctx context.Context, projectID uuid.UUID, limit, offset int) (entity.Page[entity.BankAccount], error) {
	page := entity.Page[entity.BankAccount]{Items: []entity.BankAccount{}, Limit: limit, Offset: offset}

	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM bank_accounts WHERE project_id = $1`, projectID).Scan(&page.Total); err != nil {
		return page, common.WrapError(err, "count bank accounts")
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts WHERE project_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		projectID, limit, offset)
	if err != nil {
		r.log.Error("failed to list bank accounts", "project_id", projectID, "error", err)
		return page, common.WrapError(err, "list bank accounts")
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanBankAccount(rows)
		if err != nil {
			return page, common.WrapError(err, "scan bank account")
		}
		page.Items = append(page.Items, *a)
	}
	return page, rows.Err()
}

func (r *bankAccountRepo) Update(ctx context.Context, a *entity.BankAccount) (*entity.BankAccount, error) {
	now := time.Now().UTC()
	a.UpdatedAt = &now
	a.AccountNumber = maskAccountNumber(a.AccountNumber)
	tag, err := r.db.Exec(ctx,
		`UPDATE bank_accounts SET account_number = $2, bank_name = $3, color = $4, account_type = $5, updated_at = $6, updated_by = $7
		 WHERE id = $1`,
		a.ID, a.AccountNumber, a.BankName, a.Color, a.AccountType, a.UpdatedAt, a.UpdatedBy)
	if err != nil {
		r.log.Error("failed to update bank account", "account_id", a.ID, "error", err)
		return nil, common.WrapError(err, "update bank account")
	}
	if tag.RowsAffected() == 0 {
		return nil, common.ErrNotFound
	}
	return a, nil
}

func (r *bankAccountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bank_accounts WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to delete bank account", "account_id", id, "error", err)
		return common.WrapError(err, "delete bank account")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// maskAccountNumber keeps only the last four digits at rest.
func maskAccountNumber(n string) string {
	if len(n) <= 4 {
		return n
	}
	return "****" + n[len(n)-4:]
}

func scanBankAccount(row pgx.Row) (*entity.BankAccount, error) {
	var a entity.BankAccount
	err := row.Scan(&a.ID, &a.ProjectID, &a.AccountNumber, &a.BankName, &a.Color,
		&a.AccountType, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt, &a.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
