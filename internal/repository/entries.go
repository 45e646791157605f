package repository

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/reamshq/statement-parser/internal/common"
	"github.com/reamshq/statement-parser/internal/entity"
)

// EntryFilter narrows List results. Zero-value fields are ignored.
type EntryFilter struct {
	StatementFileID *uuid.UUID
	BankAccountID   *uuid.UUID
	CategoryID      *uuid.UUID
	DateFrom        *time.Time
	DateTo          *time.Time
}

type StatementEntryRepository interface {
	Create(ctx context.Context, e *entity.StatementEntry) (*entity.StatementEntry, error)
	CreateBatch(ctx context.Context, entries []entity.StatementEntry) ([]entity.StatementEntry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.StatementEntry, error)
	List(ctx context.Context, filter EntryFilter, limit, offset int) (entity.Page[entity.StatementEntry], error)
	Update(ctx context.Context, e *entity.StatementEntry) (*entity.StatementEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ReplaceSplits(ctx context.Context, entryID uuid.UUID, splits []entity.EntrySplit) ([]entity.EntrySplit, error)
	ListSplits(ctx context.Context, entryID uuid.UUID) ([]entity.EntrySplit, error)
}

type statementEntryRepo struct {
	db  DB
	log *slog.Logger
}

func NewStatementEntryRepository(db DB, logger *slog.Logger) StatementEntryRepository {
	return &statementEntryRepo{db: db, log: logger}
}

const entryColumns = `id, statement_file_id, bank_account_id, category_id, date, description, transaction_reference, debit_credit, amount, balance, notes, created_at, updated_at, updated_by`

const insertEntrySQL = `INSERT INTO statement_entries
	(id, statement_file_id, bank_account_id, category_id, date, description, transaction_reference, debit_credit, amount, balance, notes, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

func (r *statementEntryRepo) Create(ctx context.Context, e *entity.StatementEntry) (*entity.StatementEntry, error) {
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx, insertEntrySQL,
		e.ID, e.StatementFileID, e.BankAccountID, e.CategoryID, e.Date, e.Description,
		e.Reference, e.DebitCredit, e.Amount, e.Balance, e.Notes, e.CreatedAt)
	if err != nil {
		r.log.Error("failed to create entry", "file_id", e.StatementFileID, "error", err)
		return nil, common.WrapError(err, "create entry")
	}
	return e, nil
}

// CreateBatch inserts parsed statement transactions row by row. Imports run
// a few hundred rows at most, so a COPY pipeline is not worth the setup.
func (r *statementEntryRepo) CreateBatch(ctx context.Context, entries []entity.StatementEntry) ([]entity.StatementEntry, error) {
	now := time.Now().UTC()
	out := make([]entity.StatementEntry, 0, len(entries))
	for _, e := range entries {
		e.ID = uuid.New()
		e.CreatedAt = now
		_, err := r.db.Exec(ctx, insertEntrySQL,
			e.ID, e.StatementFileID, e.BankAccountID, e.CategoryID, e.Date, e.Description,
			e.Reference, e.DebitCredit, e.Amount, e.Balance, e.Notes, e.CreatedAt)
		if err != nil {
			r.log.Error("failed to batch insert entry", "file_id", e.StatementFileID, "inserted", len(out), "error", err)
			return nil, common.WrapError(err, "batch insert entries")
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *statementEntryRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.StatementEntry, error) {
	row := r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM statement_entries WHERE id = $1`, id)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.log.Error("failed to get entry", "entry_id", id, "error", err)
		return nil, common.WrapError(err, "get entry")
	}
	return e, nil
}

func (r *statementEntryRepo) List(ctx context.Context, filter EntryFilter, limit, offset int) (entity.Page[entity.StatementEntry], error) {
	page := entity.Page[entity.StatementEntry]{Items: []entity.StatementEntry{}, Limit: limit, Offset: offset}

	where, args := buildEntryFilter(filter)

	countArgs := make([]any, len(args))
	copy(countArgs, args)
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM statement_entries`+where, countArgs...).Scan(&page.Total); err != nil {
		return page, common.WrapError(err, "count entries")
	}

	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx,
		`SELECT `+entryColumns+` FROM statement_entries`+where+
			` ORDER BY date, created_at LIMIT `+placeholder(len(args)-1)+` OFFSET `+placeholder(len(args)),
		args...)
	if err != nil {
		r.log.Error("failed to list entries", "error", err)
		return page, common.WrapError(err, "list entries")
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return page, common.WrapError(err, "scan entry")
		}
		page.Items = append(page.Items, *e)
	}
	return page, rows.Err()
}

func (r *statementEntryRepo) Update(ctx context.Context, e *entity.StatementEntry) (*entity.StatementEntry, error) {
	now := time.Now().UTC()
	e.UpdatedAt = &now
	tag, err := r.db.Exec(ctx,
		`UPDATE statement_entries SET category_id = $2, date = $3, description = $4, transaction_reference = $5,
		 debit_credit = $6, amount = $7, balance = $8, notes = $9, updated_at = $10, updated_by = $11
		 WHERE id = $1`,
		e.ID, e.CategoryID, e.Date, e.Description, e.Reference,
		e.DebitCredit, e.Amount, e.Balance, e.Notes, e.UpdatedAt, e.UpdatedBy)
	if err != nil {
		r.log.Error("failed to update entry", "entry_id", e.ID, "error", err)
		return nil, common.WrapError(err, "update entry")
	}
	if tag.RowsAffected() == 0 {
		return nil, common.ErrNotFound
	}
	return e, nil
}

func (r *statementEntryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM statement_entries WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to delete entry", "entry_id", id, "error", err)
		return common.WrapError(err, "delete entry")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// ReplaceSplits swaps an entry's split set atomically from the caller's point
// of view: old rows go, new rows come in with fresh ids. Split amounts must
// sum to the entry amount.
func (r *statementEntryRepo) ReplaceSplits(ctx context.Context, entryID uuid.UUID, splits []entity.EntrySplit) ([]entity.EntrySplit, error) {
	entry, err := r.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	sum := decimal.Zero
	for _, s := range splits {
		sum = sum.Add(s.Amount)
	}
	if len(splits) > 0 && !sum.Equal(entry.Amount) {
		return nil, &common.ValidationError{Field: "splits", Message: "split amounts must sum to the entry amount"}
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM entry_splits WHERE entry_id = $1`, entryID); err != nil {
		r.log.Error("failed to clear splits", "entry_id", entryID, "error", err)
		return nil, common.WrapError(err, "clear splits")
	}

	now := time.Now().UTC()
	out := make([]entity.EntrySplit, 0, len(splits))
	for _, s := range splits {
		s.ID = uuid.New()
		s.EntryID = entryID
		s.CreatedAt = now
		_, err := r.db.Exec(ctx,
			`INSERT INTO entry_splits (id, entry_id, category_id, amount, description, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			s.ID, s.EntryID, s.CategoryID, s.Amount, s.Description, s.CreatedAt)
		if err != nil {
			r.log.Error("failed to insert split", "entry_id", entryID, "error", err)
			return nil, common.WrapError(err, "insert split")
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *statementEntryRepo) ListSplits(ctx context.Context, entryID uuid.UUID) ([]entity.EntrySplit, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, entry_id, category_id, amount, description, created_at, updated_at
		 FROM entry_splits WHERE entry_id = $1 ORDER BY created_at`, entryID)
	if err != nil {
		r.log.Error("failed to list splits", "entry_id", entryID, "error", err)
		return nil, common.WrapError(err, "list splits")
	}
	defer rows.Close()

	splits := []entity.EntrySplit{}
	for rows.Next() {
		var s entity.EntrySplit
		if err := rows.Scan(&s.ID, &s.EntryID, &s.CategoryID, &s.Amount, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, common.WrapError(err, "scan split")
		}
		splits = append(splits, s)
	}
	return splits, rows.Err()
}

func buildEntryFilter(f EntryFilter) (string, []any) {
	var clauses []string
	var args []any
	add := func(expr string, v any) {
		args = append(args, v)
		clauses = append(clauses, expr+" "+placeholder(len(args)))
	}
	if f.StatementFileID != nil {
		add("statement_file_id =", *f.StatementFileID)
	}
	if f.BankAccountID != nil {
		add("bank_account_id =", *f.BankAccountID)
	}
	if f.CategoryID != nil {
		add("category_id =", *f.CategoryID)
	}
	if f.DateFrom != nil {
		add("date >=", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("date <=", *f.DateTo)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	where := " WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func scanEntry(row pgx.Row) (*entity.StatementEntry, error) {
	var e entity.StatementEntry
	err := row.Scan(&e.ID, &e.StatementFileID, &e.BankAccountID, &e.CategoryID, &e.Date,
		&e.Description, &e.Reference, &e.DebitCredit, &e.Amount, &e.Balance, &e.Notes,
		&e.CreatedAt, &e.UpdatedAt, &e.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
