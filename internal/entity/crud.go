package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reamshq/statement-parser/constants"
)

// Project is the root grouping for bank accounts and their statements.
// Deactivation is the soft-delete mechanism; rows stay queryable.
type Project struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	DeveloperName string     `json:"developer_name"`
	InvestorName  string     `json:"investor_name"`
	IsActivated   bool       `json:"is_activated"`
	Remarks       *string    `json:"remarks,omitempty"`
	CreatedBy     string     `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	UpdatedBy     *string    `json:"updated_by,omitempty"`
}

// BankAccount belongs to a project. AccountNumber stores the masked form,
// last four digits only.
type BankAccount struct {
	ID            uuid.UUID  `json:"id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	AccountNumber string     `json:"account_number"`
	BankName      string     `json:"bank_name"`
	Color         *string    `json:"color,omitempty"`
	AccountType   string     `json:"account_type"`
	CreatedBy     string     `json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	UpdatedBy     *string    `json:"updated_by,omitempty"`
}

// Category is master data for transaction categorization.
// IdentificationRegex drives auto-categorization of entry descriptions.
type Category struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	IdentificationRegex *string    `json:"identification_regex,omitempty"`
	Color               *string    `json:"color,omitempty"`
	IsActive            bool       `json:"is_active"`
	Description         *string    `json:"description,omitempty"`
	CreatedBy           string     `json:"created_by"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
	UpdatedBy           *string    `json:"updated_by,omitempty"`
}

// StatementFile records one uploaded statement document for an account.
type StatementFile struct {
	ID            uuid.UUID  `json:"id"`
	BankAccountID uuid.UUID  `json:"bank_account_id"`
	FilePath      string     `json:"file_path"`
	PeriodStart   time.Time  `json:"period_start"`
	PeriodEnd     time.Time  `json:"period_end"`
	UploadedBy    string     `json:"uploaded_by"`
	UploadedAt    time.Time  `json:"uploaded_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	UpdatedBy     *string    `json:"updated_by,omitempty"`
}

// StatementEntry is one persisted transaction from a statement file.
type StatementEntry struct {
	ID              uuid.UUID                 `json:"id"`
	StatementFileID uuid.UUID                 `json:"statement_file_id"`
	BankAccountID   uuid.UUID                 `json:"bank_account_id"`
	CategoryID      *uuid.UUID                `json:"category_id,omitempty"`
	Date            time.Time                 `json:"date"`
	Description     string                    `json:"description"`
	Reference       *string                   `json:"transaction_reference,omitempty"`
	DebitCredit     constants.TransactionType `json:"debit_credit"`
	Amount          decimal.Decimal           `json:"amount"`
	Balance         *decimal.Decimal          `json:"balance,omitempty"`
	Notes           *string                   `json:"notes,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       *time.Time                `json:"updated_at,omitempty"`
	UpdatedBy       *string                   `json:"updated_by,omitempty"`
}

// EntrySplit divides one entry's amount across multiple categories.
type EntrySplit struct {
	ID          uuid.UUID       `json:"id"`
	EntryID     uuid.UUID       `json:"entry_id"`
	CategoryID  uuid.UUID       `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// Page wraps a list result with its pagination window.
type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
