package entity

import (
	"github.com/shopspring/decimal"

	"github.com/reamshq/statement-parser/constants"
)

// Transaction is one movement on a statement. Amount is always positive;
// direction lives in Type. Balance is the running balance after the
// transaction when the model reported one.
type Transaction struct {
	Date        string                    `json:"date"`
	Description string                    `json:"description"`
	Amount      decimal.Decimal           `json:"amount"`
	Type        constants.TransactionType `json:"type"`
	Category    string                    `json:"category,omitempty"`
	Balance     *decimal.Decimal          `json:"balance,omitempty"`
}

// StatementPeriod is the calendar window a statement covers.
type StatementPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Statement is the canonical, schema-complete, deduplicated statement
// returned to callers. Account numbers are masked with only the last four
// digits visible.
type Statement struct {
	AccountHolder  string          `json:"account_holder"`
	BankName       string          `json:"bank_name"`
	AccountNumber  string          `json:"account_number"`
	Period         StatementPeriod `json:"statement_period"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Transactions   []Transaction   `json:"transactions"`
	Currency       string          `json:"currency"`
}

// EmptyStatement is the degenerate result for an extraction over zero pages.
func EmptyStatement() Statement {
	return Statement{
		Transactions: []Transaction{},
		Currency:     "USD",
	}
}

// ParsedResponse is the uniform outward shape of one parse request.
// Constructed once per request and immutable afterwards.
type ParsedResponse struct {
	Success        bool       `json:"success"`
	Data           *Statement `json:"data,omitempty"`
	Error          string     `json:"error,omitempty"`
	ProcessingTime float64    `json:"processing_time"`
}
