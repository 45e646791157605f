package llm

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/reamshq/statement-parser/constants"
	"github.com/reamshq/statement-parser/internal/common"
	"github.com/reamshq/statement-parser/internal/entity"
)

// NormalizeStatement converts a recovered key-value record into the canonical
// Statement. Required top-level keys are account_holder, bank_name,
// account_number, statement_period, opening_balance and closing_balance;
// transactions defaults to an empty list and currency to USD.
func NormalizeStatement(rec map[string]any) (entity.Statement, error) {
	var st entity.Statement

	holder, ok := asString(rec["account_holder"])
	if !ok {
		return st, &common.SchemaViolationError{Field: "account_holder"}
	}
	bank, ok := asString(rec["bank_name"])
	if !ok {
		return st, &common.SchemaViolationError{Field: "bank_name"}
	}
	number, ok := asString(rec["account_number"])
	if !ok {
		return st, &common.SchemaViolationError{Field: "account_number"}
	}
	period, ok := asPeriod(rec["statement_period"])
	if !ok {
		return st, &common.SchemaViolationError{Field: "statement_period"}
	}
	opening, ok := asDecimal(rec["opening_balance"])
	if !ok {
		return st, &common.SchemaViolationError{Field: "opening_balance"}
	}
	closing, ok := asDecimal(rec["closing_balance"])
	if !ok {
		return st, &common.SchemaViolationError{Field: "closing_balance"}
	}

	txns, err := normalizeTransactions(rec["transactions"])
	if err != nil {
		return st, err
	}

	currency := "USD"
	if c, ok := asString(rec["currency"]); ok && c != "" {
		currency = c
	}

	return entity.Statement{
		AccountHolder:  holder,
		BankName:       bank,
		AccountNumber:  number,
		Period:         period,
		OpeningBalance: opening,
		ClosingBalance: closing,
		Transactions:   txns,
		Currency:       currency,
	}, nil
}

func normalizeTransactions(v any) ([]entity.Transaction, error) {
	raw, ok := v.([]any)
	if !ok {
		// Absent or mistyped lists degrade to empty, matching the schema
		// default rather than failing the whole statement.
		return []entity.Transaction{}, nil
	}

	txns := make([]entity.Transaction, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &common.SchemaViolationError{Field: fmt.Sprintf("transactions[%d]", i)}
		}
		date, ok := asString(m["date"])
		if !ok || date == "" {
			return nil, &common.SchemaViolationError{Field: fmt.Sprintf("transactions[%d].date", i)}
		}
		desc, ok := asString(m["description"])
		if !ok || desc == "" {
			return nil, &common.SchemaViolationError{Field: fmt.Sprintf("transactions[%d].description", i)}
		}
		amount, ok := asDecimal(m["amount"])
		if !ok {
			return nil, &common.SchemaViolationError{Field: fmt.Sprintf("transactions[%d].amount", i)}
		}
		typeLabel, ok := asString(m["type"])
		if !ok {
			return nil, &common.SchemaViolationError{Field: fmt.Sprintf("transactions[%d].type", i)}
		}
		txType, ok := constants.ParseTransactionType(typeLabel)
		if !ok {
			return nil, &common.SchemaViolationError{Field: fmt.Sprintf("transactions[%d].type", i)}
		}

		txn := entity.Transaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Type:        txType,
		}
		if cat, ok := asString(m["category"]); ok {
			txn.Category = cat
		}
		// A numeric zero balance is treated as absent, not as zero. Inherited
		// behavior; see DESIGN.md before relying on it.
		if bal, ok := asTruthyDecimal(m["balance"]); ok {
			txn.Balance = &bal
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), true
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	}
	return decimal.Decimal{}, false
}

// asTruthyDecimal coerces only present, truthy values: numeric zero, empty
// string, nil and false all count as absent.
func asTruthyDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		if t == 0 {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(t), true
	case string:
		if t == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	}
	return decimal.Decimal{}, false
}

func asPeriod(v any) (entity.StatementPeriod, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return entity.StatementPeriod{}, false
	}
	start, _ := asString(m["start_date"])
	end, _ := asString(m["end_date"])
	return entity.StatementPeriod{StartDate: start, EndDate: end}, true
}
