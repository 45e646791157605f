package llm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reamshq/statement-parser/constants"
	"github.com/reamshq/statement-parser/internal/common"
)

func validRecord() map[string]any {
	return map[string]any{
		"account_holder": "John Smith",
		"bank_name":      "Metro Bank",
		"account_number": "****1234",
		"statement_period": map[string]any{
			"start_date": "2024-01-01",
			"end_date":   "2024-01-31",
		},
		"opening_balance": 1000.00,
		"closing_balance": 1250.50,
		"transactions": []any{
			map[string]any{
				"date":        "2024-01-05",
				"description": "SALARY PAYMENT",
				"amount":      500.00,
				"type":        "credit",
				"balance":     1500.00,
			},
			map[string]any{
				"date":        "2024-01-10",
				"description": "GROCERY STORE",
				"amount":      249.50,
				"type":        "debit",
			},
		},
		"currency": "GBP",
	}
}

func TestNormalizeStatement_HappyPath(t *testing.T) {
	st, err := NormalizeStatement(validRecord())
	require.NoError(t, err)

	assert.Equal(t, "John Smith", st.AccountHolder)
	assert.Equal(t, "Metro Bank", st.BankName)
	assert.Equal(t, "****1234", st.AccountNumber)
	assert.Equal(t, "2024-01-01", st.Period.StartDate)
	assert.Equal(t, "2024-01-31", st.Period.EndDate)
	assert.True(t, st.OpeningBalance.Equal(decimal.NewFromFloat(1000.00)))
	assert.True(t, st.ClosingBalance.Equal(decimal.NewFromFloat(1250.50)))
	assert.Equal(t, "GBP", st.Currency)

	require.Len(t, st.Transactions, 2)
	assert.Equal(t, constants.Credit, st.Transactions[0].Type)
	require.NotNil(t, st.Transactions[0].Balance)
	assert.True(t, st.Transactions[0].Balance.Equal(decimal.NewFromFloat(1500.00)))
	assert.Equal(t, constants.Debit, st.Transactions[1].Type)
	assert.Nil(t, st.Transactions[1].Balance)
}

func TestNormalizeStatement_MissingRequiredFields(t *testing.T) {
	for _, field := range []string{
		"account_holder", "bank_name", "account_number",
		"statement_period", "opening_balance", "closing_balance",
	} {
		t.Run(field, func(t *testing.T) {
			rec := validRecord()
			delete(rec, field)
			_, err := NormalizeStatement(rec)
			var sv *common.SchemaViolationError
			require.ErrorAs(t, err, &sv)
			assert.Equal(t, field, sv.Field)
		})
	}
}

func TestNormalizeStatement_BalancesAcceptNumericStrings(t *testing.T) {
	rec := validRecord()
	rec["opening_balance"] = "1000.00"
	rec["closing_balance"] = "1250.50"
	st, err := NormalizeStatement(rec)
	require.NoError(t, err)
	assert.True(t, st.OpeningBalance.Equal(decimal.NewFromFloat(1000.00)))
	assert.True(t, st.ClosingBalance.Equal(decimal.NewFromFloat(1250.50)))
}

func TestNormalizeStatement_CurrencyDefaultsToUSD(t *testing.T) {
	rec := validRecord()
	delete(rec, "currency")
	st, err := NormalizeStatement(rec)
	require.NoError(t, err)
	assert.Equal(t, "USD", st.Currency)
}

func TestNormalizeStatement_AbsentTransactionsBecomeEmptyList(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"missing", nil},
		{"mistyped", "not a list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			if tt.value == nil {
				delete(rec, "transactions")
			} else {
				rec["transactions"] = tt.value
			}
			st, err := NormalizeStatement(rec)
			require.NoError(t, err)
			require.NotNil(t, st.Transactions)
			assert.Empty(t, st.Transactions)
		})
	}
}

func TestNormalizeStatement_BadTransactionNamesIndexAndField(t *testing.T) {
	rec := validRecord()
	txns := rec["transactions"].([]any)
	delete(txns[1].(map[string]any), "date")

	_, err := NormalizeStatement(rec)
	var sv *common.SchemaViolationError
	require.ErrorAs(t, err, &sv)
	assert.Equal(t, "transactions[1].date", sv.Field)
}

func TestNormalizeStatement_TransactionTypeAliases(t *testing.T) {
	tests := []struct {
		label string
		want  constants.TransactionType
	}{
		{"credit", constants.Credit},
		{"CR", constants.Credit},
		{"debit", constants.Debit},
		{"DR", constants.Debit},
		{"db", constants.Debit},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			rec := validRecord()
			rec["transactions"].([]any)[0].(map[string]any)["type"] = tt.label
			st, err := NormalizeStatement(rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, st.Transactions[0].Type)
		})
	}
}

func TestNormalizeStatement_ZeroBalanceTreatedAsAbsent(t *testing.T) {
	rec := validRecord()
	rec["transactions"].([]any)[0].(map[string]any)["balance"] = 0.0

	st, err := NormalizeStatement(rec)
	require.NoError(t, err)
	assert.Nil(t, st.Transactions[0].Balance)
}
