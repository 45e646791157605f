package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reamshq/statement-parser/internal/common"
)

func TestRecoverJSON_CleanObject(t *testing.T) {
	rec, err := RecoverJSON(`{"bank_name": "Metro Bank", "opening_balance": 120.50}`)
	require.NoError(t, err)
	assert.Equal(t, "Metro Bank", rec["bank_name"])
	assert.Equal(t, 120.50, rec["opening_balance"])
}

func TestRecoverJSON_EnclosingFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"json tag", "```json\n{\"bank_name\": \"HSBC\"}\n```"},
		{"no tag", "```\n{\"bank_name\": \"HSBC\"}\n```"},
		{"uppercase tag", "```JSON\n{\"bank_name\": \"HSBC\"}\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := RecoverJSON(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, "HSBC", rec["bank_name"])
		})
	}
}

func TestRecoverJSON_FencedBlockWithCommentary(t *testing.T) {
	raw := "Here is the parsed statement:\n```json\n{\"bank_name\": \"Barclays\"}\n```\nLet me know if you need anything else."
	rec, err := RecoverJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "Barclays", rec["bank_name"])
}

func TestRecoverJSON_BalancedObjectInProse(t *testing.T) {
	raw := `The result is {"description": "PAYMENT {REF 42}", "amount": 10.5} as requested.`
	rec, err := RecoverJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "PAYMENT {REF 42}", rec["description"])
	assert.Equal(t, 10.5, rec["amount"])
}

func TestRecoverJSON_TrailingCommas(t *testing.T) {
	raw := `{"transactions": [{"amount": 5.00,},], "closing_balance": 10.00,}`
	rec, err := RecoverJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, 10.00, rec["closing_balance"])
	txns, ok := rec["transactions"].([]any)
	require.True(t, ok)
	require.Len(t, txns, 1)
}

func TestRecoverJSON_ThousandsSeparators(t *testing.T) {
	raw := `{"opening_balance": 12,345.67, "closing_balance": 1,000,000}`
	rec, err := RecoverJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, 12345.67, rec["opening_balance"])
	assert.Equal(t, 1000000.0, rec["closing_balance"])
}

func TestRecoverJSON_SeparatorsInsideStringsUntouched(t *testing.T) {
	raw := `{"description": "TRANSFER 12,345.67 TO SAVINGS", "amount": 12,345.67,}`
	rec, err := RecoverJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, "TRANSFER 12,345.67 TO SAVINGS", rec["description"])
	assert.Equal(t, 12345.67, rec["amount"])
}

func TestRecoverJSON_FencedBlockNeedingRepair(t *testing.T) {
	raw := "```json\n{\"closing_balance\": 9,876.54,}\n```"
	rec, err := RecoverJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, 9876.54, rec["closing_balance"])
}

func TestRecoverJSON_Unrecoverable(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"prose only", "I could not find any statement data in the document."},
		{"empty", ""},
		{"unbalanced braces", `{"bank_name": "HSBC"`},
		{"json array not object", `[1, 2, 3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RecoverJSON(tt.raw)
			require.Error(t, err)
			var me *common.MalformedExtractionError
			assert.ErrorAs(t, err, &me)
			assert.Equal(t, tt.raw, me.Content)
		})
	}
}

func TestRemoveTrailingCommas_Idempotent(t *testing.T) {
	in := `{"a": [1, 2,], "b": {"c": 3,},}`
	once := removeTrailingCommas(in)
	assert.Equal(t, once, removeTrailingCommas(once))
	assert.Equal(t, `{"a": [1, 2], "b": {"c": 3}}`, once)
}

func TestRemoveThousandsSeparators_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain number", `"x": 1,234`, `"x": 1234`},
		{"decimal places", `"x": 1,234.56`, `"x": 1234.56`},
		{"bare list element collapses too", `[1,234]`, `[1234]`},
		{"quoted untouched", `"1,234"`, `"1,234"`},
		{"short groups untouched", `"x": 12,34`, `"x": 12,34`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, removeThousandsSeparators(tt.in))
		})
	}
}
