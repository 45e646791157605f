package llm

// BuildStatementJSONSchema returns a JSON-Schema (draft 2020-12 subset) for
// one extraction chunk as a generic map. The has_more / next_page_hint
// control fields are part of the chunk schema but never of the canonical
// statement; the merge engine strips them.
func BuildStatementJSONSchema() map[string]any {
	txnProps := map[string]any{
		"date":        map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		"description": map[string]any{"type": "string", "minLength": 1},
		"amount":      map[string]any{"type": "number", "exclusiveMinimum": 0.0},
		"type":        map[string]any{"type": "string", "enum": []string{"credit", "debit"}},
		"category":    map[string]any{"type": "string"},
		"balance":     map[string]any{"type": "number"},
	}

	props := map[string]any{
		"account_holder": map[string]any{"type": "string"},
		"bank_name":      map[string]any{"type": "string"},
		"account_number": map[string]any{"type": "string"},
		"statement_period": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"start_date": map[string]any{"type": "string"},
				"end_date":   map[string]any{"type": "string"},
			},
			"required": []string{"start_date", "end_date"},
		},
		"opening_balance": map[string]any{"type": "number"},
		"closing_balance": map[string]any{"type": "number"},
		"transactions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":       "object",
				"properties": txnProps,
				"required":   []string{"date", "description", "amount", "type"},
			},
		},
		"currency":       map[string]any{"type": "string"},
		"has_more":       map[string]any{"type": "boolean"},
		"next_page_hint": map[string]any{"type": "string"},
	}

	required := []string{
		"account_holder", "bank_name", "account_number",
		"statement_period", "opening_balance", "closing_balance",
	}

	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}
