package pipeline

import (
	"maps"
	"slices"
	"strconv"
)

// txnKey is the composite dedupe identity of one transaction across chunks.
// Amount is compared as a float regardless of how the chunk spelled it.
type txnKey struct {
	date        string
	description string
	amount      float64
}

// mergeChunks folds one newer chunk into the accumulator. Transactions are
// appended only when their (date, description, amount) key is unseen;
// closing_balance is last-seen-wins; the has_more / next_page_hint control
// fields are recomputed from the newer chunk. Every other top-level field
// keeps the accumulator's value, so identity fields never drift page to page.
func mergeChunks(acc, next map[string]any) map[string]any {
	merged := maps.Clone(acc)
	txns := slices.Clone(chunkTransactions(merged))

	seen := make(map[txnKey]struct{}, len(txns))
	for _, t := range txns {
		seen[keyOf(t)] = struct{}{}
	}
	for _, t := range chunkTransactions(next) {
		k := keyOf(t)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		txns = append(txns, t)
	}
	merged["transactions"] = txns

	if cb, ok := next["closing_balance"]; ok {
		merged["closing_balance"] = cb
	}

	merged["has_more"] = truthy(next["has_more"])
	if hint := hintOf(next); hint != "" {
		merged["next_page_hint"] = hint
	} else {
		delete(merged, "next_page_hint")
	}

	return merged
}

// stripControlFields removes the transient continuation fields before the
// merged result is normalized. They never appear in a canonical statement.
func stripControlFields(rec map[string]any) {
	delete(rec, "has_more")
	delete(rec, "next_page_hint")
}

func chunkTransactions(rec map[string]any) []any {
	txns, _ := rec["transactions"].([]any)
	return txns
}

func keyOf(t any) txnKey {
	m, ok := t.(map[string]any)
	if !ok {
		return txnKey{}
	}
	date, _ := m["date"].(string)
	desc, _ := m["description"].(string)
	return txnKey{date: date, description: desc, amount: amountOf(m["amount"])}
}

// amountOf normalizes an amount to a float for keying. Models sometimes emit
// amounts as numeric strings; those must key on their parsed value, or two
// different string amounts would both collapse to zero and dedupe each other.
func amountOf(v any) float64 {
	switch a := v.(type) {
	case float64:
		return a
	case string:
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func truthy(v any) bool {
	b, _ := v.(bool)
	return b
}

func hintOf(rec map[string]any) string {
	s, _ := rec["next_page_hint"].(string)
	return s
}
