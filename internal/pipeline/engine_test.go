package pipeline

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reamshq/statement-parser/internal/entity"
)

// fakeExtractor scripts a sequence of chunks and records every call it serves.
type fakeExtractor struct {
	chunks    []map[string]any
	calls     int
	textHints []string
	imageSets [][]string
	err       error
}

func (f *fakeExtractor) ExtractFromText(_ context.Context, _ string, hint string) (map[string]any, error) {
	f.textHints = append(f.textHints, hint)
	return f.next()
}

func (f *fakeExtractor) ExtractFromImages(_ context.Context, images []string, _ string) (map[string]any, error) {
	f.imageSets = append(f.imageSets, images)
	return f.next()
}

func (f *fakeExtractor) next() (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.calls >= len(f.chunks) {
		return chunk(false, ""), nil
	}
	c := f.chunks[f.calls]
	f.calls++
	return c, nil
}

func chunk(hasMore bool, hint string, txns ...map[string]any) map[string]any {
	list := make([]any, 0, len(txns))
	for _, t := range txns {
		list = append(list, any(t))
	}
	c := map[string]any{
		"account_holder":   "John Smith",
		"bank_name":        "Metro Bank",
		"account_number":   "****1234",
		"statement_period": map[string]any{"start_date": "2024-01-01", "end_date": "2024-01-31"},
		"opening_balance":  100.0,
		"closing_balance":  200.0,
		"transactions":     list,
		"has_more":         hasMore,
	}
	if hint != "" {
		c["next_page_hint"] = hint
	}
	return c
}

func txn(date, desc string, amount float64) map[string]any {
	return map[string]any{"date": date, "description": desc, "amount": amount, "type": "debit"}
}

func TestParseText_SingleChunk(t *testing.T) {
	fx := &fakeExtractor{chunks: []map[string]any{
		chunk(false, "", txn("2024-01-05", "COFFEE", 3.50)),
	}}
	eng := NewEngine(fx, 3, nil)

	st, err := eng.ParseText(context.Background(), "statement text")
	require.NoError(t, err)
	assert.Equal(t, 1, fx.calls)
	assert.Equal(t, []string{""}, fx.textHints)
	require.Len(t, st.Transactions, 1)
	assert.Equal(t, "COFFEE", st.Transactions[0].Description)
}

func TestParseText_FollowsContinuationHints(t *testing.T) {
	fx := &fakeExtractor{chunks: []map[string]any{
		chunk(true, "after txn 1", txn("2024-01-05", "COFFEE", 3.50)),
		chunk(true, "after txn 2", txn("2024-01-06", "LUNCH", 12.00)),
		chunk(false, "", txn("2024-01-07", "BOOKS", 24.99)),
	}}
	eng := NewEngine(fx, 3, nil)

	st, err := eng.ParseText(context.Background(), "statement text")
	require.NoError(t, err)
	assert.Equal(t, 3, fx.calls)
	assert.Equal(t, []string{"", "after txn 1", "after txn 2"}, fx.textHints)
	assert.Len(t, st.Transactions, 3)
}

func TestParseText_FollowUpCapStopsRunaway(t *testing.T) {
	// Every chunk claims more pages; the cap limits the job to 1 + max calls.
	endless := make([]map[string]any, 10)
	for i := range endless {
		endless[i] = chunk(true, "keep going", txn("2024-01-05", "COFFEE", float64(i)))
	}
	fx := &fakeExtractor{chunks: endless}
	eng := NewEngine(fx, 3, nil)

	_, err := eng.ParseText(context.Background(), "statement text")
	require.NoError(t, err)
	assert.Equal(t, 4, fx.calls)
}

func TestParseText_StopsWhenHintEmptyDespiteHasMore(t *testing.T) {
	fx := &fakeExtractor{chunks: []map[string]any{
		chunk(true, "", txn("2024-01-05", "COFFEE", 3.50)),
	}}
	eng := NewEngine(fx, 3, nil)

	_, err := eng.ParseText(context.Background(), "statement text")
	require.NoError(t, err)
	assert.Equal(t, 1, fx.calls)
}

func TestParseText_DuplicatesAcrossChunksCollapse(t *testing.T) {
	// The overlap row appears in both chunks with an identical dedupe key.
	fx := &fakeExtractor{chunks: []map[string]any{
		chunk(true, "page 2", txn("2024-01-05", "COFFEE", 3.50), txn("2024-01-06", "LUNCH", 12.00)),
		chunk(false, "", txn("2024-01-06", "LUNCH", 12.00), txn("2024-01-07", "BOOKS", 24.99)),
	}}
	eng := NewEngine(fx, 3, nil)

	st, err := eng.ParseText(context.Background(), "statement text")
	require.NoError(t, err)
	require.Len(t, st.Transactions, 3)
	assert.Equal(t, "COFFEE", st.Transactions[0].Description)
	assert.Equal(t, "LUNCH", st.Transactions[1].Description)
	assert.Equal(t, "BOOKS", st.Transactions[2].Description)
}

func TestParseText_StringAmountsKeyOnParsedValue(t *testing.T) {
	// Same date and description but different string amounts are distinct
	// rows; a string and a float spelling the same value are duplicates.
	stringTxn := func(date, desc, amount string) map[string]any {
		return map[string]any{"date": date, "description": desc, "amount": amount, "type": "debit"}
	}
	fx := &fakeExtractor{chunks: []map[string]any{
		chunk(true, "page 2", stringTxn("2024-01-05", "FEE", "5.00")),
		chunk(false, "", stringTxn("2024-01-05", "FEE", "10.00"), txn("2024-01-05", "FEE", 5.00)),
	}}
	eng := NewEngine(fx, 3, nil)

	st, err := eng.ParseText(context.Background(), "statement text")
	require.NoError(t, err)
	require.Len(t, st.Transactions, 2)
	assert.True(t, st.Transactions[0].Amount.Equal(decimal.NewFromFloat(5.00)))
	assert.True(t, st.Transactions[1].Amount.Equal(decimal.NewFromFloat(10.00)))
}

func TestParseText_IdentityFieldsFromFirstChunk(t *testing.T) {
	second := chunk(false, "", txn("2024-01-07", "BOOKS", 24.99))
	second["account_holder"] = "Somebody Else"
	second["bank_name"] = "Wrong Bank"
	second["closing_balance"] = 999.99

	fx := &fakeExtractor{chunks: []map[string]any{
		chunk(true, "page 2", txn("2024-01-05", "COFFEE", 3.50)),
		second,
	}}
	eng := NewEngine(fx, 3, nil)

	st, err := eng.ParseText(context.Background(), "statement text")
	require.NoError(t, err)
	assert.Equal(t, "John Smith", st.AccountHolder)
	assert.Equal(t, "Metro Bank", st.BankName)
	// closing balance is the one field where the later chunk wins
	assert.True(t, st.ClosingBalance.Equal(decimal.NewFromFloat(999.99)))
}

func TestParseImages_OneCallPerUniquePage(t *testing.T) {
	fx := &fakeExtractor{chunks: []map[string]any{
		chunk(false, "", txn("2024-01-05", "COFFEE", 3.50)),
		chunk(false, "", txn("2024-01-06", "LUNCH", 12.00)),
	}}
	eng := NewEngine(fx, 3, nil)

	// page A appears twice; only two provider calls should happen
	st, err := eng.ParseImages(context.Background(), []string{"pageA", "pageB", "pageA"})
	require.NoError(t, err)
	assert.Equal(t, 2, fx.calls)
	require.Len(t, fx.imageSets, 2)
	assert.Equal(t, []string{"pageA"}, fx.imageSets[0])
	assert.Equal(t, []string{"pageB"}, fx.imageSets[1])
	assert.Len(t, st.Transactions, 2)
}

func TestParseImages_NoImagesYieldsEmptySkeleton(t *testing.T) {
	fx := &fakeExtractor{}
	eng := NewEngine(fx, 3, nil)

	st, err := eng.ParseImages(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, fx.calls)
	assert.Equal(t, entity.EmptyStatement(), st)
}

func TestMergeChunks_LeavesInputsUntouched(t *testing.T) {
	acc := chunk(true, "page 2", txn("2024-01-05", "COFFEE", 3.50))
	next := chunk(false, "", txn("2024-01-06", "LUNCH", 12.00))

	merged := mergeChunks(acc, next)

	assert.Len(t, chunkTransactions(acc), 1)
	assert.Len(t, chunkTransactions(next), 1)
	assert.Len(t, chunkTransactions(merged), 2)
	assert.Equal(t, "page 2", hintOf(acc))
}

func TestMergeChunks_ControlFieldsRecomputed(t *testing.T) {
	acc := chunk(true, "page 2")
	next := chunk(false, "")

	merged := mergeChunks(acc, next)
	assert.Equal(t, false, merged["has_more"])
	_, present := merged["next_page_hint"]
	assert.False(t, present)

	stripControlFields(merged)
	_, present = merged["has_more"]
	assert.False(t, present)
}

func TestMergeChunks_MergeWithSelfIsIdempotent(t *testing.T) {
	c := chunk(false, "", txn("2024-01-05", "COFFEE", 3.50), txn("2024-01-06", "LUNCH", 12.00))
	merged := mergeChunks(c, c)
	assert.Len(t, chunkTransactions(merged), 2)
}
