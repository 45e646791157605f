package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/reamshq/statement-parser/constants"
	"github.com/reamshq/statement-parser/internal/entity"
	"github.com/reamshq/statement-parser/internal/repository"
)

type stubEntriesRepo struct {
	repository.StatementEntryRepository
	entries []entity.StatementEntry
	filter  repository.EntryFilter
}

func (s *stubEntriesRepo) List(_ context.Context, filter repository.EntryFilter, limit, offset int) (entity.Page[entity.StatementEntry], error) {
	s.filter = filter
	page := entity.Page[entity.StatementEntry]{Total: int64(len(s.entries)), Limit: limit, Offset: offset}
	if offset < len(s.entries) {
		end := offset + limit
		if end > len(s.entries) {
			end = len(s.entries)
		}
		page.Items = s.entries[offset:end]
	}
	return page, nil
}

type stubCategoriesRepo struct {
	repository.CategoryRepository
	categories []entity.Category
}

func (s *stubCategoriesRepo) List(_ context.Context, limit, offset int, _ bool) (entity.Page[entity.Category], error) {
	page := entity.Page[entity.Category]{Total: int64(len(s.categories)), Limit: limit, Offset: offset}
	if offset < len(s.categories) {
		page.Items = s.categories[offset:]
	}
	return page, nil
}

func TestExportEntriesXLSX(t *testing.T) {
	catID := uuid.New()
	balance := decimal.NewFromFloat(196.50)
	entries := &stubEntriesRepo{entries: []entity.StatementEntry{
		{
			Date:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			Description: "COFFEE SHOP",
			DebitCredit: constants.Debit,
			Amount:      decimal.NewFromFloat(3.50),
			Balance:     &balance,
			CategoryID:  &catID,
		},
		{
			Date:        time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC),
			Description: "SALARY",
			DebitCredit: constants.Credit,
			Amount:      decimal.NewFromFloat(500),
		},
	}}
	categories := &stubCategoriesRepo{categories: []entity.Category{{ID: catID, Name: "Eating Out"}}}

	svc := NewService(entries, categories, nil)
	accountID := uuid.New()
	from := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)

	data, err := svc.ExportEntriesXLSX(context.Background(), accountID, &from, nil)
	require.NoError(t, err)

	// date window normalizes to date-only and fills the open end
	require.NotNil(t, entries.filter.DateFrom)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *entries.filter.DateFrom)
	require.NotNil(t, entries.filter.DateTo)
	require.NotNil(t, entries.filter.BankAccountID)
	assert.Equal(t, accountID, *entries.filter.BankAccountID)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Entries")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Description", "Reference", "Type", "Amount", "Balance", "Category", "Notes"}, rows[0])
	assert.Equal(t, "2024-01-05", rows[1][0])
	assert.Equal(t, "COFFEE SHOP", rows[1][1])
	assert.Equal(t, "debit", rows[1][3])
	assert.Equal(t, "3.50", rows[1][4])
	assert.Equal(t, "196.50", rows[1][5])
	assert.Equal(t, "Eating Out", rows[1][6])
	assert.Equal(t, "SALARY", rows[2][1])
}
