package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/reamshq/statement-parser/internal/entity"
	"github.com/reamshq/statement-parser/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	entriesRepo    repository.StatementEntryRepository
	categoriesRepo repository.CategoryRepository
	logger         *slog.Logger
}

func NewService(entries repository.StatementEntryRepository, categories repository.CategoryRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{entriesRepo: entries, categoriesRepo: categories, logger: logger}
}

// exportPageSize bounds each repository fetch while the exporter walks the
// full result set.
const exportPageSize = 500

// ExportEntriesXLSX returns an XLSX workbook (as bytes) for the given account
// and date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all entries for the account.
func (s *Service) ExportEntriesXLSX(ctx context.Context, accountID uuid.UUID, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	filter := repository.EntryFilter{BankAccountID: &accountID}
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		filter.DateFrom = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
		filter.DateTo = &t
	}
	if filter.DateFrom != nil && filter.DateTo == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		filter.DateTo = &t
	}

	var entries []entity.StatementEntry
	for offset := 0; ; offset += exportPageSize {
		page, err := s.entriesRepo.List(ctx, filter, exportPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("query entries: %w", err)
		}
		entries = append(entries, page.Items...)
		if len(entries) >= int(page.Total) || len(page.Items) == 0 {
			break
		}
	}

	categoryNames := s.categoryNames(ctx)

	f := excelize.NewFile()
	const sheet = "Entries"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Date",
		"Description",
		"Reference",
		"Type",
		"Amount",
		"Balance",
		"Category",
		"Notes",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, e := range entries {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, e.Date.Format("2006-01-02"))
		write(2, truncate(e.Description, 140))
		if e.Reference != nil {
			write(3, *e.Reference)
		}
		write(4, string(e.DebitCredit))
		write(5, e.Amount.StringFixed(2))
		if e.Balance != nil {
			write(6, e.Balance.StringFixed(2))
		}
		if e.CategoryID != nil {
			write(7, categoryNames[*e.CategoryID])
		}
		if e.Notes != nil {
			write(8, truncate(*e.Notes, 140))
		}

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 14) // date
	_ = f.SetColWidth(sheet, "B", "B", 48) // description
	_ = f.SetColWidth(sheet, "C", "C", 20) // reference
	_ = f.SetColWidth(sheet, "D", "D", 10) // type
	_ = f.SetColWidth(sheet, "E", "F", 14) // amounts
	_ = f.SetColWidth(sheet, "G", "G", 22) // category
	_ = f.SetColWidth(sheet, "H", "H", 48) // notes

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"account_id", accountID.String(),
		"rows", len(entries),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// categoryNames builds an id -> name lookup. A lookup failure leaves category
// cells blank rather than failing the export.
func (s *Service) categoryNames(ctx context.Context) map[uuid.UUID]string {
	names := map[uuid.UUID]string{}
	for offset := 0; ; offset += exportPageSize {
		page, err := s.categoriesRepo.List(ctx, exportPageSize, offset, true)
		if err != nil {
			s.logger.Warn("export.categories.lookup_failed", "error", err)
			return names
		}
		for _, c := range page.Items {
			names[c.ID] = c.Name
		}
		if len(names) >= int(page.Total) || len(page.Items) == 0 {
			return names
		}
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
