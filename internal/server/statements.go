package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/reamshq/statement-parser/constants"
	"github.com/reamshq/statement-parser/internal/common"
	"github.com/reamshq/statement-parser/internal/entity"
	"github.com/reamshq/statement-parser/internal/repository"
	"github.com/reamshq/statement-parser/internal/upload"
)

// handleParseStatement accepts a multipart PDF upload and runs the extraction
// pipeline. The response body is always the ParsedResponse envelope; the HTTP
// status distinguishes client-side problems (bad upload, unusable model
// output) from provider and internal failures.
func (h *Handler) handleParseStatement(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "no file uploaded, use form field 'file'")
	}

	provider, ok := constants.ParseProvider(c.Query("provider"))
	if !ok {
		return badRequest(c, fmt.Sprintf("unknown provider %q", c.Query("provider")))
	}
	useVision := c.QueryBool("use_vision")

	parser, err := h.newParser(provider)
	if err != nil {
		return h.writeError(c, err)
	}

	f, err := fh.Open()
	if err != nil {
		return h.writeError(c, err)
	}
	defer f.Close()

	meta := upload.FileMeta{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}

	resp, parseErr := parser.ParseStatement(c.UserContext(), meta, f, useVision)
	return c.Status(parseStatus(parseErr)).JSON(resp)
}

func parseStatus(err error) int {
	if err == nil {
		return fiber.StatusOK
	}
	var (
		ve *common.ValidationError
		me *common.MalformedExtractionError
		se *common.SchemaViolationError
	)
	if errors.As(err, &ve) || errors.As(err, &me) || errors.As(err, &se) {
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

// importEntriesRequest carries a previously parsed statement to persist
// against a statement file.
type importEntriesRequest struct {
	Statement entity.Statement `json:"statement"`
}

// handleImportEntries stores a parsed statement's transactions as entries of
// the given statement file.
func (h *Handler) handleImportEntries(c *fiber.Ctx) error {
	fileID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid statement file id")
	}

	var req importEntriesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	file, err := h.files.GetByID(c.UserContext(), fileID)
	if err != nil {
		return h.writeError(c, err)
	}

	entries := make([]entity.StatementEntry, 0, len(req.Statement.Transactions))
	for i, txn := range req.Statement.Transactions {
		date, err := time.Parse("2006-01-02", txn.Date)
		if err != nil {
			return h.writeError(c, &common.ValidationError{
				Field:   fmt.Sprintf("transactions[%d].date", i),
				Message: "expected YYYY-MM-DD",
			})
		}
		entries = append(entries, entity.StatementEntry{
			StatementFileID: file.ID,
			BankAccountID:   file.BankAccountID,
			Date:            date,
			Description:     txn.Description,
			DebitCredit:     txn.Type,
			Amount:          txn.Amount,
			Balance:         txn.Balance,
		})
	}

	created, err := h.entries.CreateBatch(c.UserContext(), entries)
	if err != nil {
		return h.writeError(c, err)
	}

	h.log.Info("entries.import.ok", "file_id", fileID, "count", len(created))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"imported": len(created)})
}

// handleExportEntries streams an XLSX workbook of an account's entries.
func (h *Handler) handleExportEntries(c *fiber.Ctx) error {
	accountID, err := uuid.Parse(c.Query("account_id"))
	if err != nil {
		return badRequest(c, "account_id query parameter is required")
	}

	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return badRequest(c, "invalid 'from' date, expected YYYY-MM-DD")
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return badRequest(c, "invalid 'to' date, expected YYYY-MM-DD")
		}
		to = &t
	}

	data, err := h.exporter.ExportEntriesXLSX(c.UserContext(), accountID, from, to)
	if err != nil {
		return h.writeError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="entries.xlsx"`)
	return c.Send(data)
}

// handleListEntries lists entries with optional account, file, category and
// date filters.
func (h *Handler) handleListEntries(c *fiber.Ctx) error {
	filter := repository.EntryFilter{}
	if v := c.Query("account_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return badRequest(c, "invalid account_id")
		}
		filter.BankAccountID = &id
	}
	if v := c.Query("statement_file_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return badRequest(c, "invalid statement_file_id")
		}
		filter.StatementFileID = &id
	}
	if v := c.Query("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return badRequest(c, "invalid category_id")
		}
		filter.CategoryID = &id
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return badRequest(c, "invalid 'from' date, expected YYYY-MM-DD")
		}
		filter.DateFrom = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return badRequest(c, "invalid 'to' date, expected YYYY-MM-DD")
		}
		filter.DateTo = &t
	}

	limit, offset := pageParams(c)
	page, err := h.entries.List(c.UserContext(), filter, limit, offset)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(page)
}
