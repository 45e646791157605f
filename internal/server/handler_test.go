package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reamshq/statement-parser/constants"
	"github.com/reamshq/statement-parser/internal/common"
	"github.com/reamshq/statement-parser/internal/entity"
	"github.com/reamshq/statement-parser/internal/pipeline"
	"github.com/reamshq/statement-parser/internal/upload"
)

type scriptedExtractor struct {
	chunk map[string]any
	err   error
}

func (s scriptedExtractor) ExtractFromText(context.Context, string, string) (map[string]any, error) {
	return s.chunk, s.err
}

func (s scriptedExtractor) ExtractFromImages(context.Context, []string, string) (map[string]any, error) {
	return s.chunk, s.err
}

type fixedTextExtractor struct{}

func (fixedTextExtractor) ExtractText(context.Context, []byte) (string, error) {
	return "statement text", nil
}

type noImageConverter struct{}

func (noImageConverter) ConvertToImages(context.Context, []byte) ([]string, error) {
	return nil, nil
}

func statementChunk() map[string]any {
	return map[string]any{
		"account_holder":   "John Smith",
		"bank_name":        "Metro Bank",
		"account_number":   "****1234",
		"statement_period": map[string]any{"start_date": "2024-01-01", "end_date": "2024-01-31"},
		"opening_balance":  100.0,
		"closing_balance":  200.0,
		"transactions": []any{
			map[string]any{"date": "2024-01-05", "description": "COFFEE", "amount": 3.50, "type": "debit"},
		},
		"has_more": false,
	}
}

func testApp(t *testing.T, extractor scriptedExtractor) (*fiber.App, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	cfg := &common.Config{Upload: common.UploadConfig{MaxFileSizeMB: 10}}
	newParser := func(constants.Provider) (*pipeline.Parser, error) {
		engine := pipeline.NewEngine(extractor, 3, nil)
		return pipeline.NewParser(upload.NewValidator(10), fixedTextExtractor{}, noImageConverter{}, engine, nil), nil
	}
	h := NewHandler(cfg, mock, newParser, nil)
	return NewApp(cfg, h), mock
}

func multipartPDF(t *testing.T, filename string, content []byte) (body *bytes.Buffer, contentType string) {
	t.Helper()
	body = &bytes.Buffer{}
	w := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := testApp(t, scriptedExtractor{chunk: statementChunk()})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestParseStatementEndpoint_Success(t *testing.T) {
	app, _ := testApp(t, scriptedExtractor{chunk: statementChunk()})

	body, ct := multipartPDF(t, "jan.pdf", []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest("POST", "/api/v1/statements/parse", body)
	req.Header.Set("Content-Type", ct)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var parsed entity.ParsedResponse
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.True(t, parsed.Success)
	require.NotNil(t, parsed.Data)
	assert.Equal(t, "John Smith", parsed.Data.AccountHolder)
	assert.Len(t, parsed.Data.Transactions, 1)
}

func TestParseStatementEndpoint_NoFile(t *testing.T) {
	app, _ := testApp(t, scriptedExtractor{chunk: statementChunk()})

	req := httptest.NewRequest("POST", "/api/v1/statements/parse", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestParseStatementEndpoint_UnknownProvider(t *testing.T) {
	app, _ := testApp(t, scriptedExtractor{chunk: statementChunk()})

	body, ct := multipartPDF(t, "jan.pdf", []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest("POST", "/api/v1/statements/parse?provider=grok", body)
	req.Header.Set("Content-Type", ct)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestParseStatementEndpoint_BadUploadIs422(t *testing.T) {
	app, _ := testApp(t, scriptedExtractor{chunk: statementChunk()})

	body, ct := multipartPDF(t, "jan.docx", []byte("not a pdf"))
	req := httptest.NewRequest("POST", "/api/v1/statements/parse", body)
	req.Header.Set("Content-Type", ct)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var parsed entity.ParsedResponse
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.False(t, parsed.Success)
	assert.NotEmpty(t, parsed.Error)
}

func TestParseStatementEndpoint_ProviderFailureIs500(t *testing.T) {
	app, _ := testApp(t, scriptedExtractor{err: &common.ProviderError{Provider: "openai", Err: io.ErrUnexpectedEOF}})

	body, ct := multipartPDF(t, "jan.pdf", []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest("POST", "/api/v1/statements/parse", body)
	req.Header.Set("Content-Type", ct)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestCreateProjectEndpoint(t *testing.T) {
	app, mock := testApp(t, scriptedExtractor{chunk: statementChunk()})

	mock.ExpectExec(`INSERT INTO projects`).
		WithArgs(pgxmock.AnyArg(), "Riverside Towers", "Acme", "Northwind",
			true, pgxmock.AnyArg(), "ops@example.com", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	payload := `{"name": "Riverside Towers", "developer_name": "Acme", "investor_name": "Northwind"}`
	req := httptest.NewRequest("POST", "/api/v1/projects", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", "ops@example.com")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created entity.Project
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.IsActivated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProjectEndpoint_MissingName(t *testing.T) {
	app, _ := testApp(t, scriptedExtractor{chunk: statementChunk()})

	req := httptest.NewRequest("POST", "/api/v1/projects", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetProjectEndpoint_NotFound(t *testing.T) {
	app, mock := testApp(t, scriptedExtractor{chunk: statementChunk()})

	id := uuid.New()
	mock.ExpectQuery(`SELECT id, name, developer_name`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "developer_name", "investor_name", "is_activated",
			"remarks", "created_by", "created_at", "updated_at", "updated_by",
		}))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/projects/"+id.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
