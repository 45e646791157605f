package server

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/reamshq/statement-parser/constants"
	"github.com/reamshq/statement-parser/internal/common"
	"github.com/reamshq/statement-parser/internal/export"
	"github.com/reamshq/statement-parser/internal/llm/factory"
	"github.com/reamshq/statement-parser/internal/pdf"
	"github.com/reamshq/statement-parser/internal/pipeline"
	"github.com/reamshq/statement-parser/internal/repository"
	"github.com/reamshq/statement-parser/internal/upload"
)

// ParserFactory builds a statement parser for one request. Adapters are
// stateless and cheap, so each request gets a fresh pipeline for its provider.
type ParserFactory func(provider constants.Provider) (*pipeline.Parser, error)

// DefaultParserFactory wires the production pipeline: upload validation, PDF
// tooling, and the provider adapter chosen per request.
func DefaultParserFactory(cfg *common.Config, logger *slog.Logger) ParserFactory {
	validator := upload.NewValidator(cfg.Upload.MaxFileSizeMB)
	text := pdf.NewTextExtractor(cfg.PDF, logger)
	images := pdf.NewImageConverter(cfg.PDF, logger)

	return func(provider constants.Provider) (*pipeline.Parser, error) {
		extractor, err := factory.New(provider, cfg.LLM, logger)
		if err != nil {
			return nil, err
		}
		engine := pipeline.NewEngine(extractor, cfg.LLM.MaxFollowUps, logger)
		return pipeline.NewParser(validator, text, images, engine, logger), nil
	}
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	cfg        *common.Config
	newParser  ParserFactory
	projects   repository.ProjectRepository
	accounts   repository.BankAccountRepository
	categories repository.CategoryRepository
	files      repository.StatementFileRepository
	entries    repository.StatementEntryRepository
	exporter   *export.Service
	log        *slog.Logger
}

func NewHandler(cfg *common.Config, db repository.DB, newParser ParserFactory, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	entries := repository.NewStatementEntryRepository(db, logger)
	categories := repository.NewCategoryRepository(db, logger)
	return &Handler{
		cfg:        cfg,
		newParser:  newParser,
		projects:   repository.NewProjectRepository(db, logger),
		accounts:   repository.NewBankAccountRepository(db, logger),
		categories: categories,
		files:      repository.NewStatementFileRepository(db, logger),
		entries:    entries,
		exporter:   export.NewService(entries, categories, logger),
		log:        logger,
	}
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.handleHealth)

	v1 := app.Group("/api/v1")

	v1.Post("/statements/parse", h.handleParseStatement)

	v1.Post("/projects", h.handleCreateProject)
	v1.Get("/projects", h.handleListProjects)
	v1.Get("/projects/:id", h.handleGetProject)
	v1.Put("/projects/:id", h.handleUpdateProject)
	v1.Delete("/projects/:id", h.handleDeleteProject)

	v1.Post("/projects/:projectID/accounts", h.handleCreateAccount)
	v1.Get("/projects/:projectID/accounts", h.handleListAccounts)
	v1.Get("/accounts/:id", h.handleGetAccount)
	v1.Put("/accounts/:id", h.handleUpdateAccount)
	v1.Delete("/accounts/:id", h.handleDeleteAccount)

	v1.Post("/categories", h.handleCreateCategory)
	v1.Get("/categories", h.handleListCategories)
	v1.Get("/categories/:id", h.handleGetCategory)
	v1.Put("/categories/:id", h.handleUpdateCategory)
	v1.Delete("/categories/:id", h.handleDeleteCategory)

	v1.Post("/accounts/:accountID/statement-files", h.handleCreateStatementFile)
	v1.Get("/accounts/:accountID/statement-files", h.handleListStatementFiles)
	v1.Get("/statement-files/:id", h.handleGetStatementFile)
	v1.Put("/statement-files/:id", h.handleUpdateStatementFile)
	v1.Delete("/statement-files/:id", h.handleDeleteStatementFile)
	v1.Post("/statement-files/:id/entries/import", h.handleImportEntries)

	v1.Get("/entries", h.handleListEntries)
	v1.Get("/entries/export", h.handleExportEntries)
	v1.Get("/entries/:id", h.handleGetEntry)
	v1.Put("/entries/:id", h.handleUpdateEntry)
	v1.Delete("/entries/:id", h.handleDeleteEntry)
	v1.Get("/entries/:id/splits", h.handleListSplits)
	v1.Put("/entries/:id/splits", h.handleReplaceSplits)
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// writeError maps the error taxonomy onto HTTP statuses. Validation problems
// are the client's fault, missing rows are 404, the rest is ours.
func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, common.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		h.log.Error("request failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// pageParams reads limit/offset query parameters with sane bounds.
func pageParams(c *fiber.Ctx) (limit, offset int) {
	limit = 20
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > 100 {
		limit = 100
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
