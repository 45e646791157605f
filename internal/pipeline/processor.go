package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/reamshq/statement-parser/internal/entity"
	"github.com/reamshq/statement-parser/internal/upload"
)

// UploadValidator is the file-validation collaborator.
type UploadValidator interface {
	ValidateUpload(meta upload.FileMeta) error
	ValidateContent(data []byte) error
}

// TextExtractor is the PDF-to-text collaborator.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// ImageConverter is the PDF-to-page-images collaborator, returning
// base64-encoded PNG blobs in page order.
type ImageConverter interface {
	ConvertToImages(ctx context.Context, data []byte) ([]string, error)
}

// Parser is the top-level entry point for one parse request: it validates
// the upload, picks the extraction mode, runs the engine, and wraps whatever
// happens into the uniform ParsedResponse. It is the single boundary where
// internal failures become response payloads.
type Parser struct {
	validator UploadValidator
	text      TextExtractor
	images    ImageConverter
	engine    *Engine
	log       *slog.Logger
}

func NewParser(validator UploadValidator, text TextExtractor, images ImageConverter, engine *Engine, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		validator: validator,
		text:      text,
		images:    images,
		engine:    engine,
		log:       logger,
	}
}

// ParseStatement parses one uploaded statement file. processing_time is
// wall-clock elapsed since the call began, reported on success and failure
// alike. The returned error duplicates the envelope's Error field so callers
// can classify the failure; it is non-nil exactly when Success is false.
func (p *Parser) ParseStatement(ctx context.Context, meta upload.FileMeta, r io.Reader, useVision bool) (entity.ParsedResponse, error) {
	start := time.Now()

	p.log.Info("parse.start",
		"filename", meta.Filename,
		"size", meta.Size,
		"use_vision", useVision,
	)

	st, err := p.parse(ctx, meta, r, useVision)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		p.log.Error("parse.failed",
			"filename", meta.Filename,
			"error", err,
			"elapsed_s", elapsed,
		)
		return entity.ParsedResponse{
			Success:        false,
			Error:          err.Error(),
			ProcessingTime: elapsed,
		}, err
	}

	p.log.Info("parse.ok",
		"filename", meta.Filename,
		"transactions", len(st.Transactions),
		"elapsed_s", elapsed,
	)
	return entity.ParsedResponse{
		Success:        true,
		Data:           &st,
		ProcessingTime: elapsed,
	}, nil
}

func (p *Parser) parse(ctx context.Context, meta upload.FileMeta, r io.Reader, useVision bool) (entity.Statement, error) {
	if err := p.validator.ValidateUpload(meta); err != nil {
		return entity.Statement{}, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return entity.Statement{}, err
	}
	if err := p.validator.ValidateContent(data); err != nil {
		return entity.Statement{}, err
	}

	if useVision {
		images, err := p.images.ConvertToImages(ctx, data)
		if err != nil {
			return entity.Statement{}, err
		}
		return p.engine.ParseImages(ctx, images)
	}

	text, err := p.text.ExtractText(ctx, data)
	if err != nil {
		return entity.Statement{}, err
	}
	return p.engine.ParseText(ctx, text)
}
