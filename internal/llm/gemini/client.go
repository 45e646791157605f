package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/reamshq/statement-parser/internal/common"
	"github.com/reamshq/statement-parser/internal/llm"
)

// supplementaryGuidance is the Gemini-specific addendum to the universal
// parsing prompt.
const supplementaryGuidance = "Do NOT wrap the response in code fences. Do NOT use ```json or any Markdown. Output must begin with \"{\" and end with \"}\"."

// Config for the Gemini client.
type Config struct {
	APIKey string // if empty, the genai SDK falls back to its own env lookup
	Model  string // e.g., "gemini-2.0-flash"
}

type Client struct {
	cfg Config
	log *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, log: logger}
}

// ExtractFromText implements llm.Extractor with one text-only generateContent
// call.
func (c *Client) ExtractFromText(ctx context.Context, text, continuationHint string) (map[string]any, error) {
	parts := []*genai.Part{
		{Text: llm.ParsingPrompt() + "\n" + supplementaryGuidance + "\n\n" + llm.TextInstruction(continuationHint) + "\n\n" + text},
	}
	return c.generate(ctx, parts, len(text), continuationHint)
}

// ExtractFromImages implements llm.Extractor with one vision generateContent
// call over base64-encoded PNG pages.
func (c *Client) ExtractFromImages(ctx context.Context, images []string, continuationHint string) (map[string]any, error) {
	parts := []*genai.Part{
		{Text: llm.ParsingPrompt() + "\n" + supplementaryGuidance + "\n\n" + llm.ImageInstruction(continuationHint)},
	}
	for i, img := range images {
		data, err := base64.StdEncoding.DecodeString(img)
		if err != nil {
			return nil, &common.ProviderError{Provider: "gemini", Err: fmt.Errorf("decode page image %d: %w", i+1, err)}
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "image/png", Data: data},
		})
	}
	return c.generate(ctx, parts, len(images), continuationHint)
}

func (c *Client) generate(ctx context.Context, parts []*genai.Part, inputSize int, hint string) (map[string]any, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", "gemini",
		"model", c.cfg.Model,
		"input_size", inputSize,
		"continuation", hint != "",
	)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      c.cfg.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, &common.ProviderError{Provider: "gemini", Err: fmt.Errorf("create genai client: %w", err)}
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model, contents, nil)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, &common.ProviderError{Provider: "gemini", Err: fmt.Errorf("generate content: %w", err)}
	}

	rawText := resp.Text()
	if rawText == "" {
		c.log.Error("llm.extract.empty_response",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, &common.ProviderError{Provider: "gemini", Err: fmt.Errorf("empty response from model")}
	}

	rec, err := llm.RecoverJSON(rawText)
	if err != nil {
		c.log.Error("llm.extract.recovery_failed",
			"req_id", rid, "error", err, "content_bytes", len(rawText),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	if err := llm.ValidateChunk(rec); err != nil {
		c.log.Warn("llm.extract.schema_advisory", "req_id", rid, "error", err)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"has_more", rec["has_more"] == true,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}
