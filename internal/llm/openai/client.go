package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reamshq/statement-parser/internal/common"
	"github.com/reamshq/statement-parser/internal/llm"
)

// supplementaryGuidance is the OpenAI-specific addendum to the universal
// parsing prompt.
const supplementaryGuidance = "It is absolutely critical that you extract all details properly and do not reorder or skip a transaction."

// ExtractFromText implements llm.Extractor with one text-only
// chat/completions call.
func (c *Client) ExtractFromText(ctx context.Context, text, continuationHint string) (map[string]any, error) {
	user := llm.TextInstruction(continuationHint) + "\n\n" + text
	return c.extract(ctx, []map[string]any{
		{"role": "system", "content": llm.ParsingPrompt() + "\n" + supplementaryGuidance},
		{"role": "user", "content": user},
	}, len(text), continuationHint)
}

// ExtractFromImages implements llm.Extractor with one vision
// chat/completions call over base64-encoded PNG pages.
func (c *Client) ExtractFromImages(ctx context.Context, images []string, continuationHint string) (map[string]any, error) {
	content := []map[string]any{
		{"type": "text", "text": llm.ImageInstruction(continuationHint)},
	}
	for _, img := range images {
		content = append(content, map[string]any{
			"type":      "image_url",
			"image_url": map[string]any{"url": "data:image/png;base64," + img},
		})
	}
	return c.extract(ctx, []map[string]any{
		{"role": "system", "content": llm.ParsingPrompt() + "\n" + supplementaryGuidance},
		{"role": "user", "content": content},
	}, len(images), continuationHint)
}

func (c *Client) extract(ctx context.Context, messages []map[string]any, inputSize int, hint string) (map[string]any, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", "openai",
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"input_size", inputSize,
		"continuation", hint != "",
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages":        messages,
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, &common.ProviderError{Provider: "openai", Err: err}
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, &common.ProviderError{Provider: "openai", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, &common.ProviderError{Provider: "openai", Err: fmt.Errorf("no choices in response")}
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)

	rec, err := llm.RecoverJSON(content)
	if err != nil {
		c.log.Error("llm.extract.recovery_failed",
			"req_id", rid, "error", err, "content_bytes", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	if err := llm.ValidateChunk(rec); err != nil {
		c.log.Warn("llm.extract.schema_advisory",
			"req_id", rid, "error", err,
		)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"transactions", chunkTxnCount(rec),
		"has_more", rec["has_more"] == true,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("openai response body close error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

func chunkTxnCount(rec map[string]any) int {
	if txns, ok := rec["transactions"].([]any); ok {
		return len(txns)
	}
	return 0
}
