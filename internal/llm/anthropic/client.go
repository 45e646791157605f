package anthropic

import (
	"context"
	"log/slog"

	"github.com/reamshq/statement-parser/internal/common"
)

// Client is the Anthropic extractor slot. The backend is not wired up yet,
// so both operations fail fast with common.ErrProviderNotImplemented, which
// is permanent per process and never to be confused with a transient
// transport failure.
type Client struct {
	log *slog.Logger
}

func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{log: logger}
}

func (c *Client) ExtractFromText(ctx context.Context, text, continuationHint string) (map[string]any, error) {
	c.log.Warn("llm.extract.unimplemented", "provider", "anthropic", "mode", "text")
	return nil, common.WrapError(common.ErrProviderNotImplemented, "anthropic text extraction")
}

func (c *Client) ExtractFromImages(ctx context.Context, images []string, continuationHint string) (map[string]any, error) {
	c.log.Warn("llm.extract.unimplemented", "provider", "anthropic", "mode", "images")
	return nil, common.WrapError(common.ErrProviderNotImplemented, "anthropic vision extraction")
}
