package llm

import "context"

// Extractor is the capability interface a model backend implements. Each call
// performs exactly one request against the underlying model and returns the
// response already passed through RecoverJSON, so callers always see a
// structured chunk (possibly still carrying the has_more / next_page_hint
// control fields).
//
// A non-empty continuationHint asks the model to resume extraction from that
// point instead of restarting at page one. Adapters must not mutate shared
// state; a backend without a working implementation fails with
// common.ErrProviderNotImplemented, which callers must treat differently from
// a transport failure.
type Extractor interface {
	ExtractFromText(ctx context.Context, text, continuationHint string) (map[string]any, error)
	ExtractFromImages(ctx context.Context, images []string, continuationHint string) (map[string]any, error)
}
