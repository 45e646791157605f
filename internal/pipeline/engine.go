package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/reamshq/statement-parser/internal/entity"
	"github.com/reamshq/statement-parser/internal/llm"
)

// defaultMaxFollowUps bounds continuation calls in text mode so a model that
// never clears its has_more flag cannot run up cost forever.
const defaultMaxFollowUps = 3

// Engine drives one logical extraction job over an Extractor: repeated calls
// following continuation hints in text mode, one call per unique page image
// in image mode, merging chunks into a single canonical statement. Engines
// hold no mutable state between jobs; construct one per request.
type Engine struct {
	extractor    llm.Extractor
	maxFollowUps int
	log          *slog.Logger
}

func NewEngine(extractor llm.Extractor, maxFollowUps int, logger *slog.Logger) *Engine {
	if maxFollowUps <= 0 {
		maxFollowUps = defaultMaxFollowUps
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{extractor: extractor, maxFollowUps: maxFollowUps, log: logger}
}

// ParseText extracts a statement from full document text. Follow-up calls
// reuse the same text; the continuation hint is the model's own bookmark, not
// an offset this engine controls.
func (e *Engine) ParseText(ctx context.Context, text string) (entity.Statement, error) {
	merged, err := e.extractor.ExtractFromText(ctx, text, "")
	if err != nil {
		return entity.Statement{}, err
	}

	followUps := 0
	for followUps < e.maxFollowUps && truthy(merged["has_more"]) && hintOf(merged) != "" {
		hint := hintOf(merged)
		e.log.Info("engine.continue", "follow_up", followUps+1, "hint", hint)
		next, err := e.extractor.ExtractFromText(ctx, text, hint)
		if err != nil {
			return entity.Statement{}, err
		}
		merged = mergeChunks(merged, next)
		followUps++
	}

	stripControlFields(merged)
	return llm.NormalizeStatement(merged)
}

// ParseImages extracts a statement from encoded page images, one provider
// call per unique image. Exact duplicate pages are skipped by content hash,
// and pages are folded in increasing page order so the merge stays
// deterministic. Zero unique images is a valid degenerate case: the empty
// statement skeleton, not an error.
func (e *Engine) ParseImages(ctx context.Context, images []string) (entity.Statement, error) {
	var merged map[string]any
	seen := make(map[string]struct{}, len(images))

	for idx, img := range images {
		sum := sha256.Sum256([]byte(img))
		digest := hex.EncodeToString(sum[:])
		if _, dup := seen[digest]; dup {
			e.log.Debug("engine.page.duplicate_skipped", "page", idx+1)
			continue
		}
		seen[digest] = struct{}{}

		// The page hint is traceability only; image mode has no resume
		// protocol.
		chunk, err := e.extractor.ExtractFromImages(ctx, []string{img}, fmt.Sprintf("page=%d", idx+1))
		if err != nil {
			return entity.Statement{}, err
		}
		if merged == nil {
			merged = chunk
		} else {
			merged = mergeChunks(merged, chunk)
		}
	}

	if merged == nil {
		return entity.EmptyStatement(), nil
	}

	stripControlFields(merged)
	return llm.NormalizeStatement(merged)
}
