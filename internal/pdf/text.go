package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/reamshq/statement-parser/internal/common"
)

// TextExtractor pulls plain text out of a PDF. The structured Go library is
// tried first; scanned or oddly-encoded documents fall back to the external
// pdftotext command (poppler-utils).
type TextExtractor struct {
	cfg    common.PDFConfig
	runner Runner
	log    *slog.Logger
}

func NewTextExtractor(cfg common.PDFConfig, logger *slog.Logger) *TextExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextExtractor{cfg: cfg, runner: execRunner{}, log: logger}
}

// ExtractText returns the full document text with pages separated by form
// feeds.
func (e *TextExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	pages, libErr := extractWithLibrary(data)
	if libErr == nil && isReadableText(pages) {
		return strings.Join(pages, "\n\f\n"), nil
	}

	text, popplerErr := e.extractWithPdftotext(ctx, data)
	if popplerErr == nil && isReadableText([]string{text}) {
		return text, nil
	}

	e.log.Error("pdf.text.failed", "lib_error", libErr, "pdftotext_error", popplerErr)
	if libErr != nil {
		return "", fmt.Errorf("pdf text extraction failed: %w", libErr)
	}
	return "", fmt.Errorf("no readable text could be extracted; the file may be image-based or scanned")
}

func extractWithLibrary(data []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, txt)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages decoded")
	}
	return pages, nil
}

func (e *TextExtractor) extractWithPdftotext(ctx context.Context, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "sp-pdf-*.pdf")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(tmp.Name()); err != nil {
			e.log.Warn("pdf.text.tmp_cleanup", "path", tmp.Name(), "error", err)
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %v: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// isReadableText guards against decoding garbage from identity-encoded
// fonts: requires a minimum length and a majority of plain ASCII characters.
func isReadableText(pages []string) bool {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) || unicode.IsPunct(r) ||
				r == '£' || r == '$' || r == '€' {
				readable++
			}
		}
	}
	if total <= 50 {
		return false
	}
	return float64(readable)/float64(total) > 0.6
}
