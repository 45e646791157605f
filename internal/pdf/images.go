package pdf

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/reamshq/statement-parser/internal/common"
)

// ImageConverter renders PDF pages to PNG via the external pdftoppm command
// and returns them base64-encoded in page order.
type ImageConverter struct {
	cfg    common.PDFConfig
	runner Runner
	log    *slog.Logger
}

func NewImageConverter(cfg common.PDFConfig, logger *slog.Logger) *ImageConverter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageConverter{cfg: cfg, runner: execRunner{}, log: logger}
}

// ConvertToImages writes the document to a temp dir, renders one PNG per
// page, and returns the encoded pages capped at cfg.MaxPages.
func (c *ImageConverter) ConvertToImages(ctx context.Context, data []byte) ([]string, error) {
	tmpDir, err := os.MkdirTemp("", "sp-pages-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			c.log.Warn("pdf.images.tmp_cleanup", "path", tmpDir, "error", err)
		}
	}()

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, err
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := c.runner.Run(ctx, c.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", c.cfg.DPI), "-png", in, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %v: %s", err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if c.cfg.MaxPages > 0 && len(matches) > c.cfg.MaxPages {
		matches = matches[:c.cfg.MaxPages]
	}

	images := make([]string, 0, len(matches))
	for _, m := range matches {
		b, err := os.ReadFile(m)
		if err != nil {
			return nil, err
		}
		images = append(images, base64.StdEncoding.EncodeToString(b))
	}

	c.log.Info("pdf.images.ok", "pages", len(images), "dpi", c.cfg.DPI)
	return images, nil
}
