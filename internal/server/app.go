package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/reamshq/statement-parser/internal/common"
)

// NewApp builds the fiber application with the handler's routes registered.
// BodyLimit leaves headroom over the upload cap so the validator, not the
// transport, produces the rejection message.
func NewApp(cfg *common.Config, h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "statement-parser",
		BodyLimit:    (cfg.Upload.MaxFileSizeMB + 1) * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	})
	app.Use(recover.New())
	h.RegisterRoutes(app)
	return app
}
