package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/reamshq/statement-parser/internal/entity"
)

// ---- statement files ----

func (h *Handler) handleCreateStatementFile(c *fiber.Ctx) error {
	accountID, ok := pathID(c, "accountID")
	if !ok {
		return badRequest(c, "invalid account id")
	}
	var f entity.StatementFile
	if err := c.BodyParser(&f); err != nil {
		return badRequest(c, "invalid request body")
	}
	if f.FilePath == "" {
		return badRequest(c, "file_path is required")
	}
	f.BankAccountID = accountID
	f.UploadedBy = actor(c)
	created, err := h.files.Create(c.UserContext(), &f)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) handleListStatementFiles(c *fiber.Ctx) error {
	accountID, ok := pathID(c, "accountID")
	if !ok {
		return badRequest(c, "invalid account id")
	}
	limit, offset := pageParams(c)
	page, err := h.files.ListByAccount(c.UserContext(), accountID, limit, offset)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(page)
}

func (h *Handler) handleGetStatementFile(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid statement file id")
	}
	f, err := h.files.GetByID(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(f)
}

func (h *Handler) handleUpdateStatementFile(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid statement file id")
	}
	var f entity.StatementFile
	if err := c.BodyParser(&f); err != nil {
		return badRequest(c, "invalid request body")
	}
	f.ID = id
	by := actor(c)
	f.UpdatedBy = &by
	updated, err := h.files.Update(c.UserContext(), &f)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) handleDeleteStatementFile(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid statement file id")
	}
	if err := h.files.Delete(c.UserContext(), id); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ---- entries ----

func (h *Handler) handleGetEntry(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid entry id")
	}
	e, err := h.entries.GetByID(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(e)
}

func (h *Handler) handleUpdateEntry(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid entry id")
	}
	var e entity.StatementEntry
	if err := c.BodyParser(&e); err != nil {
		return badRequest(c, "invalid request body")
	}
	e.ID = id
	by := actor(c)
	e.UpdatedBy = &by
	updated, err := h.entries.Update(c.UserContext(), &e)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) handleDeleteEntry(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid entry id")
	}
	if err := h.entries.Delete(c.UserContext(), id); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ---- splits ----

func (h *Handler) handleListSplits(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid entry id")
	}
	splits, err := h.entries.ListSplits(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(splits)
}

func (h *Handler) handleReplaceSplits(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid entry id")
	}
	var splits []entity.EntrySplit
	if err := c.BodyParser(&splits); err != nil {
		return badRequest(c, "invalid request body")
	}
	replaced, err := h.entries.ReplaceSplits(c.UserContext(), id, splits)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(replaced)
}
