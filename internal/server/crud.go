package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/reamshq/statement-parser/internal/entity"
)

func pathID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// actor identifies who performed a mutation, taken from the X-User header.
// There is no authentication layer; upstream infrastructure owns identity.
func actor(c *fiber.Ctx) string {
	if u := c.Get("X-User"); u != "" {
		return u
	}
	return "anonymous"
}

// ---- projects ----

func (h *Handler) handleCreateProject(c *fiber.Ctx) error {
	var p entity.Project
	if err := c.BodyParser(&p); err != nil {
		return badRequest(c, "invalid request body")
	}
	if p.Name == "" {
		return badRequest(c, "name is required")
	}
	p.CreatedBy = actor(c)
	created, err := h.projects.Create(c.UserContext(), &p)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) handleListProjects(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	page, err := h.projects.List(c.UserContext(), limit, offset, c.QueryBool("include_inactive"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(page)
}

func (h *Handler) handleGetProject(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid project id")
	}
	p, err := h.projects.GetByID(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) handleUpdateProject(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid project id")
	}
	var p entity.Project
	if err := c.BodyParser(&p); err != nil {
		return badRequest(c, "invalid request body")
	}
	p.ID = id
	by := actor(c)
	p.UpdatedBy = &by
	updated, err := h.projects.Update(c.UserContext(), &p)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(updated)
}

// handleDeleteProject deactivates by default; ?hard=true removes the row.
func (h *Handler) handleDeleteProject(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid project id")
	}
	var err error
	if c.QueryBool("hard") {
		err = h.projects.Delete(c.UserContext(), id)
	} else {
		err = h.projects.Deactivate(c.UserContext(), id, actor(c))
	}
	if err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ---- bank accounts ----

func (h *Handler) handleCreateAccount(c *fiber.Ctx) error {
	projectID, ok := pathID(c, "projectID")
	if !ok {
		return badRequest(c, "invalid project id")
	}
	var a entity.BankAccount
	if err := c.BodyParser(&a); err != nil {
		return badRequest(c, "invalid request body")
	}
	if a.AccountNumber == "" || a.BankName == "" {
		return badRequest(c, "account_number and bank_name are required")
	}
	a.ProjectID = projectID
	a.CreatedBy = actor(c)
	created, err := h.accounts.Create(c.UserContext(), &a)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) handleListAccounts(c *fiber.Ctx) error {
	projectID, ok := pathID(c, "projectID")
	if !ok {
		return badRequest(c, "invalid project id")
	}
	limit, offset := pageParams(c)
	page, err := h.accounts.ListByProject(c.UserContext(), projectID, limit, offset)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(page)
}

func (h *Handler) handleGetAccount(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid account id")
	}
	a, err := h.accounts.GetByID(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(a)
}

func (h *Handler) handleUpdateAccount(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid account id")
	}
	var a entity.BankAccount
	if err := c.BodyParser(&a); err != nil {
		return badRequest(c, "invalid request body")
	}
	a.ID = id
	by := actor(c)
	a.UpdatedBy = &by
	updated, err := h.accounts.Update(c.UserContext(), &a)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) handleDeleteAccount(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid account id")
	}
	if err := h.accounts.Delete(c.UserContext(), id); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ---- categories ----

func (h *Handler) handleCreateCategory(c *fiber.Ctx) error {
	var cat entity.Category
	if err := c.BodyParser(&cat); err != nil {
		return badRequest(c, "invalid request body")
	}
	if cat.Name == "" {
		return badRequest(c, "name is required")
	}
	cat.CreatedBy = actor(c)
	created, err := h.categories.Create(c.UserContext(), &cat)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) handleListCategories(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	page, err := h.categories.List(c.UserContext(), limit, offset, c.QueryBool("include_inactive"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(page)
}

func (h *Handler) handleGetCategory(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid category id")
	}
	cat, err := h.categories.GetByID(c.UserContext(), id)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(cat)
}

func (h *Handler) handleUpdateCategory(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid category id")
	}
	var cat entity.Category
	if err := c.BodyParser(&cat); err != nil {
		return badRequest(c, "invalid request body")
	}
	cat.ID = id
	by := actor(c)
	cat.UpdatedBy = &by
	updated, err := h.categories.Update(c.UserContext(), &cat)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) handleDeleteCategory(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid category id")
	}
	var err error
	if c.QueryBool("hard") {
		err = h.categories.Delete(c.UserContext(), id)
	} else {
		err = h.categories.Deactivate(c.UserContext(), id, actor(c))
	}
	if err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
