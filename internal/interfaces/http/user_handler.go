package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/procurement-api/internal/application/dto"
	"github.com/jhoicas/procurement-api/internal/application/usecase"
)

// UserHandler administra usuarios y el catálogo de roles.
type UserHandler struct {
	users *usecase.UserUseCase
	roles *usecase.RoleUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(users *usecase.UserUseCase, roles *usecase.RoleUseCase) *UserHandler {
	return &UserHandler{users: users, roles: roles}
}

// List GET /api/users?department_id=&limit=&offset=
func (h *UserHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	if page.Limit > 100 || page.Offset < 0 {
		return badRequest(c, "VALIDATION", "limit máximo 100, offset no negativo")
	}
	out, err := h.users.List(c.Context(), c.Query("department_id"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/users/:id (incluye roles)
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.users.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AssignDepartment PUT /api/users/:id/department
func (h *UserHandler) AssignDepartment(c *fiber.Ctx) error {
	var in dto.AssignDepartmentRequest
	if ok, err := decodeBody(c, &in); !ok {
		return err
	}
	out, err := h.users.AssignDepartment(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Deactivate POST /api/users/:id/deactivate
func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.users.Deactivate(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListRoles GET /api/roles
func (h *UserHandler) ListRoles(c *fiber.Ctx) error {
	out, err := h.roles.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateRole godoc
// @Summary      Crear rol
// @Description  Un rol aprobador requiere max_budget_limit mayor a cero.
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRoleRequest  true  "rol"
// @Success      201   {object}  dto.RoleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/roles [post]
func (h *UserHandler) CreateRole(c *fiber.Ctx) error {
	var in dto.CreateRoleRequest
	if ok, err := decodeBody(c, &in); !ok {
		return err
	}
	out, err := h.roles.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
