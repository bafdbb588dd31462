package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/procurement-api/internal/application/dto"
	"github.com/jhoicas/procurement-api/internal/application/usecase"
)

// DepartmentHandler administra departamentos y sus presupuestos anuales.
type DepartmentHandler struct {
	departments *usecase.DepartmentUseCase
	budgets     *usecase.BudgetUseCase
	users       *usecase.UserUseCase
}

// NewDepartmentHandler construye el handler.
func NewDepartmentHandler(departments *usecase.DepartmentUseCase, budgets *usecase.BudgetUseCase, users *usecase.UserUseCase) *DepartmentHandler {
	return &DepartmentHandler{departments: departments, budgets: budgets, users: users}
}

// Create godoc
// @Summary      Crear departamento
// @Tags         departments
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDepartmentRequest  true  "nombre"
// @Success      201   {object}  dto.DepartmentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/departments [post]
func (h *DepartmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDepartmentRequest
	if ok, err := decodeBody(c, &in); !ok {
		return err
	}
	out, err := h.departments.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/departments
func (h *DepartmentHandler) List(c *fiber.Ctx) error {
	out, err := h.departments.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/departments/:id
func (h *DepartmentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.departments.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Rename PUT /api/departments/:id
func (h *DepartmentHandler) Rename(c *fiber.Ctx) error {
	var in dto.CreateDepartmentRequest
	if ok, err := decodeBody(c, &in); !ok {
		return err
	}
	out, err := h.departments.Rename(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/departments/:id. Con presupuestos o usuarios asociados → 409.
func (h *DepartmentHandler) Delete(c *fiber.Ctx) error {
	if err := h.departments.Delete(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListBudgets GET /api/departments/:id/budgets
func (h *DepartmentHandler) ListBudgets(c *fiber.Ctx) error {
	out, err := h.budgets.ListByDepartment(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListUsers GET /api/departments/:id/users
func (h *DepartmentHandler) ListUsers(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	out, err := h.users.List(c.Context(), c.Params("id"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateBudget godoc
// @Summary      Crear presupuesto anual
// @Description  El saldo inicial es igual al total.
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBudgetRequest  true  "departamento, año y total"
// @Success      201   {object}  dto.BudgetResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/budgets [post]
func (h *DepartmentHandler) CreateBudget(c *fiber.Ctx) error {
	var in dto.CreateBudgetRequest
	if ok, err := decodeBody(c, &in); !ok {
		return err
	}
	out, err := h.budgets.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetBudget GET /api/budgets/:id
func (h *DepartmentHandler) GetBudget(c *fiber.Ctx) error {
	out, err := h.budgets.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
