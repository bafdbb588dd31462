package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/procurement-api/internal/application/analytics"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

// DashboardHandler maneja los endpoints del tablero.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve conteos por estado, gasto comprometido y saldo de presupuestos.
// GET /api/dashboard/summary?department_id=&fiscal_year=
//
// Sin department_id el alcance es toda la universidad para admin y el
// departamento del token para el resto.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	scope := repository.SummaryScope{
		DepartmentID: c.Query("department_id"),
		FiscalYear:   c.QueryInt("fiscal_year", 0),
	}
	if scope.DepartmentID == "" && GetRole(c) != RoleAdmin {
		scope.DepartmentID = GetDepartmentID(c)
	}

	summary, err := h.uc.GetSummary(c.Context(), scope, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
