package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/procurement-api/internal/application/analytics"
	"github.com/jhoicas/procurement-api/internal/application/onboarding"
	"github.com/jhoicas/procurement-api/internal/application/procurement"
	"github.com/jhoicas/procurement-api/internal/application/query"
	"github.com/jhoicas/procurement-api/internal/application/usecase"
)

// Pinger dependencia verificable por el health check (pool de PostgreSQL, Redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName  string
	Engine       *procurement.Engine
	Queries      *query.RequestQueryUseCase
	Requisition  *usecase.RequisitionUseCase
	DashboardUC  *appanalytics.DashboardUseCase
	DepartmentUC *usecase.DepartmentUseCase
	BudgetUC     *usecase.BudgetUseCase
	UserUC       *usecase.UserUseCase
	RoleUC       *usecase.RoleUseCase
	SupplierUC   *usecase.SupplierUseCase
	Onboarding   *onboarding.Service
	Health       map[string]Pinger
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps.ServiceName, deps.Health))

	api := app.Group("/api")

	// Invitaciones (público): deben registrarse antes del grupo protegido.
	invitationHandler := NewInvitationHandler(deps.Onboarding)
	api.Get("/invitations/:token", invitationHandler.Lookup)
	api.Post("/invitations/:token/redeem", invitationHandler.Redeem)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	admin := RequireRole(RoleAdmin)

	// Solicitudes de compra
	requestHandler := NewRequestHandler(deps.Engine, deps.Queries, deps.Requisition)
	requests := protected.Group("/requests")
	requests.Post("/", requestHandler.Create)
	requests.Get("/", requestHandler.List)
	requests.Get("/:id", requestHandler.Get)
	requests.Get("/:id/history", requestHandler.History)
	requests.Get("/:id/pdf", requestHandler.DownloadPDF)
	requests.Post("/:id/approve", requestHandler.Approve())
	requests.Post("/:id/reject", requestHandler.Reject())
	requests.Post("/:id/start", requestHandler.Start())
	requests.Post("/:id/cancel", requestHandler.Cancel())
	requests.Post("/:id/complete", requestHandler.Complete())

	// Tablero
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)

	// Departamentos y presupuestos (escritura solo admin)
	departmentHandler := NewDepartmentHandler(deps.DepartmentUC, deps.BudgetUC, deps.UserUC)
	departments := protected.Group("/departments")
	departments.Get("/", departmentHandler.List)
	departments.Post("/", admin, departmentHandler.Create)
	departments.Get("/:id", departmentHandler.GetByID)
	departments.Put("/:id", admin, departmentHandler.Rename)
	departments.Delete("/:id", admin, departmentHandler.Delete)
	departments.Get("/:id/budgets", departmentHandler.ListBudgets)
	departments.Get("/:id/users", departmentHandler.ListUsers)

	budgets := protected.Group("/budgets")
	budgets.Post("/", admin, departmentHandler.CreateBudget)
	budgets.Get("/:id", departmentHandler.GetBudget)

	// Usuarios y roles
	userHandler := NewUserHandler(deps.UserUC, deps.RoleUC)
	users := protected.Group("/users")
	users.Get("/", admin, userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id/department", admin, userHandler.AssignDepartment)
	users.Post("/:id/deactivate", admin, userHandler.Deactivate)

	roles := protected.Group("/roles")
	roles.Get("/", userHandler.ListRoles)
	roles.Post("/", admin, userHandler.CreateRole)

	// Proveedores
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers := protected.Group("/suppliers")
	suppliers.Get("/", supplierHandler.List)
	suppliers.Post("/", admin, supplierHandler.Create)
	suppliers.Put("/:id/status", admin, supplierHandler.UpdateStatus)

	// Invitaciones (admin)
	invitations := protected.Group("/invitations", admin)
	invitations.Post("/", invitationHandler.Issue)
	invitations.Get("/", invitationHandler.ListPending)
	invitations.Post("/:id/cancel", invitationHandler.Cancel)
}

// healthHandler responde 200 si todas las dependencias responden, 503 si alguna falla.
func healthHandler(service string, checks map[string]Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		deps := make(map[string]string, len(checks))
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				deps[name] = err.Error()
				status = "degraded"
				continue
			}
			deps[name] = "ok"
		}
		code := fiber.StatusOK
		if status != "ok" {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{"status": status, "service": service, "dependencies": deps})
	}
}
