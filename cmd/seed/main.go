// seed puebla una base vacía con departamentos, presupuestos del año fiscal actual,
// roles, proveedores y un usuario administrador, e imprime un token de desarrollo.
//
// Uso: go run ./cmd/seed [email-admin]
// Lee la misma configuración que la API (DATABASE_URL, DB_*, JWT_*).
// Si el administrador ya existe no inserta nada y solo emite el token.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-api/internal/application/unitofwork"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
	"github.com/jhoicas/procurement-api/internal/infrastructure/postgres"
	"github.com/jhoicas/procurement-api/internal/infrastructure/security"
	"github.com/jhoicas/procurement-api/pkg/config"
	pkgjwt "github.com/jhoicas/procurement-api/pkg/jwt"
	"github.com/jhoicas/procurement-api/pkg/logger"
)

var departments = []struct {
	name   string
	budget int64
}{
	{"Finance", 250000},
	{"Physics", 180000},
	{"Computer Science", 320000},
	{"Library", 90000},
}

var roles = []entity.Role{
	{Name: "admin", Description: "Administración central de compras", MaxBudgetLimit: decimal.NewFromInt(1000000), CanApprove: true},
	{Name: "chair", Description: "Director de departamento", MaxBudgetLimit: decimal.NewFromInt(50000), CanApprove: true},
	{Name: "staff", Description: "Personal docente y administrativo", MaxBudgetLimit: decimal.Zero},
}

var suppliers = []entity.Supplier{
	{Name: "Lab Supplies Inc", ContactEmail: "sales@labsupplies.example", Status: entity.SupplierApproved},
	{Name: "Campus Office Depot", ContactEmail: "orders@campusoffice.example", Status: entity.SupplierApproved},
	{Name: "Academic Press", ContactEmail: "contact@academicpress.example", Status: entity.SupplierPending},
}

func main() {
	adminEmail := "admin@university.edu"
	if len(os.Args) > 1 {
		adminEmail = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	ctx := context.Background()
	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	if err := m.Up(); err != nil {
		log.Fatal().Err(err).Msg("aplicar migraciones")
	}
	_ = m.Close()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uow := unitofwork.New(postgres.NewTxRunner(pool), unitofwork.Options{Timeout: 30 * time.Second}, log)
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "cambiar-esta-clave"
	}
	hash, err := security.NewBcryptHasher(cfg.Invitation.BcryptCost).Hash(password)
	if err != nil {
		log.Fatal().Err(err).Msg("hash de contraseña")
	}

	var admin *entity.User
	err = uow.Do(ctx, func(ctx context.Context, repos repository.Repos) error {
		existing, err := repos.Users.GetByEmail(ctx, adminEmail)
		if err != nil {
			return err
		}
		if existing != nil {
			log.Info().Str("email", adminEmail).Msg("administrador existente, no se insertan datos")
			admin = existing
			return nil
		}
		admin, err = seed(ctx, repos, adminEmail, hash)
		return err
	})
	if err != nil {
		log.Fatal().Err(err).Msg("poblar base")
	}

	token, err := pkgjwt.Generate(cfg.JWT.Secret, admin.ID, admin.DepartmentID, "admin", cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		log.Fatal().Err(err).Msg("generar token")
	}
	fmt.Printf("admin: %s\nuser_id: %s\ntoken: %s\n", adminEmail, admin.ID, token)
}

func seed(ctx context.Context, repos repository.Repos, adminEmail, passwordHash string) (*entity.User, error) {
	now := time.Now().UTC()
	year := now.Year()

	var financeID string
	for _, d := range departments {
		dept := &entity.Department{ID: uuid.New().String(), Name: d.name, CreatedAt: now, UpdatedAt: now}
		if err := repos.Departments.Create(ctx, dept); err != nil {
			return nil, fmt.Errorf("departamento %s: %w", d.name, err)
		}
		if d.name == "Finance" {
			financeID = dept.ID
		}
		total := decimal.NewFromInt(d.budget)
		if err := repos.Budgets.Create(ctx, &entity.Budget{
			ID: uuid.New().String(), DepartmentID: dept.ID, FiscalYear: year,
			TotalAmount: total, RemainingAmount: total, CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			return nil, fmt.Errorf("presupuesto %s: %w", d.name, err)
		}
	}

	var adminRoleID string
	for _, r := range roles {
		role := r
		existing, err := repos.Roles.GetByName(ctx, role.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			role.ID = existing.ID
		} else {
			role.ID = uuid.New().String()
			role.CreatedAt = now
			if err := repos.Roles.Create(ctx, &role); err != nil {
				return nil, fmt.Errorf("rol %s: %w", role.Name, err)
			}
		}
		if role.Name == "admin" {
			adminRoleID = role.ID
		}
	}

	for _, s := range suppliers {
		sup := s
		sup.ID = uuid.New().String()
		sup.OnboardingDate, sup.CreatedAt, sup.UpdatedAt = now, now, now
		if err := repos.Suppliers.Create(ctx, &sup); err != nil {
			return nil, fmt.Errorf("proveedor %s: %w", sup.Name, err)
		}
	}

	admin := &entity.User{
		ID: uuid.New().String(), FirstName: "Admin", LastName: "Compras", Email: adminEmail,
		PasswordHash: passwordHash, DepartmentID: financeID, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	if err := repos.Users.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("administrador: %w", err)
	}
	if err := repos.Roles.Assign(ctx, entity.UserRole{UserID: admin.ID, RoleID: adminRoleID, AssignedAt: now}); err != nil {
		return nil, fmt.Errorf("asignar rol admin: %w", err)
	}
	return admin, nil
}
