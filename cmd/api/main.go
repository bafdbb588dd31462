package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	appanalytics "github.com/jhoicas/procurement-api/internal/application/analytics"
	"github.com/jhoicas/procurement-api/internal/application/onboarding"
	"github.com/jhoicas/procurement-api/internal/application/ports"
	"github.com/jhoicas/procurement-api/internal/application/procurement"
	"github.com/jhoicas/procurement-api/internal/application/query"
	"github.com/jhoicas/procurement-api/internal/application/unitofwork"
	"github.com/jhoicas/procurement-api/internal/application/usecase"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
	"github.com/jhoicas/procurement-api/internal/infrastructure/cache"
	"github.com/jhoicas/procurement-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/procurement-api/internal/infrastructure/pdf"
	"github.com/jhoicas/procurement-api/internal/infrastructure/postgres"
	"github.com/jhoicas/procurement-api/internal/infrastructure/security"
	httpRouter "github.com/jhoicas/procurement-api/internal/interfaces/http"
	"github.com/jhoicas/procurement-api/pkg/config"
	"github.com/jhoicas/procurement-api/pkg/logger"
)

// backend agrupa lo que cambia según STORE_DRIVER.
type backend struct {
	runner    ports.TxRunner
	queries   repository.RequestQueryRepository
	analytics repository.AnalyticsRepository
	events    repository.RequestEventRepository
	health    map[string]httpRouter.Pinger
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	be := openBackend(ctx, cfg, log)
	defer be.close()

	uow := unitofwork.New(be.runner, unitofwork.Options{
		Timeout:      cfg.Store.Timeout,
		RetryBackoff: cfg.Store.RetryBackoff,
	}, log)

	// Caché del tablero: opcional, sin Redis se consulta siempre el almacén.
	var summaryCache appanalytics.SummaryCache
	if cfg.Redis.Enabled() {
		rc, err := cache.NewRedisSummaryCache(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, tablero sin caché")
		} else {
			defer rc.Close()
			summaryCache = rc
			be.health["redis"] = rc
		}
	}

	engine := procurement.NewEngine(uow, procurement.NewBudgetGuard(), log)
	onboardingSvc := onboarding.NewService(uow,
		security.NewBcryptHasher(cfg.Invitation.BcryptCost),
		security.NewRandomTokenGenerator(),
		onboarding.Options{TTL: cfg.Invitation.TTL},
		log,
	)
	requisitionUC := usecase.NewRequisitionUseCase(be.queries, be.events, infrapdf.NewMarotoPDFGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Procurement API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ServiceName:  cfg.App.Name,
		Engine:       engine,
		Queries:      query.NewRequestQueryUseCase(be.queries, cfg.Store.Timeout),
		Requisition:  requisitionUC,
		DashboardUC:  appanalytics.NewDashboardUseCase(be.analytics, summaryCache),
		DepartmentUC: usecase.NewDepartmentUseCase(uow),
		BudgetUC:     usecase.NewBudgetUseCase(uow),
		UserUC:       usecase.NewUserUseCase(uow, log),
		RoleUC:       usecase.NewRoleUseCase(uow),
		SupplierUC:   usecase.NewSupplierUseCase(uow),
		Onboarding:   onboardingSvc,
		Health:       be.health,
		JWTSecret:    cfg.JWT.Secret,
	})

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepInvitations(sweepCtx, onboardingSvc, cfg.Invitation.SweepInterval, log)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) backend {
	if cfg.Store.Driver == "memory" {
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		store := memory.New()
		return backend{
			runner:    store,
			queries:   store.Queries(),
			analytics: store.Analytics(),
			events:    store.Repos().RequestEvents,
			health:    map[string]httpRouter.Pinger{},
			close:     func() {},
		}
	}

	dsn := cfg.DB.ConnectionString()
	if cfg.Store.MigrateOnStart {
		m, err := postgres.NewMigrator(dsn, log)
		if err != nil {
			log.Fatal().Err(err).Msg("inicializar migraciones")
		}
		if err := m.Up(); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	return backend{
		runner:    postgres.NewTxRunner(pool),
		queries:   postgres.NewQueryRepository(pool),
		analytics: postgres.NewAnalyticsRepository(pool),
		events:    postgres.NewRequestEventRepository(pool),
		health:    map[string]httpRouter.Pinger{"postgres": pool},
		close:     pool.Close,
	}
}

// sweepInvitations marca como Expired las invitaciones vencidas cada interval.
// interval <= 0 desactiva el barrido.
func sweepInvitations(ctx context.Context, svc *onboarding.Service, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.ExpireOverdue(ctx); err != nil {
				log.Warn().Err(err).Msg("barrido de invitaciones")
			}
		}
	}
}
