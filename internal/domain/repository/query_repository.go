package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-api/internal/domain/entity"
)

// RequestFilter criterios combinados con AND. Campos vacíos no filtran.
type RequestFilter struct {
	RequesterID  string
	DepartmentID string
	Statuses     []entity.RequestStatus
	From         *time.Time // inclusive
	To           *time.Time // inclusive
	Limit        int
	Offset       int
}

// RequestView proyección desnormalizada de una solicitud para lectura.
type RequestView struct {
	Request            entity.PurchaseRequest
	RequesterFirstName string
	RequesterLastName  string
	RequesterEmail     string
	DepartmentName     string
	FiscalYear         int
	BudgetTotal        decimal.Decimal
	BudgetRemaining    decimal.Decimal
	ApproverName       string
}

// RequestQueryRepository lecturas sin bloqueo, ordenadas por request_date DESC.
type RequestQueryRepository interface {
	List(ctx context.Context, f RequestFilter) ([]*RequestView, error)
	Count(ctx context.Context, f RequestFilter) (int, error)
	GetView(ctx context.Context, id string) (*RequestView, error)
}

// SummaryScope acota los agregados del tablero.
type SummaryScope struct {
	DepartmentID string
	RequesterID  string
	FiscalYear   int
}

// AnalyticsRepository agregados simples de solo lectura para el tablero.
type AnalyticsRepository interface {
	CountByStatus(ctx context.Context, scope SummaryScope) (map[entity.RequestStatus]int, error)
	CommittedSpend(ctx context.Context, scope SummaryScope) (decimal.Decimal, error)
	BudgetTotals(ctx context.Context, scope SummaryScope) (total, remaining decimal.Decimal, err error)
}
