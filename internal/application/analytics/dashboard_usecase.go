// Package analytics contiene el caso de uso del tablero: agregados simples de
// solicitudes y presupuestos, sin reportes.
package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/procurement-api/internal/application/dto"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
	"github.com/jhoicas/procurement-api/pkg/money"
)

// SummaryCache puerto opcional de caché para el resumen (ej. Redis).
type SummaryCache interface {
	Get(ctx context.Context, key string) (*dto.DashboardSummaryDTO, bool)
	Set(ctx context.Context, key string, summary *dto.DashboardSummaryDTO)
}

// DashboardUseCase genera el resumen del tablero.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	cache         SummaryCache
}

// NewDashboardUseCase construye el caso de uso. cache puede ser nil.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, cache SummaryCache) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, cache: cache}
}

// GetSummary construye el DashboardSummaryDTO para el alcance indicado.
// userID alimenta el contador "mis solicitudes".
//
// Cuatro llamadas en paralelo:
//  1. CountByStatus(alcance)           → conteos y pendientes
//  2. CountByStatus(alcance + usuario) → MyRequests
//  3. CommittedSpend(alcance)          → gasto comprometido
//  4. BudgetTotals(alcance)            → total y saldo
func (uc *DashboardUseCase) GetSummary(ctx context.Context, scope repository.SummaryScope, userID string) (*dto.DashboardSummaryDTO, error) {
	key := cacheKey(scope, userID)
	if uc.cache != nil {
		if cached, ok := uc.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	// ── Goroutines para paralelizar las consultas ─────────────────────────────
	type countsResult struct {
		counts map[entity.RequestStatus]int
		err    error
	}
	type spendResult struct {
		spend decimal.Decimal
		err   error
	}
	type totalsResult struct {
		total     decimal.Decimal
		remaining decimal.Decimal
		err       error
	}

	countsCh := make(chan countsResult, 1)
	mineCh := make(chan countsResult, 1)
	spendCh := make(chan spendResult, 1)
	totalsCh := make(chan totalsResult, 1)

	go func() {
		c, err := uc.analyticsRepo.CountByStatus(ctx, scope)
		countsCh <- countsResult{c, err}
	}()
	go func() {
		if userID == "" {
			mineCh <- countsResult{}
			return
		}
		mine := scope
		mine.RequesterID = userID
		c, err := uc.analyticsRepo.CountByStatus(ctx, mine)
		mineCh <- countsResult{c, err}
	}()
	go func() {
		s, err := uc.analyticsRepo.CommittedSpend(ctx, scope)
		spendCh <- spendResult{s, err}
	}()
	go func() {
		t, r, err := uc.analyticsRepo.BudgetTotals(ctx, scope)
		totalsCh <- totalsResult{t, r, err}
	}()

	counts := <-countsCh
	mine := <-mineCh
	spend := <-spendCh
	totals := <-totalsCh

	if counts.err != nil {
		return nil, fmt.Errorf("dashboard: conteo por estado: %w", counts.err)
	}
	if mine.err != nil {
		return nil, fmt.Errorf("dashboard: mis solicitudes: %w", mine.err)
	}
	if spend.err != nil {
		return nil, fmt.Errorf("dashboard: gasto comprometido: %w", spend.err)
	}
	if totals.err != nil {
		return nil, fmt.Errorf("dashboard: totales de presupuesto: %w", totals.err)
	}

	// ── Construir DTO ──────────────────────────────────────────────────────────
	out := &dto.DashboardSummaryDTO{
		FiscalYear:       scope.FiscalYear,
		DepartmentID:     scope.DepartmentID,
		CountsByStatus:   make(map[string]int, len(entity.AllRequestStatuses())),
		PendingCount:     counts.counts[entity.RequestPending],
		MyRequests:       sumCounts(mine.counts),
		CommittedSpend:   spend.spend.Round(2),
		TotalBudget:      totals.total.Round(2),
		RemainingBudget:  totals.remaining.Round(2),
		UtilizationPct:   utilization(totals.total, totals.remaining),
		CommittedDisplay: money.FormatUSD(spend.spend),
		TotalDisplay:     money.FormatUSD(totals.total),
		RemainingDisplay: money.FormatUSD(totals.remaining),
	}
	for _, s := range entity.AllRequestStatuses() {
		out.CountsByStatus[string(s)] = counts.counts[s]
	}
	out.TotalRequests = sumCounts(counts.counts)

	if uc.cache != nil {
		uc.cache.Set(ctx, key, out)
	}
	return out, nil
}

func sumCounts(m map[entity.RequestStatus]int) int {
	n := 0
	for _, c := range m {
		n += c
	}
	return n
}

// utilization porcentaje del presupuesto ya reservado o consumido.
func utilization(total, remaining decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return total.Sub(remaining).Div(total).Mul(decimal.NewFromInt(100)).Round(2)
}

func cacheKey(scope repository.SummaryScope, userID string) string {
	return fmt.Sprintf("dashboard:summary:%s:%d:%s", scope.DepartmentID, scope.FiscalYear, userID)
}
