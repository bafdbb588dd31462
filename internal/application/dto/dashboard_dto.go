package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO agregados simples del tablero.
type DashboardSummaryDTO struct {
	FiscalYear       int             `json:"fiscal_year,omitempty"`
	DepartmentID     string          `json:"department_id,omitempty"`
	CountsByStatus   map[string]int  `json:"counts_by_status"`
	TotalRequests    int             `json:"total_requests"`
	PendingCount     int             `json:"pending_count"`
	MyRequests       int             `json:"my_requests"`
	CommittedSpend   decimal.Decimal `json:"committed_spend"`
	TotalBudget      decimal.Decimal `json:"total_budget"`
	RemainingBudget  decimal.Decimal `json:"remaining_budget"`
	UtilizationPct   decimal.Decimal `json:"utilization_pct"`
	CommittedDisplay string          `json:"committed_display"`
	TotalDisplay     string          `json:"total_display"`
	RemainingDisplay string          `json:"remaining_display"`
}
