package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateDepartmentRequest entrada para crear o renombrar un departamento.
type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

// DepartmentResponse salida de un departamento.
type DepartmentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateBudgetRequest entrada para crear un presupuesto anual; el saldo inicia igual al total.
type CreateBudgetRequest struct {
	DepartmentID string          `json:"department_id" validate:"required,uuid"`
	FiscalYear   int             `json:"fiscal_year" validate:"required,min=2000,max=2100"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// BudgetResponse salida de un presupuesto.
type BudgetResponse struct {
	ID               string          `json:"id"`
	DepartmentID     string          `json:"department_id"`
	FiscalYear       int             `json:"fiscal_year"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	TotalDisplay     string          `json:"total_display"`
	RemainingDisplay string          `json:"remaining_display"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
