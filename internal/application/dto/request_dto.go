package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateRequestRequest entrada para crear una solicitud de compra. El solicitante sale del token.
type CreateRequestRequest struct {
	BudgetID      string          `json:"budget_id" validate:"required,uuid"`
	DepartmentID  string          `json:"department_id" validate:"required,uuid"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description" validate:"required,min=3,max=500"`
	Justification string          `json:"justification" validate:"required,max=2000"`
	FundingSource string          `json:"funding_source" validate:"required,max=100"`
	RequestDate   *time.Time      `json:"request_date,omitempty"`
}

// RequestResponse salida de una solicitud.
type RequestResponse struct {
	ID            string          `json:"id"`
	RequesterID   string          `json:"requester_id"`
	BudgetID      string          `json:"budget_id"`
	DepartmentID  string          `json:"department_id"`
	Amount        decimal.Decimal `json:"amount"`
	AmountDisplay string          `json:"amount_display"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
	Justification string          `json:"justification"`
	FundingSource string          `json:"funding_source"`
	RequestDate   time.Time       `json:"request_date"`
	ApprovedBy    string          `json:"approved_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// RequesterSummary datos del solicitante en la vista desnormalizada.
type RequesterSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// BudgetSummary datos del presupuesto en la vista desnormalizada.
type BudgetSummary struct {
	ID               string          `json:"id"`
	FiscalYear       int             `json:"fiscal_year"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	RemainingDisplay string          `json:"remaining_display"`
}

// RequestViewResponse solicitud con solicitante, departamento y presupuesto resueltos.
type RequestViewResponse struct {
	RequestResponse
	Requester      RequesterSummary `json:"requester"`
	DepartmentName string           `json:"department_name"`
	Budget         BudgetSummary    `json:"budget"`
	ApproverName   string           `json:"approver_name,omitempty"`
}

// RequestListResponse listado paginado.
type RequestListResponse struct {
	Items []RequestViewResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// RequestEventResponse entrada del historial.
type RequestEventResponse struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	ActorID    string          `json:"actor_id"`
	FromStatus string          `json:"from_status,omitempty"`
	ToStatus   string          `json:"to_status"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}
