package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus estado de una solicitud de compra.
type RequestStatus string

const (
	RequestPending    RequestStatus = "Pending"
	RequestApproved   RequestStatus = "Approved"
	RequestRejected   RequestStatus = "Rejected"
	RequestInProgress RequestStatus = "InProgress"
	RequestCompleted  RequestStatus = "Completed"
	RequestCancelled  RequestStatus = "Cancelled"
)

// transiciones permitidas; los estados sin entrada son terminales.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:    {RequestApproved, RequestRejected},
	RequestApproved:   {RequestInProgress, RequestCancelled},
	RequestInProgress: {RequestCompleted, RequestCancelled},
}

// AllRequestStatuses lista los estados en orden de flujo.
func AllRequestStatuses() []RequestStatus {
	return []RequestStatus{
		RequestPending, RequestApproved, RequestRejected,
		RequestInProgress, RequestCompleted, RequestCancelled,
	}
}

// IsValid verifica que el estado sea conocido.
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected,
		RequestInProgress, RequestCompleted, RequestCancelled:
		return true
	}
	return false
}

// IsTerminal indica que no hay transiciones de salida.
func (s RequestStatus) IsTerminal() bool {
	return len(requestTransitions[s]) == 0
}

// CanTransitionTo indica si el paso s -> next es una arista válida.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// HoldsFunds indica si en este estado la solicitud tiene una reserva activa o comprometida.
func (s RequestStatus) HoldsFunds() bool {
	return s == RequestApproved || s == RequestInProgress || s == RequestCompleted
}

// PurchaseRequest solicitud de compra contra un presupuesto departamental.
type PurchaseRequest struct {
	ID            string
	RequesterID   string
	BudgetID      string
	DepartmentID  string
	Amount        decimal.Decimal
	Status        RequestStatus
	Description   string
	Justification string
	FundingSource string
	RequestDate   time.Time
	ApprovedBy    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RequestAction acción registrada en el historial de una solicitud.
type RequestAction string

const (
	ActionCreated   RequestAction = "created"
	ActionApproved  RequestAction = "approved"
	ActionRejected  RequestAction = "rejected"
	ActionStarted   RequestAction = "started"
	ActionCancelled RequestAction = "cancelled"
	ActionCompleted RequestAction = "completed"
)

// RequestEvent entrada del historial, escrita en la misma transacción que el cambio de estado.
type RequestEvent struct {
	ID         string
	RequestID  string
	ActorID    string
	Action     RequestAction
	FromStatus RequestStatus
	ToStatus   RequestStatus
	Amount     decimal.Decimal
	OccurredAt time.Time
}
