package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Nombres de roles sembrados por defecto.
const (
	RoleAdmin     = "admin"
	RoleApprover  = "approver"
	RoleRequester = "requester"
)

// Role dato de referencia que define la capacidad de aprobación de un usuario.
type Role struct {
	ID             string
	Name           string
	Description    string
	MaxBudgetLimit decimal.Decimal
	CanApprove     bool
	CreatedAt      time.Time
}

// Covers indica si el rol puede aprobar una solicitud por amount.
func (r *Role) Covers(amount decimal.Decimal) bool {
	return r.CanApprove && amount.LessThanOrEqual(r.MaxBudgetLimit)
}

// UserRole asignación de un rol a un usuario.
type UserRole struct {
	UserID     string
	RoleID     string
	AssignedBy string
	AssignedAt time.Time
}

// CanApproveAmount devuelve true si algún rol permite aprobar amount.
func CanApproveAmount(roles []*Role, amount decimal.Decimal) bool {
	for _, r := range roles {
		if r.Covers(amount) {
			return true
		}
	}
	return false
}

// HasApprover devuelve true si algún rol tiene can_approve.
func HasApprover(roles []*Role) bool {
	for _, r := range roles {
		if r.CanApprove {
			return true
		}
	}
	return false
}
