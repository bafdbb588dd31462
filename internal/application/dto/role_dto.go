package dto

import "github.com/shopspring/decimal"

// CreateRoleRequest entrada para crear un rol.
type CreateRoleRequest struct {
	Name           string          `json:"name" validate:"required,min=2,max=60"`
	Description    string          `json:"description" validate:"max=300"`
	MaxBudgetLimit decimal.Decimal `json:"max_budget_limit"`
	CanApprove     bool            `json:"can_approve"`
}

// RoleResponse salida de un rol.
type RoleResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	MaxBudgetLimit decimal.Decimal `json:"max_budget_limit"`
	CanApprove     bool            `json:"can_approve"`
}
