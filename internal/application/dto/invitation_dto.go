package dto

import "time"

// IssueInvitationRequest entrada para invitar a un usuario.
type IssueInvitationRequest struct {
	Email        string   `json:"email" validate:"required,email"`
	FirstName    string   `json:"first_name" validate:"required,max=100"`
	LastName     string   `json:"last_name" validate:"required,max=100"`
	DepartmentID string   `json:"department_id" validate:"required,uuid"`
	RoleIDs      []string `json:"role_ids" validate:"required,min=1,dive,uuid"`
}

// RedeemInvitationRequest credencial elegida por el invitado.
type RedeemInvitationRequest struct {
	Password        string `json:"password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// InvitationResponse salida de una invitación. El token solo se expone al emitirla.
type InvitationResponse struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	DepartmentID   string         `json:"department_id"`
	DepartmentName string         `json:"department_name,omitempty"`
	InviterName    string         `json:"inviter_name,omitempty"`
	Roles          []RoleResponse `json:"roles,omitempty"`
	RoleIDs        []string       `json:"role_ids"`
	Token          string         `json:"token,omitempty"`
	Status         string         `json:"status"`
	ExpiresAt      time.Time      `json:"expires_at"`
	AcceptedAt     *time.Time     `json:"accepted_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
