package dto

import "time"

// UserResponse salida de un usuario (sin hash).
type UserResponse struct {
	ID           string         `json:"id"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	Email        string         `json:"email"`
	DepartmentID string         `json:"department_id,omitempty"`
	IsActive     bool           `json:"is_active"`
	Roles        []RoleResponse `json:"roles,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// UserListResponse listado paginado de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// AssignDepartmentRequest asigna (o con vacío, desasigna) el departamento del usuario.
type AssignDepartmentRequest struct {
	DepartmentID string `json:"department_id" validate:"omitempty,uuid"`
}
