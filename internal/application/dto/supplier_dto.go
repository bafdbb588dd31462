package dto

import "time"

// CreateSupplierRequest entrada para registrar un proveedor.
type CreateSupplierRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=200"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone string `json:"contact_phone" validate:"max=40"`
	Status       string `json:"status" validate:"omitempty,oneof=Pending Approved Inactive Suspended"`
}

// UpdateSupplierStatusRequest cambio de estado de un proveedor.
type UpdateSupplierStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Approved Inactive Suspended"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ContactEmail   string    `json:"contact_email,omitempty"`
	ContactPhone   string    `json:"contact_phone,omitempty"`
	OnboardingDate time.Time `json:"onboarding_date"`
	Status         string    `json:"status"`
}
