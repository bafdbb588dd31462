package entity

import "time"

// SupplierStatus estado comercial de un proveedor.
type SupplierStatus string

const (
	SupplierPending   SupplierStatus = "Pending"
	SupplierApproved  SupplierStatus = "Approved"
	SupplierInactive  SupplierStatus = "Inactive"
	SupplierSuspended SupplierStatus = "Suspended"
)

// IsValid verifica que el estado sea uno de los conocidos.
func (s SupplierStatus) IsValid() bool {
	switch s {
	case SupplierPending, SupplierApproved, SupplierInactive, SupplierSuspended:
		return true
	}
	return false
}

// Supplier proveedor registrado.
type Supplier struct {
	ID             string
	Name           string
	ContactEmail   string
	ContactPhone   string
	OnboardingDate time.Time
	Status         SupplierStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
