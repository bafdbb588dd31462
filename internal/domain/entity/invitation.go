package entity

import "time"

// InvitationStatus estado de una invitación.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "Pending"
	InvitationAccepted  InvitationStatus = "Accepted"
	InvitationExpired   InvitationStatus = "Expired"
	InvitationCancelled InvitationStatus = "Cancelled"
)

// Invitation invitación de un solo uso para registrar un usuario.
type Invitation struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	DepartmentID string
	RoleIDs      []string
	Token        string
	InvitedBy    string
	Status       InvitationStatus
	ExpiresAt    time.Time
	AcceptedAt   *time.Time
	CreatedAt    time.Time
}

// IsOverdue indica si now ya superó el vencimiento.
func (i *Invitation) IsOverdue(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IsOpen indica una invitación pendiente y vigente.
func (i *Invitation) IsOpen(now time.Time) bool {
	return i.Status == InvitationPending && !i.IsOverdue(now)
}
