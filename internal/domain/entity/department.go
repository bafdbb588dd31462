package entity

import "time"

// Department unidad organizacional dueña de presupuestos y usuarios.
type Department struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
