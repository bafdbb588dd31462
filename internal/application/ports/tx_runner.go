package ports

import (
	"context"

	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a ella.
// Si fn devuelve error no queda ninguna escritura visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repos) error) error
}
