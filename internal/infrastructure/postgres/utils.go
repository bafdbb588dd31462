package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/procurement-api/internal/domain"
)

// SQLSTATE relevantes.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeSerialization       = "40001"
	codeDeadlock            = "40P01"
	codeLockNotAvailable    = "55P03"
	codeAdminShutdown       = "57P01"
	codeCannotConnectNow    = "57P03"
	codeNumericOutOfRange   = "22003"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// constraintName devuelve el constraint violado, si lo hay.
func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapError traduce errores del driver a los centinelas del dominio y conserva el original.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch pgCode(err) {
	case codeUniqueViolation, codeForeignKeyViolation, codeCheckViolation:
		return fmt.Errorf("%w: %v", domain.ErrConstraintViolation, err)
	case codeNumericOutOfRange:
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	case codeSerialization, codeDeadlock, codeLockNotAvailable, codeAdminShutdown, codeCannotConnectNow:
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connErr),
		errors.As(err, &netErr),
		pgconn.Timeout(err),
		pgconn.SafeToRetry(err),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}

// wrap agrega contexto y traduce el error.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, mapError(err))
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
