package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio. Los adaptadores (HTTP, CLI) los comparan con errors.Is.
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrConstraintViolation    = errors.New("violación de restricción")
	ErrInvalidTransition      = errors.New("transición de estado no permitida")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrInsufficientFunds      = errors.New("fondos insuficientes en el presupuesto")
	ErrExpired                = errors.New("invitación expirada")
	ErrAlreadyUsed            = errors.New("invitación ya utilizada")
	ErrDuplicateInvitation    = errors.New("ya existe una invitación pendiente para el email")
	ErrConcurrentModification = errors.New("el recurso fue modificado concurrentemente")
	ErrStoreUnavailable       = errors.New("almacenamiento no disponible")
)

// InsufficientFundsError detalla el faltante de una reserva rechazada.
type InsufficientFundsError struct {
	BudgetID  string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("presupuesto %s: disponible %s, solicitado %s",
		e.BudgetID, e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// TransitionError describe un cambio de estado rechazado.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("no se puede pasar de %s a %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// IsRetryable indica si el error proviene de una falla transitoria del almacenamiento.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
