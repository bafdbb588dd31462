// Package unitofwork ejecuta comandos transaccionales con timeout por intento y
// un único reintento cuando el almacenamiento no está disponible.
package unitofwork

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jhoicas/procurement-api/internal/application/ports"
	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
	"github.com/jhoicas/procurement-api/pkg/logger"
)

// maxRetries reintentos ante ErrStoreUnavailable; los errores de dominio nunca se reintentan.
const maxRetries = 1

// Options parámetros de ejecución.
type Options struct {
	Timeout      time.Duration // límite por intento; 0 = sin límite propio
	RetryBackoff time.Duration // espera inicial antes del reintento
}

// Executor envuelve un TxRunner con la política de timeout y reintento.
type Executor struct {
	runner ports.TxRunner
	opts   Options
	log    *logger.Logger
}

// New construye el ejecutor.
func New(runner ports.TxRunner, opts Options, log *logger.Logger) *Executor {
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 50 * time.Millisecond
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Executor{runner: runner, opts: opts, log: log}
}

// Do ejecuta fn en una transacción. fn recibe el contexto del intento y debe ser
// repetible: si la transacción falla no queda ningún efecto.
func (e *Executor) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repos) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = e.opts.RetryBackoff
	policy.MaxElapsedTime = 0

	op := func() error {
		attemptCtx, cancel := e.attemptContext(ctx)
		defer cancel()
		err := e.runner.Run(attemptCtx, func(repos repository.Repos) error {
			return fn(attemptCtx, repos)
		})
		if err != nil && !domain.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		e.log.Warn().Err(err).Dur("wait", wait).Msg("almacenamiento no disponible, reintentando")
	}
	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx), notify)
	if err != nil && !domain.IsRetryable(err) &&
		(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}

func (e *Executor) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.opts.Timeout)
}
