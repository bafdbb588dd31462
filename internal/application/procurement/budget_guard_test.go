package procurement_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/procurement-api/internal/application/procurement"
	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

func TestBudgetGuard_ReserveReleaseCommit(t *testing.T) {
	f := newFixture(t, "1000")
	guard := procurement.NewBudgetGuard()
	ctx := context.Background()

	var res *entity.Reservation
	err := f.store.Run(ctx, func(repos repository.Repos) error {
		var err error
		res, err = guard.Reserve(ctx, repos, f.budgetID, dec("250"), uuid.New().String())
		return err
	})
	require.NoError(t, err)
	assert.True(t, f.remaining(t).Equal(dec("750")))

	err = f.store.Run(ctx, func(repos repository.Repos) error {
		return guard.Release(ctx, repos, res)
	})
	require.NoError(t, err)
	assert.True(t, f.remaining(t).Equal(dec("1000")))
	assert.Equal(t, entity.ReservationReleased, res.Status)

	// una reserva liberada no se libera ni se consolida otra vez
	err = f.store.Run(ctx, func(repos repository.Repos) error {
		return guard.Release(ctx, repos, res)
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	err = f.store.Run(ctx, func(repos repository.Repos) error {
		return guard.Commit(ctx, repos, res)
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.True(t, f.remaining(t).Equal(dec("1000")))
}

func TestBudgetGuard_ReservaExactaDejaSaldoCero(t *testing.T) {
	f := newFixture(t, "1000")
	guard := procurement.NewBudgetGuard()
	ctx := context.Background()

	err := f.store.Run(ctx, func(repos repository.Repos) error {
		_, err := guard.Reserve(ctx, repos, f.budgetID, dec("1000"), uuid.New().String())
		return err
	})
	require.NoError(t, err)
	assert.True(t, f.remaining(t).IsZero())

	err = f.store.Run(ctx, func(repos repository.Repos) error {
		_, err := guard.Reserve(ctx, repos, f.budgetID, dec("0.01"), uuid.New().String())
		return err
	})
	var fundsErr *domain.InsufficientFundsError
	require.True(t, errors.As(err, &fundsErr))
	assert.True(t, f.remaining(t).IsZero())
}

func TestBudgetGuard_Validaciones(t *testing.T) {
	f := newFixture(t, "1000")
	guard := procurement.NewBudgetGuard()
	ctx := context.Background()

	err := f.store.Run(ctx, func(repos repository.Repos) error {
		_, err := guard.Reserve(ctx, repos, f.budgetID, dec("0"), uuid.New().String())
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = f.store.Run(ctx, func(repos repository.Repos) error {
		_, err := guard.Reserve(ctx, repos, f.budgetID, dec("0.004"), uuid.New().String())
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, f.remaining(t).Equal(dec("1000")), "el saldo no cambia")

	err = f.store.Run(ctx, func(repos repository.Repos) error {
		_, err := guard.Reserve(ctx, repos, uuid.New().String(), dec("10"), uuid.New().String())
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
