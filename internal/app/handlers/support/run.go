package support

import (
	"context"

	"hotelier/internal/app/uow"
)

// RunInUnit executes fn inside a unit of work. When the surrounding
// middleware already opened one it is reused and left for the middleware to
// commit; otherwise a unit is opened here and committed only if fn succeeds.
func RunInUnit(ctx context.Context, factory uow.UoWFactory, fn func(ctx context.Context, unit uow.UnitOfWork) error) error {
	if unit, ok := uow.FromContext(ctx); ok {
		return fn(ctx, unit)
	}
	if factory == nil {
		return uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	execCtx := uow.BindContext(ctx, unit)
	if err := fn(execCtx, unit); err != nil {
		_ = unit.Rollback(execCtx)
		return err
	}
	if err := unit.Commit(execCtx); err != nil {
		_ = unit.Rollback(execCtx)
		return err
	}
	return nil
}
