package middleware

import (
	"context"
	"errors"

	"hotelier/internal/app/commands"
	"hotelier/internal/app/uow"
)

var ErrUnitOfWorkMissing = errors.New("middleware: unit of work not found")

type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// SelfCommitting commands open and commit their own units of work, one per
// item they process. The middleware must not bind a shared unit to their
// context: batch commands need a failed item rolled back alone, not
// committed with the rest.
type SelfCommitting interface {
	commands.Command
	ManagesOwnUnits()
}

// Transaction opens a unit of work for every command and commits it only
// when the handler succeeds. A failed handler or failed commit rolls the
// whole command back, so reservation and room writes land together or not
// at all.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if _, ok := cmd.(SelfCommitting); ok {
				return nextFn(ctx, cmd)
			}
			opts := uow.TxOptions{}
			if optsProvider != nil {
				opts = optsProvider(cmd)
			}
			unit, err := factory.Begin(ctx, opts)
			if err != nil {
				return nil, err
			}
			execCtx := uow.BindContext(ctx, unit)
			committed := false
			defer func() {
				if !committed {
					_ = unit.Rollback(execCtx)
				}
			}()

			res, err := nextFn(execCtx, cmd)
			if err != nil {
				return nil, err
			}
			if err := unit.Commit(execCtx); err != nil {
				return nil, err
			}
			committed = true
			return res, nil
		})
	}
}
