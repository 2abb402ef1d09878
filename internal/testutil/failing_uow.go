package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/Now-Tiger/Flow/internal/db"
)

// FailingExecUoW is a test UoW that injects Err into chosen ExecContext
// calls inside the transaction, so rollback and partial-failure paths can be
// exercised at precise points.
//
// A call fails when it is the FailOn-th Exec (counted from 1) or when its SQL
// contains FailMatch. Reads are never counted or failed.
type FailingExecUoW struct {
	DB        *sql.DB
	FailOn    int32
	FailMatch string
	Err       error
}

func (u *FailingExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failingExec{DBTX: tx, uow: u}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failingExec struct {
	db.DBTX
	uow   *FailingExecUoW
	count atomic.Int32
}

func (f *failingExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	n := f.count.Add(1)
	if n == f.uow.FailOn || (f.uow.FailMatch != "" && strings.Contains(query, f.uow.FailMatch)) {
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
