package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrInternal = errors.New("internal storage error")
)

// DBContext is satisfied by both the pool and an open transaction, so
// storages do not care which one they were handed.
type DBContext interface {
	Begin(ctx context.Context) (DBContext, error)
	Commit() error
	Rollback() error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type DB struct {
	*sql.DB
}

func (d *DB) Commit() error {
	return nil
}

func (d *DB) Rollback() error {
	return nil
}

func (d *DB) Begin(ctx context.Context) (DBContext, error) {
	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, InternalError(err)
	}
	return &Tx{Tx: tx}, nil
}

// Tx remembers whether it was finished so a deferred Rollback after Commit
// is harmless.
type Tx struct {
	*sql.Tx
	done bool
}

func (t *Tx) Begin(ctx context.Context) (DBContext, error) {
	return t, nil
}

func (t *Tx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.Tx.Commit(); err != nil {
		return InternalError(err)
	}
	return nil
}

func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.Tx.Rollback()
}

func (t *Tx) Done() bool {
	return t.done
}

func InternalError(err error) error {
	return errors.Join(fmt.Errorf("internal storage error: %w", err), ErrInternal)
}
