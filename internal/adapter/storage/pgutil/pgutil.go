package pgutil

import (
	"database/sql"
	"errors"
	"github.com/burenotti/hoops_backend/internal/adapter/storage"
	"github.com/burenotti/hoops_backend/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leporo/sqlf"
	"github.com/r3labs/diff"
	"sync"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// BasePostgresStorage tracks the aggregates a storage touched during one
// unit of work so their events can be collected after commit.
type BasePostgresStorage struct {
	DB     storage.DBContext
	seenMu sync.Mutex
	seen   []domain.EventSource
}

func NewBasePostgresStorage(db storage.DBContext) *BasePostgresStorage {
	return &BasePostgresStorage{
		DB: db,
	}
}

func (s *BasePostgresStorage) CollectEvents() []domain.Event {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()

	var events []domain.Event
	for _, src := range s.seen {
		events = append(events, src.PopEvents()...)
	}
	s.seen = nil
	return events
}

func (s *BasePostgresStorage) Close() error {
	s.seenMu.Lock()
	s.seen = nil
	s.seenMu.Unlock()
	return nil
}

func (s *BasePostgresStorage) MarkSeen(src domain.EventSource) {
	s.seenMu.Lock()
	s.seen = append(s.seen, src)
	s.seenMu.Unlock()
}

func ViolatesConstraint(err error, constraintName string) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) &&
		pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) &&
		pgErr.ConstraintName == constraintName
}

func IsIntegrityViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code)
}

func Peek[K comparable, V any](items map[K]V, defaultValue ...V) V {
	for _, item := range items {
		return item
	}

	if len(defaultValue) != 0 {
		return defaultValue[0]
	}
	return *new(V)
}

func PeekOrErr[K comparable, V any](items map[K]V, err, notFoundErr error) (V, error) {
	if err != nil {
		return *new(V), err
	}

	if len(items) == 0 {
		return *new(V), notFoundErr
	}

	return Peek(items), nil
}

// Page clamps client supplied pagination.
func Page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// MakeUpdateQuery turns a flat changelog into SET clauses. Paths are the
// diff tags, which match column names.
func MakeUpdateQuery(stmt *sqlf.Stmt, updates diff.Changelog) *sqlf.Stmt {
	for _, upd := range updates {
		if upd.Type != diff.UPDATE {
			panic("invalid update type " + upd.Type)
		}
		if len(upd.Path) > 1 {
			panic("cannot process updates in nested structures")
		}

		stmt = stmt.Set(upd.Path[0], upd.To)
	}
	return stmt
}

func AssertUpdated(res sql.Result, err error, notUpdatedError error) error {
	if err != nil {
		return storage.InternalError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return storage.InternalError(err)
	}

	if affected == 0 {
		return notUpdatedError
	}
	return nil
}

// NotFound maps sql.ErrNoRows to the domain error and anything else to an
// internal storage error.
func NotFound(err, notFoundErr error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}
	return storage.InternalError(err)
}
