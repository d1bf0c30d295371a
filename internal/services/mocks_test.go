package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/jackc/pgx/v5"
)

func noRowsErr() error { return pgx.ErrNoRows }

func timeNow() time.Time { return time.Now() }

// fakeDB implements DBConn (and DB when BeginFunc is set) with
// function fields so each test stubs only what it touches.
type fakeDB struct {
	QueryRowFunc func(ctx context.Context, sql string, args ...any) Row
	QueryFunc    func(ctx context.Context, sql string, args ...any) (Rows, error)
	ExecFunc     func(ctx context.Context, sql string, args ...any) (CommandTag, error)
	BeginFunc    func(ctx context.Context) (Tx, error)
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) Row {
	if f.QueryRowFunc == nil {
		return errRow{errors.New("unexpected QueryRow")}
	}
	return f.QueryRowFunc(ctx, sql, args...)
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	if f.QueryFunc == nil {
		return nil, errors.New("unexpected Query")
	}
	return f.QueryFunc(ctx, sql, args...)
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	if f.ExecFunc == nil {
		return nil, errors.New("unexpected Exec")
	}
	return f.ExecFunc(ctx, sql, args...)
}

func (f *fakeDB) Begin(ctx context.Context) (Tx, error) {
	if f.BeginFunc == nil {
		return nil, errors.New("unexpected Begin")
	}
	return f.BeginFunc(ctx)
}

// fakeTx wraps a fakeDB so transactional paths run against the same stubs.
type fakeTx struct {
	*fakeDB
	commitErr  error
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	f.rolledBack = true
	return nil
}

type errRow struct {
	err error
}

func (r errRow) Scan(dest ...any) error { return r.err }

type valueRow struct {
	values []any
}

func rowFromValues(values ...any) Row {
	return valueRow{values: values}
}

func rowWithError(err error) Row {
	return errRow{err: err}
}

func (r valueRow) Scan(dest ...any) error {
	return scanInto(r.values, dest)
}

// fakeRows walks a fixed result set.
type fakeRows struct {
	rows   [][]any
	idx    int
	errVal error
}

func (f *fakeRows) Next() bool {
	if f.idx >= len(f.rows) {
		return false
	}
	f.idx++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	return scanInto(f.rows[f.idx-1], dest)
}

func (f *fakeRows) Close() {}

func (f *fakeRows) Err() error { return f.errVal }

type fakeCommandTag struct {
	rowsAffected int64
}

func (f fakeCommandTag) RowsAffected() int64 { return f.rowsAffected }

func scanInto(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: have %d values, want %d", len(values), len(dest))
	}
	for i, v := range values {
		if err := assign(dest[i], v); err != nil {
			return fmt.Errorf("scan column %d: %w", i, err)
		}
	}
	return nil
}

func assign(dest, value any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return errors.New("destination must be a non-nil pointer")
	}
	elem := dv.Elem()
	if value == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	vv := reflect.ValueOf(value)
	if vv.Type().AssignableTo(elem.Type()) {
		elem.Set(vv)
		return nil
	}
	// A value may be scanned into a pointer destination.
	if elem.Kind() == reflect.Pointer && vv.Type().AssignableTo(elem.Type().Elem()) {
		p := reflect.New(elem.Type().Elem())
		p.Elem().Set(vv)
		elem.Set(p)
		return nil
	}
	if vv.Type().ConvertibleTo(elem.Type()) {
		elem.Set(vv.Convert(elem.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %T", value, dest)
}
