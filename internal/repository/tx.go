package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// conn returns the transaction carried by ctx, or db when there is none.
// Every repository method goes through conn so it joins the caller's
// transaction transparently.
func conn(ctx context.Context, db *sql.DB) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// InTx reports whether ctx carries a transaction opened by TxManager.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*sql.Tx)
	return ok
}

// TxManager runs units of work inside a single database transaction and
// retries them when the storage layer reports a transient fault.
type TxManager struct {
	db         *sql.DB
	log        *zap.Logger
	maxRetries uint64
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// TxOption customises a TxManager.
type TxOption func(*TxManager)

// WithRetries sets how many times a transaction is replayed after a
// transient failure, and the first backoff delay.
func WithRetries(n uint64, base time.Duration) TxOption {
	return func(m *TxManager) {
		m.maxRetries = n
		if base > 0 {
			m.baseDelay = base
		}
	}
}

// WithTxLogger attaches a logger for retry diagnostics.
func WithTxLogger(l *zap.Logger) TxOption {
	return func(m *TxManager) {
		if l != nil {
			m.log = l
		}
	}
}

// NewTxManager returns a TxManager with three retries starting at 50ms.
func NewTxManager(db *sql.DB, opts ...TxOption) *TxManager {
	m := &TxManager{
		db:         db,
		log:        zap.NewNop(),
		maxRetries: 3,
		baseDelay:  50 * time.Millisecond,
		maxDelay:   time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithTx runs fn in a transaction. fn receives a context carrying the
// transaction and must route all queries through it; fn may be invoked
// more than once, so it must not have side effects outside the database.
// A nested call joins the outer transaction. When retries are exhausted on
// a transient fault the returned error wraps ErrUnavailable.
func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}

	backoff := retry.NewExponential(m.baseDelay)
	backoff = retry.WithCappedDuration(m.maxDelay, backoff)
	backoff = retry.WithJitterPercent(20, backoff)
	backoff = retry.WithMaxRetries(m.maxRetries, backoff)

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := m.runOnce(ctx, fn)
		if IsTransient(err) {
			m.log.Warn("transient storage failure, retrying transaction",
				zap.Int("attempt", attempt), zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
	if IsTransient(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func (m *TxManager) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
