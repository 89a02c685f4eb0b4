package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type txKey struct{}

// Querier объединяет методы, общие для *sql.DB и *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// RetryConfig задаёт повторы транзакции при SQLITE_BUSY.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// TxRunner выполняет функции внутри транзакции с повтором при блокировке базы.
type TxRunner struct {
	DB    *sql.DB
	Retry RetryConfig
}

// NewTxRunner создает TxRunner с тремя попытками и экспоненциальной задержкой.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{
		DB: db,
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 10 * time.Millisecond,
			MaxDelay:     500 * time.Millisecond,
		},
	}
}

// WithinTx выполняет fn в транзакции. Ошибка fn откатывает транзакцию,
// nil коммитит её. Вложенные транзакции не поддерживаются.
func (r *TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFrom(ctx); ok {
		return errors.New("nested transactions are not supported by SQLite")
	}

	delay := r.Retry.InitialDelay
	attempts := max(r.Retry.MaxAttempts, 1)
	for attempt := 1; ; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil || attempt >= attempts || !IsBusy(err) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, r.Retry.MaxDelay)
	}
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Querier возвращает активную транзакцию из ctx или пул соединений.
func (r *TxRunner) Querier(ctx context.Context) Querier {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return r.DB
}

func txFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// IsBusy сообщает, что база заблокирована другим писателем.
func IsBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	default:
		return false
	}
}

// IsUniqueViolation сообщает о нарушении ограничения UNIQUE или PRIMARY KEY.
func IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	default:
		return false
	}
}
