package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"apierrmw/internal/platform/sqlite"
	"apierrmw/internal/shared"
)

const sqliteTimeLayout = "2006-01-02T15:04:05Z"

// SQLiteRepository stores items in SQLite.
type SQLiteRepository struct {
	tx *sqlite.TxRunner
}

// NewSQLiteRepository creates a repository over db. The schema must already
// be migrated.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{tx: sqlite.NewTxRunner(db)}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteItem(row rowScanner) (Item, error) {
	var (
		it      Item
		created string
	)
	if err := row.Scan(&it.ID, &it.Name, &it.Price, &created); err != nil {
		return Item{}, err
	}
	t, err := time.Parse(sqliteTimeLayout, created)
	if err != nil {
		return Item{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	it.CreatedAt = t
	return it, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.tx.Querier(ctx).QueryContext(ctx,
		"SELECT id, name, price, created_at FROM items ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := scanSQLiteItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (Item, error) {
	row := r.tx.Querier(ctx).QueryRowContext(ctx,
		"SELECT id, name, price, created_at FROM items WHERE id = ?", id)
	it, err := scanSQLiteItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, shared.MarkKind(fmt.Errorf("item %d: %w", id, err), shared.KindNotFound)
	}
	if err != nil {
		return Item{}, shared.Wrapf(err, "get item %d", id)
	}
	return it, nil
}

// Create inserts the item and reads it back in one transaction.
func (r *SQLiteRepository) Create(ctx context.Context, name string, price float64) (Item, error) {
	var created Item
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		q := r.tx.Querier(ctx)
		res, err := q.ExecContext(ctx, "INSERT INTO items (name, price) VALUES (?, ?)", name, price)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		created, err = scanSQLiteItem(q.QueryRowContext(ctx,
			"SELECT id, name, price, created_at FROM items WHERE id = ?", id))
		return err
	})
	if sqlite.IsUniqueViolation(err) {
		return Item{}, shared.MarkKind(fmt.Errorf("item %q already exists", name), shared.KindConflict)
	}
	if err != nil {
		return Item{}, fmt.Errorf("create item: %w", err)
	}
	return created, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.tx.Querier(ctx).ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return shared.Wrapf(err, "delete item %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return shared.Wrapf(err, "delete item %d", id)
	}
	if n == 0 {
		return shared.MarkKind(fmt.Errorf("item %d", id), shared.KindNotFound)
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.tx.DB.PingContext(ctx)
}
