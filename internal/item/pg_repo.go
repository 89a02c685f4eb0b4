package item

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"apierrmw/internal/platform/pg"
	"apierrmw/internal/shared"
)

// PostgresRepository stores items in PostgreSQL through a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository over pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanPgItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.Price, &it.CreatedAt)
	return it, err
}

func (r *PostgresRepository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, name, price, created_at FROM items ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Item, error) {
		return scanPgItem(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (Item, error) {
	it, err := scanPgItem(r.pool.QueryRow(ctx,
		"SELECT id, name, price, created_at FROM items WHERE id = $1", id))
	if pg.IsNoRows(err) {
		return Item{}, shared.MarkKind(fmt.Errorf("item %d: %w", id, err), shared.KindNotFound)
	}
	if err != nil {
		return Item{}, shared.Wrapf(err, "get item %d", id)
	}
	return it, nil
}

func (r *PostgresRepository) Create(ctx context.Context, name string, price float64) (Item, error) {
	it, err := scanPgItem(r.pool.QueryRow(ctx,
		"INSERT INTO items (name, price) VALUES ($1, $2) RETURNING id, name, price, created_at", name, price))
	if pg.IsUniqueViolation(err) {
		return Item{}, shared.MarkKind(fmt.Errorf("item %q already exists", name), shared.KindConflict)
	}
	if err != nil {
		return Item{}, fmt.Errorf("create item: %w", err)
	}
	return it, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return shared.Wrapf(err, "delete item %d", id)
	}
	if tag.RowsAffected() == 0 {
		return shared.MarkKind(fmt.Errorf("item %d", id), shared.KindNotFound)
	}
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return pg.Ping(ctx, r.pool, 0)
}
