// Package item is the demo catalog served through the error middleware.
// Its routes cover every normalization path: validation, parse failures,
// route misses, overrides and gateway errors.
package item

import (
	"context"
	"time"
)

// Item is a catalog entry.
type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInput is the body of POST /items.
type CreateInput struct {
	Name  string   `json:"name" binding:"required,min=1,max=100"`
	Price *float64 `json:"price" binding:"required,gte=0"`
}

// Repository stores items. Implementations mark missing rows with
// shared.KindNotFound and duplicate names with shared.KindConflict.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	Get(ctx context.Context, id int64) (Item, error)
	Create(ctx context.Context, name string, price float64) (Item, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}
