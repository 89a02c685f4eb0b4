package item

import (
	"context"
	"log/slog"
	"strings"

	"apierrmw/internal/shared"
)

// Service holds the item use cases.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService creates a Service. A nil logger falls back to slog.Default.
func NewService(repo Repository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, log: log.With("component", "item")}
}

func (s *Service) List(ctx context.Context) ([]Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, shared.MarkKind(err, shared.KindDependencyFailure)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	it, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, classify(err)
	}
	return it, nil
}

// Create stores a new item. Names are trimmed before storing.
func (s *Service) Create(ctx context.Context, in CreateInput) (Item, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Item{}, shared.Wrap(shared.ErrValidation, "name is blank")
	}
	var price float64
	if in.Price != nil {
		price = *in.Price
	}
	it, err := s.repo.Create(ctx, name, price)
	if err != nil {
		return Item{}, classify(err)
	}
	s.log.Info("item created", "id", it.ID, "name", it.Name)
	return it, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return classify(err)
	}
	s.log.Info("item deleted", "id", id)
	return nil
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return shared.MarkKind(err, shared.KindDependencyFailure)
	}
	return nil
}

// classify keeps known kinds and marks everything else as a storage failure.
func classify(err error) error {
	if shared.KindOf(err) != shared.KindUnknown {
		return err
	}
	return shared.MarkKind(err, shared.KindDependencyFailure)
}
