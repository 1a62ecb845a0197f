package collection

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/chupakbra/pbadm/internal/locale"
)

// PatchFunc merges a patch into a copy of an entity.
type PatchFunc[T Entity] func(item T, patch map[string]any) (T, error)

// Fixture is the static-fixture Source variant: an in-process store seeded
// with fixed rows. Mutations persist in the store for the life of the process.
type Fixture[T Entity] struct {
	mu    sync.Mutex
	items []T
	apply PatchFunc[T]
}

// NewFixture returns a fixture store over a copy of items. A nil apply makes
// Update return ErrUnsupported.
func NewFixture[T Entity](items []T, apply PatchFunc[T]) *Fixture[T] {
	return &Fixture[T]{items: slices.Clone(items), apply: apply}
}

// List implements Source. The locale is ignored.
func (f *Fixture[T]) List(_ context.Context, req PageRequest) (Page[T], error) {
	if err := req.Validate(); err != nil {
		return Page[T]{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return Paginate(f.items, req.Page, req.Size), nil
}

// Update implements Source.
func (f *Fixture[T]) Update(_ context.Context, id string, patch map[string]any, _ locale.Locale) error {
	if id == "" {
		return fmt.Errorf("empty id: %w", ErrInvalidArgument)
	}
	if f.apply == nil {
		return ErrUnsupported
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	updated, err := f.apply(f.items[i], patch)
	if err != nil {
		return err
	}
	f.items[i] = updated
	return nil
}

// Delete implements Source.
func (f *Fixture[T]) Delete(_ context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("empty id: %w", ErrInvalidArgument)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	f.items = slices.Delete(f.items, i, i+1)
	return nil
}

// Create implements Creator. The item must carry a fresh, non-empty key.
func (f *Fixture[T]) Create(_ context.Context, item T) (T, error) {
	if item.Key() == "" {
		return item, fmt.Errorf("empty id: %w", ErrInvalidArgument)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.index(item.Key()) >= 0 {
		return item, fmt.Errorf("%q already exists: %w", item.Key(), ErrInvalidArgument)
	}
	f.items = append(f.items, item)
	return item, nil
}

// All returns a copy of every stored row.
func (f *Fixture[T]) All() []T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items)
}

func (f *Fixture[T]) index(id string) int {
	return slices.IndexFunc(f.items, func(item T) bool { return item.Key() == id })
}
