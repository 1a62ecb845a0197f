// Package collection manages a client-side window over a remote collection:
// paged loads, search filtering, a single edit draft and a confirmation gate
// for destructive actions. State is owned by one event loop; only the I/O
// halves (LoadRequest.Do, CommitRequest.Do) may run on other goroutines.
package collection

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chupakbra/pbadm/internal/locale"
)

var (
	// ErrUnsupported is returned by sources that cannot persist an operation.
	ErrUnsupported = errors.New("operation not supported by this source")
	// ErrInvalidArgument is returned for a page, size or id outside its domain.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is returned when an id is not in the collection.
	ErrNotFound = errors.New("not found")
	// ErrNoSession is returned when committing without an open draft.
	ErrNoSession = errors.New("no edit session open")
)

// Entity is one row of a managed collection.
type Entity interface {
	Key() string
}

// Page is a bounded window over a collection.
type Page[T Entity] struct {
	Items      []T
	Number     int
	TotalPages int
}

// PageRequest selects a window.
type PageRequest struct {
	Page   int
	Size   int
	Locale locale.Locale
}

// Validate checks that page and size are at least 1.
func (r PageRequest) Validate() error {
	if r.Page < 1 {
		return fmt.Errorf("page %d: %w", r.Page, ErrInvalidArgument)
	}
	if r.Size < 1 {
		return fmt.Errorf("page size %d: %w", r.Size, ErrInvalidArgument)
	}
	return nil
}

// Source is a data source for one collection. RemoteSource and
// StaticFixtureSource variants both implement it and are chosen when the
// screen is composed.
type Source[T Entity] interface {
	List(ctx context.Context, req PageRequest) (Page[T], error)
	Update(ctx context.Context, id string, patch map[string]any, loc locale.Locale) error
	Delete(ctx context.Context, id string) error
}

// Creator is implemented by sources that can add entities.
type Creator[T Entity] interface {
	Create(ctx context.Context, item T) (T, error)
}

// Matches reports whether query is a case-insensitive substring of any field.
// An empty query matches everything.
func Matches(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Filter returns the items of s matching query, in order. s is not modified.
func Filter[T any](s []T, query string, fields func(T) []string) []T {
	out := make([]T, 0, len(s))
	for _, item := range s {
		if Matches(query, fields(item)...) {
			out = append(out, item)
		}
	}
	return out
}

// Paginate cuts one page out of a full, already ordered slice.
// A page past the end yields no items; totalPages is at least 1.
func Paginate[T Entity](all []T, page, size int) Page[T] {
	total := (len(all) + size - 1) / size
	if total == 0 {
		total = 1
	}
	p := Page[T]{Number: page, TotalPages: total}
	start := (page - 1) * size
	if start >= len(all) || start < 0 {
		p.Items = []T{}
		return p
	}
	end := min(start+size, len(all))
	p.Items = append([]T(nil), all[start:end]...)
	return p
}
