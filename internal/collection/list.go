package collection

import (
	"context"
	"slices"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/chupakbra/pbadm/internal/locale"
)

var tokens atomic.Uint64

// nextToken returns a process-wide unique, non-zero request token.
func nextToken() uint64 { return tokens.Add(1) }

// ListModel holds the current page of a collection and the search query.
type ListModel[T Entity] struct {
	source   Source[T]
	fields   func(T) []string
	logger   *zap.Logger
	name     string
	pageSize int
	loc      locale.Locale

	items      []T
	page       int
	totalPages int
	query      string
	loading    bool
	err        error

	// seq is the token of the latest load and mseq the latest mutation token
	// per target id; results carrying any other token are dropped. Tokens come
	// from nextToken so a result can never match a different list.
	seq  uint64
	mseq map[string]uint64
}

// ListOptions configures a ListModel.
type ListOptions struct {
	Name     string // collection name used in log entries
	PageSize int
	Locale   locale.Locale
	Logger   *zap.Logger
}

// NewListModel returns an empty list positioned on page 1.
func NewListModel[T Entity](src Source[T], fields func(T) []string, opts ListOptions) *ListModel[T] {
	if opts.PageSize < 1 {
		opts.PageSize = 10
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Locale == "" {
		opts.Locale = locale.Default
	}
	return &ListModel[T]{
		source:     src,
		fields:     fields,
		logger:     opts.Logger.With(zap.String("collection", opts.Name)),
		name:       opts.Name,
		pageSize:   opts.PageSize,
		loc:        opts.Locale,
		page:       1,
		totalPages: 1,
	}
}

// LoadRequest is one issued page load. Do performs the I/O only.
type LoadRequest[T Entity] struct {
	Seq    uint64
	Req    PageRequest
	source Source[T]
}

// LoadResult is the outcome of a LoadRequest.
type LoadResult[T Entity] struct {
	Seq  uint64
	Req  PageRequest
	Page Page[T]
	Err  error
}

// Do fetches the page. It does not touch the ListModel.
func (r LoadRequest[T]) Do(ctx context.Context) LoadResult[T] {
	page, err := r.source.List(ctx, r.Req)
	return LoadResult[T]{Seq: r.Seq, Req: r.Req, Page: page, Err: err}
}

// BeginLoad marks the list loading and issues a request for page. The page is
// passed to the source as-is.
func (m *ListModel[T]) BeginLoad(page int) LoadRequest[T] {
	m.seq = nextToken()
	m.loading = true
	return LoadRequest[T]{
		Seq:    m.seq,
		Req:    PageRequest{Page: page, Size: m.pageSize, Locale: m.loc},
		source: m.source,
	}
}

// Apply stores a load result. It reports false and changes nothing when a
// newer load was issued after r.
func (m *ListModel[T]) Apply(r LoadResult[T]) bool {
	if r.Seq != m.seq {
		m.logger.Debug("discarding stale load", zap.Uint64("seq", r.Seq), zap.Uint64("latest", m.seq))
		return false
	}
	m.loading = false
	m.page = r.Req.Page
	if r.Err != nil {
		m.logger.Warn("loading collection failed",
			zap.Int("page", r.Req.Page),
			zap.String("locale", r.Req.Locale.Header()),
			zap.Error(r.Err))
		m.items = nil
		m.err = r.Err
		return true
	}
	m.err = nil
	m.items = r.Page.Items
	m.totalPages = r.Page.TotalPages
	return true
}

// Load fetches page synchronously. Failure leaves an empty list; see Err.
func (m *ListModel[T]) Load(ctx context.Context, page int) bool {
	return m.Apply(m.BeginLoad(page).Do(ctx))
}

// Reload fetches the current page again.
func (m *ListModel[T]) Reload(ctx context.Context) bool {
	return m.Load(ctx, m.page)
}

// SetQuery replaces the search query.
func (m *ListModel[T]) SetQuery(q string) { m.query = q }

// SetLocale changes the locale used by subsequent loads.
func (m *ListModel[T]) SetLocale(loc locale.Locale) { m.loc = loc }

// Filtered returns the items matching the query in page order.
func (m *ListModel[T]) Filtered() []T {
	return Filter(m.items, m.query, m.fields)
}

// ApplyLocalMutation replaces the item with the given id by fn's result, or
// removes it when fn returns keep=false. It reports whether the id was found.
func (m *ListModel[T]) ApplyLocalMutation(id string, fn func(T) (T, bool)) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	updated, keep := fn(m.items[i])
	items := slices.Clone(m.items)
	if keep {
		items[i] = updated
	} else {
		items = slices.Delete(items, i, i+1)
	}
	m.items = items
	return true
}

// Get returns the item with the given id from the current page.
func (m *ListModel[T]) Get(id string) (T, bool) {
	i := m.index(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return m.items[i], true
}

func (m *ListModel[T]) index(id string) int {
	return slices.IndexFunc(m.items, func(item T) bool { return item.Key() == id })
}

// Items returns a copy of the current page's items.
func (m *ListModel[T]) Items() []T { return slices.Clone(m.items) }

func (m *ListModel[T]) Query() string         { return m.query }
func (m *ListModel[T]) Page() int             { return m.page }
func (m *ListModel[T]) TotalPages() int       { return m.totalPages }
func (m *ListModel[T]) PageSize() int         { return m.pageSize }
func (m *ListModel[T]) Loading() bool         { return m.loading }
func (m *ListModel[T]) Err() error            { return m.err }
func (m *ListModel[T]) Locale() locale.Locale { return m.loc }
func (m *ListModel[T]) Source() Source[T]     { return m.source }

// HasNext reports whether a page follows the current one.
func (m *ListModel[T]) HasNext() bool { return m.page < m.totalPages }

// HasPrev reports whether a page precedes the current one.
func (m *ListModel[T]) HasPrev() bool { return m.page > 1 }
