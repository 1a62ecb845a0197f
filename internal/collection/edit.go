package collection

import (
	"context"
	"fmt"

	"github.com/chupakbra/pbadm/internal/locale"
)

// Draft is an editable copy of one entity's mutable fields.
type Draft[T Entity] interface {
	Validate() error
	// Patch returns only the fields changed since the draft was opened.
	Patch() map[string]any
	// Apply returns item with the draft merged in.
	Apply(item T) T
}

// EditSession owns at most one open draft for a list.
type EditSession[T Entity, D Draft[T]] struct {
	list     *ListModel[T]
	newDraft func(T) D

	open     bool
	creating bool
	target   T
	draft    D

	seq uint64
}

// NewEditSession returns a closed session bound to list.
func NewEditSession[T Entity, D Draft[T]](list *ListModel[T], newDraft func(T) D) *EditSession[T, D] {
	return &EditSession[T, D]{list: list, newDraft: newDraft}
}

// Begin opens a draft for item, replacing any draft already open.
func (s *EditSession[T, D]) Begin(item T) {
	s.open = true
	s.creating = false
	s.target = item
	s.draft = s.newDraft(item)
	s.seq = nextToken()
}

// BeginNew opens a draft for an entity that does not exist yet. Committing it
// requires a source that implements Creator.
func (s *EditSession[T, D]) BeginNew(item T) {
	s.Begin(item)
	s.creating = true
}

// Cancel discards the draft.
func (s *EditSession[T, D]) Cancel() {
	var zeroT T
	var zeroD D
	s.open = false
	s.creating = false
	s.target = zeroT
	s.draft = zeroD
	s.seq = nextToken()
}

// Open reports whether a draft is open.
func (s *EditSession[T, D]) Open() bool { return s.open }

// Creating reports whether the open draft is for a new entity.
func (s *EditSession[T, D]) Creating() bool { return s.open && s.creating }

// Target returns the entity the draft was opened on.
func (s *EditSession[T, D]) Target() (T, bool) { return s.target, s.open }

// Draft returns the open draft. It is the zero D when no session is open.
func (s *EditSession[T, D]) Draft() D { return s.draft }

// CommitRequest is one issued commit. Do performs the I/O only.
type CommitRequest[T Entity] struct {
	Seq    uint64
	ID     string
	Patch  map[string]any
	Create *T
	loc    locale.Locale
	source Source[T]
}

// CommitResult is the outcome of a CommitRequest.
type CommitResult struct {
	Seq uint64
	ID  string
	Err error
}

// Do sends the draft to the source. An empty patch is not sent.
func (r CommitRequest[T]) Do(ctx context.Context) CommitResult {
	res := CommitResult{Seq: r.Seq, ID: r.ID}
	if r.Create != nil {
		creator, ok := r.source.(Creator[T])
		if !ok {
			res.Err = ErrUnsupported
			return res
		}
		_, res.Err = creator.Create(ctx, *r.Create)
		return res
	}
	if len(r.Patch) == 0 {
		return res
	}
	res.Err = r.source.Update(ctx, r.ID, r.Patch, r.loc)
	return res
}

// BeginCommit validates the draft and issues a commit request. Validation
// failures return before anything is sent.
func (s *EditSession[T, D]) BeginCommit() (CommitRequest[T], error) {
	if !s.open {
		return CommitRequest[T]{}, ErrNoSession
	}
	if err := s.draft.Validate(); err != nil {
		return CommitRequest[T]{}, err
	}
	id := s.target.Key()
	if id == "" {
		return CommitRequest[T]{}, fmt.Errorf("empty id: %w", ErrInvalidArgument)
	}
	s.seq = nextToken()
	req := CommitRequest[T]{
		Seq:    s.seq,
		ID:     id,
		loc:    s.list.Locale(),
		source: s.list.Source(),
	}
	if s.creating {
		item := s.draft.Apply(s.target)
		req.Create = &item
	} else {
		req.Patch = s.draft.Patch()
	}
	return req, nil
}

// ApplyCommit closes the session when r succeeded and returns a reload of the
// list's current page. On failure the session stays open and the error is
// returned. Results for a replaced or cancelled draft are ignored (ok=false).
func (s *EditSession[T, D]) ApplyCommit(r CommitResult) (reload LoadRequest[T], ok bool, err error) {
	if !s.open || r.Seq != s.seq || r.ID != s.target.Key() {
		return LoadRequest[T]{}, false, nil
	}
	if r.Err != nil {
		return LoadRequest[T]{}, false, r.Err
	}
	s.Cancel()
	return s.list.BeginLoad(s.list.Page()), true, nil
}

// Commit sends the draft and, on success, closes the session and reloads the
// current page.
func (s *EditSession[T, D]) Commit(ctx context.Context) error {
	req, err := s.BeginCommit()
	if err != nil {
		return err
	}
	reload, ok, err := s.ApplyCommit(req.Do(ctx))
	if err != nil {
		return err
	}
	if ok {
		s.list.Apply(reload.Do(ctx))
	}
	return nil
}
