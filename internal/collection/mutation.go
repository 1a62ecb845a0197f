package collection

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chupakbra/pbadm/internal/locale"
)

// Mutation is a change to one entity that must be persisted by the source
// before it is reflected in the list.
type Mutation[T Entity] struct {
	ID     string
	Patch  map[string]any
	Delete bool
	// Local mirrors the change on the cached page after the source accepts it.
	// When nil, a delete removes the row and an update leaves it for the next load.
	Local func(T) (T, bool)
}

// MutationRequest is one issued mutation. Do performs the I/O only.
type MutationRequest[T Entity] struct {
	Seq    uint64
	M      Mutation[T]
	loc    locale.Locale
	source Source[T]
}

// MutationResult is the outcome of a MutationRequest.
type MutationResult[T Entity] struct {
	Seq uint64
	M   Mutation[T]
	Err error
}

// Do sends the mutation to the source.
func (r MutationRequest[T]) Do(ctx context.Context) MutationResult[T] {
	res := MutationResult[T]{Seq: r.Seq, M: r.M}
	switch {
	case r.M.ID == "":
		res.Err = fmt.Errorf("empty id: %w", ErrInvalidArgument)
	case r.M.Delete:
		res.Err = r.source.Delete(ctx, r.M.ID)
	default:
		res.Err = r.source.Update(ctx, r.M.ID, r.M.Patch, r.loc)
	}
	return res
}

// BeginMutation issues a mutation request. A later mutation of the same id
// supersedes it; mutations of other ids do not.
func (m *ListModel[T]) BeginMutation(mu Mutation[T]) MutationRequest[T] {
	if m.mseq == nil {
		m.mseq = make(map[string]uint64)
	}
	seq := nextToken()
	m.mseq[mu.ID] = seq
	return MutationRequest[T]{Seq: seq, M: mu, loc: m.loc, source: m.source}
}

// ApplyMutation mirrors a successful mutation on the cached page. It reports
// false when a newer mutation of the same id was issued after r; the caller
// should still inspect r.Err.
func (m *ListModel[T]) ApplyMutation(r MutationResult[T]) bool {
	if seq, ok := m.mseq[r.M.ID]; !ok || seq != r.Seq {
		m.logger.Debug("discarding stale mutation", zap.String("id", r.M.ID), zap.Uint64("seq", r.Seq))
		return false
	}
	delete(m.mseq, r.M.ID)
	if r.Err != nil {
		m.logger.Warn("mutation failed", zap.String("id", r.M.ID), zap.Bool("delete", r.M.Delete), zap.Error(r.Err))
		return true
	}
	local := r.M.Local
	if local == nil {
		if !r.M.Delete {
			return true
		}
		local = func(item T) (T, bool) { return item, false }
	}
	m.ApplyLocalMutation(r.M.ID, local)
	return true
}

// Mutate persists mu and mirrors it locally on success.
func (m *ListModel[T]) Mutate(ctx context.Context, mu Mutation[T]) error {
	res := m.BeginMutation(mu).Do(ctx)
	m.ApplyMutation(res)
	return res.Err
}
