package collection_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chupakbra/pbadm/internal/collection"
	"github.com/chupakbra/pbadm/internal/locale"
	"github.com/chupakbra/pbadm/internal/model"
)

// stubSource wraps a source, counting calls and optionally failing them.
type stubSource[T collection.Entity] struct {
	inner     collection.Source[T]
	listErr   error
	updateErr error
	lists     []collection.PageRequest
	updates   []string
	patches   []map[string]any
	deletes   []string
}

func (s *stubSource[T]) List(ctx context.Context, req collection.PageRequest) (collection.Page[T], error) {
	s.lists = append(s.lists, req)
	if s.listErr != nil {
		return collection.Page[T]{}, s.listErr
	}
	return s.inner.List(ctx, req)
}

func (s *stubSource[T]) Update(ctx context.Context, id string, patch map[string]any, loc locale.Locale) error {
	s.updates = append(s.updates, id)
	s.patches = append(s.patches, patch)
	if s.updateErr != nil {
		return s.updateErr
	}
	return s.inner.Update(ctx, id, patch, loc)
}

func (s *stubSource[T]) Delete(ctx context.Context, id string) error {
	s.deletes = append(s.deletes, id)
	if s.updateErr != nil {
		return s.updateErr
	}
	return s.inner.Delete(ctx, id)
}

func users(n int) []model.User {
	out := make([]model.User, n)
	for i := range out {
		out[i] = model.User{
			ID:     fmt.Sprintf("u%d", i+1),
			Name:   fmt.Sprintf("User %d", i+1),
			Email:  fmt.Sprintf("user%d@example.com", i+1),
			Status: model.UserActive,
		}
	}
	return out
}

func TestMatches(t *testing.T) {
	assert.True(t, collection.Matches("", "anything"))
	assert.True(t, collection.Matches(""))
	assert.True(t, collection.Matches("PRO", "basic", "Pro"))
	assert.True(t, collection.Matches("smith", "Sarah Smith"))
	assert.False(t, collection.Matches("zed", "alpha", "beta"))
	assert.False(t, collection.Matches("x"))
}

func TestFilterIsOrderedSubsetAndPure(t *testing.T) {
	all := []model.User{
		{ID: "1", Name: "Ann", Email: "ann@pro.io"},
		{ID: "2", Name: "Bob", Email: "bob@example.com"},
		{ID: "3", Name: "Prosper", Email: "p@example.com"},
	}
	before := append([]model.User(nil), all...)

	for _, q := range []string{"", "pro", "PRO", "example", "nobody"} {
		got := collection.Filter(all, q, model.UserSearchFields)
		for _, u := range got {
			assert.Contains(t, all, u)
			assert.True(t, collection.Matches(q, u.Name, u.Email), "query %q item %s", q, u.ID)
		}
		if q == "" {
			assert.Equal(t, all, got)
		}
	}
	assert.Equal(t, []string{"1", "3"}, keys(collection.Filter(all, "pro", model.UserSearchFields)))
	assert.Equal(t, before, all)
}

func keys[T collection.Entity](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key()
	}
	return out
}

func TestPaginate(t *testing.T) {
	all := users(5)

	p := collection.Paginate(all, 1, 2)
	assert.Equal(t, []string{"u1", "u2"}, keys(p.Items))
	assert.Equal(t, 3, p.TotalPages)

	p = collection.Paginate(all, 3, 2)
	assert.Equal(t, []string{"u5"}, keys(p.Items))

	p = collection.Paginate(all, 9, 2)
	assert.Empty(t, p.Items)
	assert.Equal(t, 9, p.Number)

	p = collection.Paginate([]model.User{}, 1, 10)
	assert.Empty(t, p.Items)
	assert.Equal(t, 1, p.TotalPages)
}

func TestFixtureRejectsBadArguments(t *testing.T) {
	f := collection.NewFixture(users(2), model.ApplyUserPatch)
	ctx := context.Background()

	_, err := f.List(ctx, collection.PageRequest{Page: 0, Size: 1})
	assert.ErrorIs(t, err, collection.ErrInvalidArgument)
	_, err = f.List(ctx, collection.PageRequest{Page: 1, Size: 0})
	assert.ErrorIs(t, err, collection.ErrInvalidArgument)

	assert.ErrorIs(t, f.Update(ctx, "", nil, locale.English), collection.ErrInvalidArgument)
	assert.ErrorIs(t, f.Update(ctx, "nope", model.BlockPatch(true), locale.English), collection.ErrNotFound)
	assert.ErrorIs(t, f.Delete(ctx, "nope"), collection.ErrNotFound)

	_, err = f.Create(ctx, model.User{ID: "u1"})
	assert.ErrorIs(t, err, collection.ErrInvalidArgument)

	readOnly := collection.NewFixture(users(1), nil)
	assert.ErrorIs(t, readOnly.Update(ctx, "u1", model.BlockPatch(true), locale.English), collection.ErrUnsupported)
}

func newUserList(src collection.Source[model.User], size int) *collection.ListModel[model.User] {
	return collection.NewListModel(src, model.UserSearchFields, collection.ListOptions{Name: "users", PageSize: size})
}

func TestListLoad(t *testing.T) {
	ctx := context.Background()
	list := newUserList(collection.NewFixture(users(5), model.ApplyUserPatch), 2)

	require.True(t, list.Load(ctx, 2))
	assert.False(t, list.Loading())
	assert.NoError(t, list.Err())
	assert.Equal(t, []string{"u3", "u4"}, keys(list.Items()))
	assert.Equal(t, 2, list.Page())
	assert.Equal(t, 3, list.TotalPages())
	assert.True(t, list.HasNext())
	assert.True(t, list.HasPrev())
}

func TestListLoadOutOfRangeIsAcceptedVerbatim(t *testing.T) {
	ctx := context.Background()
	src := &stubSource[model.User]{inner: collection.NewFixture(users(3), model.ApplyUserPatch)}
	list := newUserList(src, 2)

	require.True(t, list.Load(ctx, 7))
	require.Len(t, src.lists, 1)
	assert.Equal(t, 7, src.lists[0].Page)
	assert.Empty(t, list.Items())
	assert.Equal(t, 7, list.Page())
	assert.NoError(t, list.Err())
}

func TestListLoadFailureYieldsEmptyList(t *testing.T) {
	ctx := context.Background()
	src := &stubSource[model.User]{inner: collection.NewFixture(users(3), model.ApplyUserPatch)}
	list := newUserList(src, 10)
	require.True(t, list.Load(ctx, 1))
	require.Len(t, list.Items(), 3)

	src.listErr = errors.New("connection refused")
	require.True(t, list.Load(ctx, 1))
	assert.Empty(t, list.Items())
	assert.Empty(t, list.Filtered())
	assert.False(t, list.Loading())
	assert.EqualError(t, list.Err(), "connection refused")
}

func TestListDiscardsStaleLoads(t *testing.T) {
	ctx := context.Background()
	list := newUserList(collection.NewFixture(users(4), model.ApplyUserPatch), 2)

	first := list.BeginLoad(1)
	second := list.BeginLoad(2)

	secondRes := second.Do(ctx)
	firstRes := first.Do(ctx)

	assert.True(t, list.Apply(secondRes))
	assert.False(t, list.Apply(firstRes))
	assert.Equal(t, []string{"u3", "u4"}, keys(list.Items()))
	assert.Equal(t, 2, list.Page())
}

func TestLoadResultNeverAppliesToAnotherList(t *testing.T) {
	ctx := context.Background()
	old := newUserList(collection.NewFixture(users(4), model.ApplyUserPatch), 2)
	fresh := newUserList(collection.NewFixture(users(1), model.ApplyUserPatch), 2)

	late := old.BeginLoad(2)
	fresh.BeginLoad(1)
	assert.False(t, fresh.Apply(late.Do(ctx)))
	assert.Empty(t, fresh.Items())
}

func TestListLoadingUntilLatestResolves(t *testing.T) {
	ctx := context.Background()
	list := newUserList(collection.NewFixture(users(4), model.ApplyUserPatch), 2)

	first := list.BeginLoad(1)
	second := list.BeginLoad(2)
	assert.True(t, list.Loading())
	assert.False(t, list.Apply(first.Do(ctx)))
	assert.True(t, list.Loading())
	assert.True(t, list.Apply(second.Do(ctx)))
	assert.False(t, list.Loading())
}

func TestListQuery(t *testing.T) {
	ctx := context.Background()
	list := newUserList(collection.NewFixture(users(12), model.ApplyUserPatch), 20)
	require.True(t, list.Load(ctx, 1))

	list.SetQuery("USER1")
	assert.Equal(t, []string{"u1", "u10", "u11", "u12"}, keys(list.Filtered()))
	assert.Len(t, list.Items(), 12)

	list.SetQuery("")
	assert.Equal(t, keys(list.Items()), keys(list.Filtered()))
}

func TestApplyLocalMutation(t *testing.T) {
	ctx := context.Background()
	list := newUserList(collection.NewFixture(users(3), model.ApplyUserPatch), 10)
	require.True(t, list.Load(ctx, 1))

	ok := list.ApplyLocalMutation("u2", func(u model.User) (model.User, bool) {
		u.Status = model.UserBlocked
		return u, true
	})
	require.True(t, ok)
	u, _ := list.Get("u2")
	assert.True(t, u.Blocked())

	require.True(t, list.ApplyLocalMutation("u1", func(u model.User) (model.User, bool) { return u, false }))
	assert.Equal(t, []string{"u2", "u3"}, keys(list.Items()))

	assert.False(t, list.ApplyLocalMutation("missing", func(u model.User) (model.User, bool) { return u, true }))
}

func TestMutatePersistsThenMirrors(t *testing.T) {
	ctx := context.Background()
	fixture := collection.NewFixture(users(3), model.ApplyUserPatch)
	list := newUserList(fixture, 10)
	require.True(t, list.Load(ctx, 1))

	err := list.Mutate(ctx, collection.Mutation[model.User]{
		ID:    "u3",
		Patch: model.BlockPatch(true),
		Local: func(u model.User) (model.User, bool) {
			u.Status = model.UserBlocked
			return u, true
		},
	})
	require.NoError(t, err)
	u, _ := list.Get("u3")
	assert.True(t, u.Blocked())
	assert.True(t, fixture.All()[2].Blocked())

	require.NoError(t, list.Mutate(ctx, collection.Mutation[model.User]{ID: "u1", Delete: true}))
	assert.Equal(t, []string{"u2", "u3"}, keys(list.Items()))
	assert.Len(t, fixture.All(), 2)
}

func TestMutateFailureLeavesListUnchanged(t *testing.T) {
	ctx := context.Background()
	src := &stubSource[model.User]{inner: collection.NewFixture(users(2), model.ApplyUserPatch)}
	list := newUserList(src, 10)
	require.True(t, list.Load(ctx, 1))

	src.updateErr = collection.ErrUnsupported
	err := list.Mutate(ctx, collection.Mutation[model.User]{ID: "u1", Delete: true})
	assert.ErrorIs(t, err, collection.ErrUnsupported)
	assert.Equal(t, []string{"u1", "u2"}, keys(list.Items()))
}

func TestMutationsOfDifferentRowsBothApply(t *testing.T) {
	ctx := context.Background()
	src := collection.NewFixture(users(3), model.ApplyUserPatch)
	list := newUserList(src, 10)
	require.True(t, list.Load(ctx, 1))

	block := func(id string) collection.Mutation[model.User] {
		return collection.Mutation[model.User]{
			ID:    id,
			Patch: model.BlockPatch(true),
			Local: func(u model.User) (model.User, bool) { u.Status = model.UserBlocked; return u, true },
		}
	}
	first := list.BeginMutation(block("u1"))
	second := list.BeginMutation(block("u2"))
	firstRes, secondRes := first.Do(ctx), second.Do(ctx)

	// Results arrive in reverse order.
	assert.True(t, list.ApplyMutation(secondRes))
	assert.True(t, list.ApplyMutation(firstRes))

	for _, id := range []string{"u1", "u2"} {
		u, ok := list.Get(id)
		require.True(t, ok)
		assert.True(t, u.Blocked(), id)
	}
	for _, u := range src.All()[:2] {
		assert.True(t, u.Blocked(), u.ID)
	}
}

func TestStaleMutationOfSameRowNotMirrored(t *testing.T) {
	ctx := context.Background()
	list := newUserList(collection.NewFixture(users(2), model.ApplyUserPatch), 10)
	require.True(t, list.Load(ctx, 1))

	setBlocked := func(blocked bool) collection.Mutation[model.User] {
		return collection.Mutation[model.User]{
			ID:    "u1",
			Patch: model.BlockPatch(blocked),
			Local: func(u model.User) (model.User, bool) { u.Status = model.StatusFromDeleted(blocked); return u, true },
		}
	}
	first := list.BeginMutation(setBlocked(true))
	second := list.BeginMutation(setBlocked(false))
	firstRes, secondRes := first.Do(ctx), second.Do(ctx)

	assert.True(t, list.ApplyMutation(secondRes))
	assert.False(t, list.ApplyMutation(firstRes))
	u, _ := list.Get("u1")
	assert.False(t, u.Blocked())
}

func TestStaleMutationKeepsError(t *testing.T) {
	ctx := context.Background()
	list := newUserList(collection.NewFixture(users(2), model.ApplyUserPatch), 10)
	require.True(t, list.Load(ctx, 1))

	first := list.BeginMutation(collection.Mutation[model.User]{ID: "nope", Delete: true})
	list.BeginMutation(collection.Mutation[model.User]{ID: "nope", Delete: true})
	res := first.Do(ctx)

	assert.False(t, list.ApplyMutation(res))
	assert.ErrorIs(t, res.Err, collection.ErrNotFound)
}
