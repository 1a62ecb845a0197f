package collection_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chupakbra/pbadm/internal/collection"
	"github.com/chupakbra/pbadm/internal/model"
)

func plans() []model.SubscriptionPlan {
	return []model.SubscriptionPlan{
		{ID: "p1", PlanName: "Basic", Price: decimal.RequireFromString("9.99"), BillingCycle: model.Monthly, IsActive: true, Features: []string{"5 Projects", "10GB Storage"}},
		{ID: "p2", PlanName: "Pro", Price: decimal.RequireFromString("24.99"), BillingCycle: model.Monthly, IsActive: true, Features: []string{"Unlimited Projects"}},
		{ID: "p3", PlanName: "Premium", Price: decimal.RequireFromString("499"), BillingCycle: model.Yearly, IsActive: false, Features: nil},
	}
}

type planSession = collection.EditSession[model.SubscriptionPlan, *model.PlanDraft]

func newPlanSession(t *testing.T, src collection.Source[model.SubscriptionPlan]) (*collection.ListModel[model.SubscriptionPlan], *planSession) {
	t.Helper()
	list := collection.NewListModel(src, model.PlanSearchFields, collection.ListOptions{Name: "plans", PageSize: 10})
	require.True(t, list.Load(context.Background(), 1))
	return list, collection.NewEditSession(list, model.NewPlanDraft)
}

func TestEditCancelLeavesEntityUnmodified(t *testing.T) {
	list, s := newPlanSession(t, collection.NewFixture(plans(), model.ApplyPlanPatch))
	orig, _ := list.Get("p1")

	s.Begin(orig)
	require.NoError(t, s.Draft().Set(model.FieldPlanName, "Starter"))
	require.NoError(t, s.Draft().UpdateFeature(0, "50 Projects"))
	s.Draft().AddFeature()
	s.Cancel()

	assert.False(t, s.Open())
	got, _ := list.Get("p1")
	assert.Equal(t, orig, got)
	assert.Equal(t, []string{"5 Projects", "10GB Storage"}, got.Features)
}

func TestEditCommitUpdatesOnlyTarget(t *testing.T) {
	ctx := context.Background()
	fixture := collection.NewFixture(plans(), model.ApplyPlanPatch)
	src := &stubSource[model.SubscriptionPlan]{inner: fixture}
	list, s := newPlanSession(t, src)
	before := list.Items()

	target, _ := list.Get("p2")
	s.Begin(target)
	require.NoError(t, s.Draft().Set(model.FieldPrice, "29.50"))
	s.Draft().AddFeature()
	require.NoError(t, s.Draft().UpdateFeature(1, "API Access"))

	require.NoError(t, s.Commit(ctx))
	assert.False(t, s.Open())

	require.Equal(t, []string{"p2"}, src.updates)
	assert.Equal(t, map[string]any{
		"price":    json.Number("29.5"),
		"features": []string{"Unlimited Projects", "API Access"},
	}, src.patches[0])

	after := list.Items()
	require.Len(t, after, 3)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[2])
	assert.True(t, after[1].Price.Equal(decimal.RequireFromString("29.5")))
	assert.Equal(t, []string{"Unlimited Projects", "API Access"}, after[1].Features)
	assert.Len(t, src.lists, 2, "commit reloads the current page")
}

func TestEditCommitFailureKeepsSessionOpen(t *testing.T) {
	ctx := context.Background()
	src := &stubSource[model.SubscriptionPlan]{inner: collection.NewFixture(plans(), model.ApplyPlanPatch)}
	list, s := newPlanSession(t, src)

	target, _ := list.Get("p1")
	s.Begin(target)
	require.NoError(t, s.Draft().Set(model.FieldPlanName, "Starter"))

	src.updateErr = errors.New("status 500")
	err := s.Commit(ctx)
	require.EqualError(t, err, "status 500")
	assert.True(t, s.Open())
	assert.Equal(t, "Starter", s.Draft().PlanName)
	got, _ := list.Get("p1")
	assert.Equal(t, "Basic", got.PlanName)

	src.updateErr = nil
	require.NoError(t, s.Commit(ctx))
	got, _ = list.Get("p1")
	assert.Equal(t, "Starter", got.PlanName)
}

func TestEditValidationBlocksNetwork(t *testing.T) {
	src := &stubSource[model.SubscriptionPlan]{inner: collection.NewFixture(plans(), model.ApplyPlanPatch)}
	list, s := newPlanSession(t, src)

	target, _ := list.Get("p1")
	s.Begin(target)
	require.NoError(t, s.Draft().Set(model.FieldPlanName, ""))
	require.Error(t, s.Commit(context.Background()))
	assert.Empty(t, src.updates)
	assert.True(t, s.Open())
}

func TestEditBeginReplacesOpenDraft(t *testing.T) {
	list, s := newPlanSession(t, collection.NewFixture(plans(), model.ApplyPlanPatch))

	p1, _ := list.Get("p1")
	p2, _ := list.Get("p2")
	s.Begin(p1)
	require.NoError(t, s.Draft().Set(model.FieldPlanName, "changed"))
	req, err := s.BeginCommit()
	require.NoError(t, err)

	s.Begin(p2)
	target, open := s.Target()
	assert.True(t, open)
	assert.Equal(t, "p2", target.ID)
	assert.Equal(t, "Pro", s.Draft().PlanName)

	// The commit issued for p1 resolves after the draft was replaced.
	_, ok, err := s.ApplyCommit(req.Do(context.Background()))
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.True(t, s.Open())
}

func TestEditCommitWithoutSession(t *testing.T) {
	_, s := newPlanSession(t, collection.NewFixture(plans(), model.ApplyPlanPatch))
	assert.ErrorIs(t, s.Commit(context.Background()), collection.ErrNoSession)
}

func TestEditNoChangesSendsNothing(t *testing.T) {
	src := &stubSource[model.SubscriptionPlan]{inner: collection.NewFixture(plans(), model.ApplyPlanPatch)}
	list, s := newPlanSession(t, src)
	target, _ := list.Get("p3")
	s.Begin(target)
	require.NoError(t, s.Commit(context.Background()))
	assert.Empty(t, src.updates)
	assert.False(t, s.Open())
}

func TestEditCreate(t *testing.T) {
	ctx := context.Background()
	fixture := collection.NewFixture(plans(), model.ApplyPlanPatch)
	list, s := newPlanSession(t, fixture)

	s.BeginNew(model.SubscriptionPlan{ID: "p4", BillingCycle: model.Monthly})
	assert.True(t, s.Creating())
	require.NoError(t, s.Draft().Set(model.FieldPlanName, "Team"))
	require.NoError(t, s.Draft().Set(model.FieldPrice, "99"))
	s.Draft().AddFeature()
	require.NoError(t, s.Draft().UpdateFeature(0, "Seats"))
	s.Draft().AddFeature()
	require.NoError(t, s.Commit(ctx))

	got, ok := list.Get("p4")
	require.True(t, ok)
	assert.Equal(t, "Team", got.PlanName)
	assert.Equal(t, []string{"Seats"}, got.Features)
}

type readOnlySource struct {
	collection.Source[model.SubscriptionPlan]
}

func TestEditCreateUnsupported(t *testing.T) {
	_, s := newPlanSession(t, readOnlySource{collection.NewFixture(plans(), model.ApplyPlanPatch)})
	s.BeginNew(model.SubscriptionPlan{ID: "p4", PlanName: "Team", BillingCycle: model.Monthly})
	assert.ErrorIs(t, s.Commit(context.Background()), collection.ErrUnsupported)
	assert.True(t, s.Open())
}
