package source

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chupakbra/pbadm/internal/client"
	"github.com/chupakbra/pbadm/internal/collection"
	"github.com/chupakbra/pbadm/internal/config"
	"github.com/chupakbra/pbadm/internal/locale"
	"github.com/chupakbra/pbadm/internal/model"
)

func TestSampleFixtures(t *testing.T) {
	subs := SampleSubscribers()
	require.Len(t, subs, 6)
	counts := model.CountByTier(subs)
	assert.Equal(t, 2, counts[model.TierBasic])
	assert.Equal(t, 2, counts[model.TierPro])
	assert.Equal(t, 2, counts[model.TierPremium])

	plans := SamplePlans()
	require.Len(t, plans, 3)
	assert.Equal(t, PopularPlan, plans[1].PlanName)
	assert.Len(t, plans[2].Features, 6)

	assert.Len(t, SampleUsers(), 12)
	assert.Len(t, RecentActivity(), 5)
}

func TestSubscriberSearchMatchesPlanName(t *testing.T) {
	got := collection.Filter(SampleSubscribers(), "pro", model.SubscriberSearchFields)
	require.Len(t, got, 2)
	for _, s := range got {
		assert.Equal(t, model.TierPro, s.Plan)
	}
	assert.Equal(t, "Sarah Smith", got[0].Name)
	assert.Equal(t, "David Wilson", got[1].Name)

	assert.Len(t, collection.Filter(SampleSubscribers(), "", model.SubscriberSearchFields), 6)
	assert.Empty(t, collection.Filter(SampleSubscribers(), "nobody", model.SubscriberSearchFields))
}

func TestNewPlanIDsAreUnique(t *testing.T) {
	a, b := NewPlan(), NewPlan()
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NoError(t, model.NewPlanDraft(a).Set(model.FieldPlanName, "Team"))
}

func TestStaticPlansPersistUpdates(t *testing.T) {
	set := Static()
	ctx := context.Background()
	require.NoError(t, set.Plans.Update(ctx, "2", map[string]any{model.FieldIsActive: false}, locale.English))

	page, err := set.Plans.List(ctx, collection.PageRequest{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.False(t, page.Items[1].IsActive)
	assert.True(t, page.Items[0].IsActive)
}

func TestStaticSubscribersAreReadOnly(t *testing.T) {
	err := Static().Subscribers.Update(context.Background(), "1", map[string]any{"name": "x"}, locale.English)
	assert.ErrorIs(t, err, collection.ErrUnsupported)
}

func TestFor(t *testing.T) {
	set, err := For(&config.ServerConfig{Source: config.SourceStatic}, nil)
	require.NoError(t, err)
	assert.Equal(t, config.SourceStatic, set.Kind)
	assert.Nil(t, set.Client)

	_, err = For(&config.ServerConfig{Source: config.SourceRemote}, nil)
	assert.Error(t, err)

	_, err = For(&config.ServerConfig{Source: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}

func newClient(t *testing.T, h http.HandlerFunc) *client.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := client.New(&config.ServerConfig{URL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestRemotePlansPaginatesLocally(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sp", r.Header.Get("Accept-Language"))
		_, _ = io.WriteString(w, `{"data":[{"_id":"a","planName":"A"},{"_id":"b","planName":"B"},{"_id":"c","planName":"C"}]}`)
	})
	page, err := NewRemotePlans(c).List(context.Background(), collection.PageRequest{Page: 2, Size: 2, Locale: locale.Spanish})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "c", page.Items[0].ID)

	err = NewRemotePlans(c).Delete(context.Background(), "a")
	assert.ErrorIs(t, err, collection.ErrUnsupported)
}

func TestRemoteUsers(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"users":[{"_id":"u1","name":"Ann","isDeleted":true}],"pagination":{"totalPages":0}}}`)
	})
	src := NewRemoteUsers(c)

	page, err := src.List(context.Background(), collection.PageRequest{Page: 1, Size: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, model.UserBlocked, page.Items[0].Status)

	_, err = src.List(context.Background(), collection.PageRequest{Page: 0, Size: 1})
	assert.ErrorIs(t, err, collection.ErrInvalidArgument)

	err = src.Update(context.Background(), "u1", model.BlockPatch(false), locale.English)
	assert.ErrorIs(t, err, collection.ErrUnsupported)
	assert.True(t, errors.Is(err, client.ErrEndpointNotConfigured))

	err = src.Delete(context.Background(), "")
	assert.ErrorIs(t, err, collection.ErrInvalidArgument)
}

func TestRemoteUsersListFailure(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	page, err := NewRemoteUsers(c).List(context.Background(), collection.PageRequest{Page: 1, Size: 10})
	assert.Error(t, err)
	assert.Empty(t, page.Items)
}
