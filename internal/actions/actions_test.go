package actions

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chupakbra/pbadm/internal/client"
	"github.com/chupakbra/pbadm/internal/config"
	"github.com/chupakbra/pbadm/internal/locale"
	"github.com/chupakbra/pbadm/internal/model"
)

func TestUserFromRecord(t *testing.T) {
	u := UserFromRecord(client.UserRecord{ID: "0", Name: "Ann", IsDeleted: true, CreatedAt: "2024-03-01T08:30:00Z"})
	assert.Equal(t, "0", u.ID)
	assert.Equal(t, model.UserBlocked, u.Status)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), u.CreatedAt)

	u = UserFromRecord(client.UserRecord{ID: "1", CreatedAt: "yesterday"})
	assert.True(t, u.CreatedAt.IsZero())
	assert.Equal(t, model.UserActive, u.Status)
}

func TestPlanFromRecordNeverNilFeatures(t *testing.T) {
	p := PlanFromRecord(client.PlanRecord{ID: "p", PlanName: "Basic", BillingCycle: "monthly"})
	assert.NotNil(t, p.Features)
	assert.Equal(t, model.Monthly, p.BillingCycle)
}

func newClient(t *testing.T, h http.HandlerFunc) *client.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := client.New(&config.ServerConfig{URL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestListUsers(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `{"data":{"users":[{"_id":"a","isDeleted":true}],"pagination":{"totalPages":2543}}}`)
	})
	users, total, err := ListUsers(context.Background(), c, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 2543, total)
	require.Len(t, users, 1)
	assert.True(t, users[0].Blocked())
}

func TestListPlans(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"_id":"p1","planName":"Basic","price":"9.99"},{"_id":"p2","planName":"Pro","price":24.99}]}`)
	})
	plans, err := ListPlans(context.Background(), c, locale.English)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "Pro", plans[1].PlanName)
	assert.Equal(t, "9.99", plans[0].Price.String())
	assert.Equal(t, "24.99", plans[1].Price.String())
	assert.NotNil(t, plans[0].Features)
}
