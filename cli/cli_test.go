package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chupakbra/pbadm/internal/config"
	"github.com/chupakbra/pbadm/internal/dashboard"
	"github.com/chupakbra/pbadm/internal/model"
)

// useStatic points the CLI at a scratch config file and the fixture source.
func useStatic(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PBADM_SERVER", "PBADM_URL", "PBADM_LOCALE", "PBADM_SOURCE", "PBADM_PAGE_SIZE", "PBADM_LOG_FILE", "PBADM_LOG_LEVEL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("PBADM_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))

	flagServer, flagURL, flagLocale, flagLogFile = "", "", "", ""
	flagSource = config.SourceStatic
	flagOutput = "table"
	flagLogLevel = "error"
	t.Cleanup(func() {
		flagSource, flagURL, flagOutput, flagLogLevel = "", "", "table", ""
	})
}

func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	return out.String(), err
}

func TestUsersListJSON(t *testing.T) {
	useStatic(t)
	flagOutput = "json"

	out, err := run(t, usersCmd(), "", "list", "--page", "2")
	require.NoError(t, err)

	var got struct {
		Page       int          `json:"page"`
		TotalPages int          `json:"totalPages"`
		Users      []model.User `json:"users"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 2, got.TotalPages)
	require.Len(t, got.Users, 2)
	assert.Equal(t, "u11", got.Users[0].ID)
}

func TestUsersListSearch(t *testing.T) {
	useStatic(t)

	out, err := run(t, usersCmd(), "", "list", "--search", "SMITH")
	require.NoError(t, err)
	assert.Contains(t, out, "Sarah Smith")
	assert.NotContains(t, out, "John Doe")
	assert.Contains(t, out, "Page 1 of 2")
}

func TestUsersListRejectsBadPage(t *testing.T) {
	useStatic(t)
	_, err := run(t, usersCmd(), "", "list", "--page", "0")
	require.Error(t, err)
}

func TestUsersBlockSkipsPromptWithYes(t *testing.T) {
	useStatic(t)
	out, err := run(t, usersCmd(), "", "block", "u01", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "User u01 blocked.")
}

func TestUsersDeleteAbortsWithoutConfirmation(t *testing.T) {
	useStatic(t)
	out, err := run(t, usersCmd(), "n\n", "delete", "u02")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted.")
	assert.NotContains(t, out, "deleted")
}

func TestUsersDeleteConfirmed(t *testing.T) {
	useStatic(t)
	out, err := run(t, usersCmd(), "y\n", "delete", "u02")
	require.NoError(t, err)
	assert.Contains(t, out, "User u02 deleted.")
}

func TestUsersDeleteUnknownID(t *testing.T) {
	useStatic(t)
	_, err := run(t, usersCmd(), "", "delete", "nope", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRemoteUserDeleteNeedsEndpoint(t *testing.T) {
	useStatic(t)
	flagSource = ""
	flagURL = "http://127.0.0.1:1"

	_, err := run(t, usersCmd(), "", "delete", "u01", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no endpoint")
}

func TestRemoteUserBlockFailsBeforePrompt(t *testing.T) {
	useStatic(t)
	flagSource = ""
	flagURL = "http://127.0.0.1:1"

	out, err := run(t, usersCmd(), "y\n", "block", "u01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no endpoint")
	assert.NotContains(t, out, "Block user u01?")
}

func TestPackagesEdit(t *testing.T) {
	useStatic(t)
	out, err := run(t, packagesCmd(), "", "edit", "2",
		"--price", "19.5",
		"--remove-feature", "1",
		"--add-feature", "Photo Printing")
	require.NoError(t, err)
	assert.Contains(t, out, "Package 2 updated.")
	assert.Contains(t, out, "19.50 / monthly")
	assert.Contains(t, out, "Photo Printing")
	assert.NotContains(t, out, "Unlimited Projects")
	assert.Contains(t, out, "★ Popular")
}

func TestPackagesEditNothingToChange(t *testing.T) {
	useStatic(t)
	out, err := run(t, packagesCmd(), "", "edit", "1", "--name", "Basic")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to change.")
}

func TestPackagesEditRejectsInvalidDraft(t *testing.T) {
	useStatic(t)

	_, err := run(t, packagesCmd(), "", "edit", "1", "--cycle", "weekly")
	require.Error(t, err)

	_, err = run(t, packagesCmd(), "", "edit", "1", "--remove-feature", "99")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrIndexOutOfRange)
}

func TestPackagesAddAndDeactivate(t *testing.T) {
	useStatic(t)

	out, err := run(t, packagesCmd(), "", "add", "--name", "Starter", "--price", "4.99", "--feature", "1 Photobook")
	require.NoError(t, err)
	assert.Contains(t, out, "added.")
	assert.Contains(t, out, "Starter")
	assert.Contains(t, out, "1 Photobook")

	out, err = run(t, packagesCmd(), "", "deactivate", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Package 3 deactivated.")

	out, err = run(t, packagesCmd(), "", "activate", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "already activated")
}

func TestPackagesShowUnknown(t *testing.T) {
	useStatic(t)
	_, err := run(t, packagesCmd(), "", "show", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSubscribersSearch(t *testing.T) {
	useStatic(t)
	flagOutput = "json"

	out, err := run(t, subscribersCmd(), "", "list", "--search", "pro")
	require.NoError(t, err)

	var got struct {
		Counts      map[model.PlanTier]int `json:"counts"`
		Subscribers []model.Subscriber     `json:"subscribers"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Counts[model.TierPremium])
	require.Len(t, got.Subscribers, 2)
	assert.Equal(t, "Sarah Smith", got.Subscribers[0].Name)
}

func TestProfilePassword(t *testing.T) {
	useStatic(t)

	_, err := run(t, profileCmd(), "", "password", "--current", "old", "--new", "abc", "--confirm", "abcd")
	require.Error(t, err)
	assert.EqualError(t, err, "new passwords do not match")

	_, err = run(t, profileCmd(), "old\nabc\nabc\n", "password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 6")

	out, err := run(t, profileCmd(), "old\nsecret1\nsecret1\n", "password")
	require.NoError(t, err)
	assert.Contains(t, out, "Password updated.")
}

func TestProfileEditValidatesEmail(t *testing.T) {
	useStatic(t)

	_, err := run(t, profileCmd(), "", "edit", "--email", "not-an-email")
	require.Error(t, err)

	out, err := run(t, profileCmd(), "", "edit", "--name", "  Jane Admin ")
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Admin")
	assert.Contains(t, out, "Administrator")
}

func TestDashboardJSON(t *testing.T) {
	useStatic(t)
	flagOutput = "json"

	out, err := run(t, dashboardCmd(), "")
	require.NoError(t, err)

	var st dashboard.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 12, st.TotalUsers)
	assert.Equal(t, 6, st.Subscribers)
	assert.Equal(t, 2, st.ExpiringSubscribers)
	assert.Equal(t, 3, st.TotalPlans)
	assert.NotEmpty(t, st.Activity)
}

func TestServerLifecycle(t *testing.T) {
	useStatic(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscription", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	out, err := run(t, serverCmd(), "", "add", "prod", "--url", srv.URL+"/")
	require.NoError(t, err)
	assert.Contains(t, out, "Connection verified.")
	assert.Contains(t, out, `Set "prod" as the default server.`)

	_, err = run(t, serverCmd(), "", "add", "demo", "--source", "static", "--locale", "sp")
	require.NoError(t, err)

	_, err = run(t, serverCmd(), "", "add", "demo", "--source", "static")
	require.Error(t, err)

	_, err = run(t, serverCmd(), "", "add", "bad", "--source", "static", "--locale", "fr")
	require.Error(t, err)

	out, err = run(t, serverCmd(), "", "use", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, `Default server set to "demo".`)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.CurrentServer)
	assert.Equal(t, srv.URL, cfg.Servers["prod"].URL)
	assert.Equal(t, "sp", cfg.Servers["demo"].Locale)

	flagOutput = "json"
	out, err = run(t, serverCmd(), "", "list")
	require.NoError(t, err)
	var rows []struct {
		Name    string `json:"name"`
		Current bool   `json:"current"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "demo", rows[0].Name)
	assert.True(t, rows[0].Current)

	flagOutput = "table"
	out, err = run(t, serverCmd(), "", "remove", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, `Server "demo" removed.`)

	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.CurrentServer)
	assert.Len(t, cfg.Servers, 1)
}

func TestServerAddFailsVerification(t *testing.T) {
	useStatic(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := run(t, serverCmd(), "", "add", "prod", "--url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection check failed")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Servers)
}
