package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginLogout(t *testing.T) {
	s := New()
	assert.False(t, s.Authenticated())

	s = s.Navigate(Users)
	assert.Equal(t, Dashboard, s.Page(), "navigation ignored while logged out")

	s = s.Login("prod").Navigate(Packages)
	assert.True(t, s.Authenticated())
	assert.Equal(t, Packages, s.Page())
	assert.Equal(t, "prod", s.Server())

	s = s.Logout()
	assert.False(t, s.Authenticated())
	assert.Equal(t, Dashboard, s.Page())
	assert.Empty(t, s.Server())
}

func TestNextPrevWrap(t *testing.T) {
	s := New().Login("x")
	assert.Equal(t, Profile, s.Prev().Page())
	assert.Equal(t, Users, s.Next().Page())
	assert.Equal(t, Dashboard, s.Navigate(Profile).Next().Page())
}

func TestParsePage(t *testing.T) {
	p, err := ParsePage("subscribers")
	require.NoError(t, err)
	assert.Equal(t, Subscribers, p)
	assert.Equal(t, "Subscribers", p.Title())

	_, err = ParsePage("settings")
	assert.Error(t, err)
}
