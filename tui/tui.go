// Package tui implements the interactive terminal user interface for pbadm.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/chupakbra/pbadm/internal/config"
	"github.com/chupakbra/pbadm/internal/locale"
	"github.com/chupakbra/pbadm/internal/model"
	"github.com/chupakbra/pbadm/internal/nav"
	"github.com/chupakbra/pbadm/internal/profile"
	"github.com/chupakbra/pbadm/internal/source"
)

// Options configures the TUI.
type Options struct {
	Config *config.Config
	// Overrides wins over the selected server profile (env and flags).
	Overrides config.ServerConfig
	Logger    *zap.Logger
}

// appModel is the top-level Bubble Tea model acting as a screen router.
type appModel struct {
	nav    nav.State
	logger *zap.Logger
	width  int
	height int

	login loginModel

	// Set on login.
	srv     config.ServerConfig
	loc     locale.Locale
	set     source.Set
	account *profile.Account
	started map[nav.Page]bool

	dashboard   dashboardModel
	users       usersModel
	subscribers subscribersModel
	packages    packagesModel
	profile     profileModel
}

func newAppModel(opts Options) appModel {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return appModel{
		nav:     nav.New(),
		logger:  logger,
		login:   newLoginModel(opts.Config, opts.Overrides, logger),
		account: profile.NewAccount(profile.DefaultInfo()),
	}
}

func (a appModel) Init() tea.Cmd {
	return a.login.init()
}

// contentSize is the area right of the sidebar.
func (a appModel) contentSize() (int, int) {
	return max(a.width-sidebarWidth-1-4, 20), max(a.height-2, 5)
}

func (a *appModel) resize() {
	a.login.width, a.login.height = a.width, a.height
	a.login.table = a.login.buildTable()
	if !a.nav.Authenticated() {
		return
	}
	w, h := a.contentSize()
	a.dashboard.width, a.dashboard.height = w, h
	a.users.width, a.users.height = w, h
	a.subscribers.width, a.subscribers.height = w, h
	a.packages.width, a.packages.height = w, h
	a.profile.width, a.profile.height = w, h
	if a.started[nav.Users] {
		a.users = a.users.withRebuiltTable()
	}
	if a.started[nav.Subscribers] {
		a.subscribers = a.subscribers.withRebuiltTable()
	}
	if a.started[nav.Packages] {
		a.packages = a.packages.withRebuiltTable()
	}
}

// enter builds the screens for a fresh session.
func (a *appModel) enter(msg loggedInMsg) tea.Cmd {
	a.nav = a.nav.Login(msg.name)
	a.srv = msg.srv
	a.loc = msg.loc
	a.set = msg.set
	a.started = map[nav.Page]bool{}
	a.login.connecting = false

	w, h := a.contentSize()
	a.dashboard = newDashboardModel(a.set, a.loc, a.logger, w, h)
	a.users = newUsersModel(a.set.Users, a.srv.PageSize, a.logger, w, h)
	a.subscribers = newSubscribersModel(a.set.Subscribers, a.logger, w, h)
	a.packages = newPackagesModel(a.set.Plans, a.loc, a.logger, w, h)
	a.profile = newProfileModel(a.account, w, h)
	return a.visit(nav.Dashboard)
}

// visit switches to p, starting its first load on the first visit.
func (a *appModel) visit(p nav.Page) tea.Cmd {
	a.nav = a.nav.Navigate(p)
	if a.started[p] {
		return nil
	}
	a.started[p] = true
	switch p {
	case nav.Dashboard:
		return a.dashboard.init()
	case nav.Users:
		return a.users.init()
	case nav.Subscribers:
		return a.subscribers.init()
	case nav.Packages:
		return a.packages.init()
	}
	return nil
}

// pageIsNormal reports whether the active page is free of overlays, forms
// and focused filters, so router keys may act.
func (a appModel) pageIsNormal() bool {
	switch a.nav.Page() {
	case nav.Users:
		return a.users.isNormalMode()
	case nav.Subscribers:
		return a.subscribers.isNormalMode()
	case nav.Packages:
		return a.packages.isNormalMode()
	case nav.Profile:
		return a.profile.isNormalMode()
	}
	return true
}

func (a *appModel) clearFilters() {
	a.users.clearFilter()
	a.subscribers.clearFilter()
	a.packages.clearFilter()
}

func (a appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle router-level messages first.
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case loggedInMsg:
		cmd := a.enter(msg)
		a.resize()
		return a, cmd

	// Async results go to the screen that owns them, visible or not.
	case loadedMsg[model.User], mutatedMsg[model.User]:
		if !a.nav.Authenticated() {
			return a, nil
		}
		var cmd tea.Cmd
		a.users, cmd = a.users.update(msg)
		return a, cmd
	case loadedMsg[model.Subscriber]:
		if !a.nav.Authenticated() {
			return a, nil
		}
		var cmd tea.Cmd
		a.subscribers, cmd = a.subscribers.update(msg)
		return a, cmd
	case loadedMsg[model.SubscriptionPlan], mutatedMsg[model.SubscriptionPlan], committedMsg[model.SubscriptionPlan]:
		if !a.nav.Authenticated() {
			return a, nil
		}
		var cmd tea.Cmd
		a.packages, cmd = a.packages.update(msg)
		return a, cmd
	case statsFetchedMsg:
		if !a.nav.Authenticated() {
			return a, nil
		}
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, cmd

	case spinner.TickMsg:
		// Each spinner ignores ticks carrying another spinner's id.
		if !a.nav.Authenticated() {
			var cmd tea.Cmd
			a.login, cmd = a.login.update(msg)
			return a, cmd
		}
		var cmds [4]tea.Cmd
		a.dashboard, cmds[0] = a.dashboard.update(msg)
		a.users, cmds[1] = a.users.update(msg)
		a.subscribers, cmds[2] = a.subscribers.update(msg)
		a.packages, cmds[3] = a.packages.update(msg)
		return a, tea.Batch(cmds[:]...)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		if !a.nav.Authenticated() {
			if msg.String() == "Q" && a.login.mode == loginNormal {
				return a, tea.Quit
			}
			var cmd tea.Cmd
			a.login, cmd = a.login.update(msg)
			return a, cmd
		}

		if a.pageIsNormal() {
			switch msg.String() {
			case "Q":
				return a, tea.Quit
			case "L":
				a.logger.Info("signed out", zap.String("server", a.nav.Server()))
				a.nav = a.nav.Logout()
				a.set = source.Set{}
				a.started = nil
				a.login.table = a.login.buildTable()
				return a, nil
			case "tab":
				a.clearFilters()
				cmd := a.visit(a.nav.Next().Page())
				return a, cmd
			case "shift+tab":
				a.clearFilters()
				cmd := a.visit(a.nav.Prev().Page())
				return a, cmd
			case "1", "2", "3", "4", "5":
				a.clearFilters()
				cmd := a.visit(nav.Pages[msg.String()[0]-'1'])
				return a, cmd
			}
		}
	}

	if !a.nav.Authenticated() {
		var cmd tea.Cmd
		a.login, cmd = a.login.update(msg)
		return a, cmd
	}

	// Delegate all other messages to the active page.
	var cmd tea.Cmd
	switch a.nav.Page() {
	case nav.Dashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case nav.Users:
		a.users, cmd = a.users.update(msg)
	case nav.Subscribers:
		a.subscribers, cmd = a.subscribers.update(msg)
	case nav.Packages:
		a.packages, cmd = a.packages.update(msg)
	case nav.Profile:
		a.profile, cmd = a.profile.update(msg)
	}
	return a, cmd
}

func (a appModel) View() string {
	if a.width == 0 {
		return ""
	}
	if !a.nav.Authenticated() {
		return lipgloss.NewStyle().Padding(1, 2).Render(a.login.view())
	}

	var page string
	switch a.nav.Page() {
	case nav.Dashboard:
		page = a.dashboard.view()
	case nav.Users:
		page = a.users.view()
	case nav.Subscribers:
		page = a.subscribers.view()
	case nav.Packages:
		page = a.packages.view()
	case nav.Profile:
		page = a.profile.view()
	}
	content := lipgloss.NewStyle().Padding(1, 2).Render(strings.TrimRight(page, "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, renderSidebar(a.nav, a.height), content)
}

// LaunchTUI starts the Bubble Tea program and blocks until the user quits.
func LaunchTUI(opts Options) error {
	m := newAppModel(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
