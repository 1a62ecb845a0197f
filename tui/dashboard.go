package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/chupakbra/pbadm/internal/dashboard"
	"github.com/chupakbra/pbadm/internal/locale"
	"github.com/chupakbra/pbadm/internal/source"
)

// statsFetchedMsg is sent when the dashboard numbers have been gathered.
type statsFetchedMsg struct {
	stats   dashboard.Stats
	err     error
	fetchID int64 // matches dashboardModel.fetchID; stale responses are discarded
}

type dashboardModel struct {
	set     source.Set
	loc     locale.Locale
	logger  *zap.Logger
	stats   dashboard.Stats
	loading bool
	err     error
	spinner spinner.Model
	fetchID int64

	lastRefreshed time.Time

	width  int
	height int
}

func newDashboardModel(set source.Set, loc locale.Locale, logger *zap.Logger, w, h int) dashboardModel {
	return dashboardModel{
		set:     set,
		loc:     loc,
		logger:  logger,
		loading: true,
		spinner: newSpinner(),
		fetchID: time.Now().UnixNano(),
		width:   w,
		height:  h,
	}
}

func (m dashboardModel) init() tea.Cmd {
	return tea.Batch(fetchStats(m.set, m.loc, m.fetchID), m.spinner.Tick)
}

func (m dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsFetchedMsg:
		if msg.fetchID != m.fetchID {
			return m, nil
		}
		m.loading = false
		m.stats = msg.stats
		m.err = msg.err
		if msg.err != nil {
			m.logger.Warn("dashboard stats incomplete", zap.Error(msg.err))
		}
		m.lastRefreshed = time.Now()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.loading {
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+r" && !m.loading {
			m.loading = true
			m.fetchID = time.Now().UnixNano()
			return m, tea.Batch(fetchStats(m.set, m.loc, m.fetchID), m.spinner.Tick)
		}
	}
	return m, nil
}

func (m dashboardModel) view() string {
	if m.width == 0 {
		return ""
	}
	title := StyleTitle.Render("Dashboard")
	if m.loading {
		return title + "\n\n" + StyleWarning.Render(m.spinner.View()+" Loading...")
	}

	st := m.stats
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Users", strconv.Itoa(st.TotalUsers)),
		card("Subscribers", strconv.Itoa(st.Subscribers)),
		card("Expiring Soon", strconv.Itoa(st.ExpiringSubscribers)),
		card("Active Plans", fmt.Sprintf("%d / %d", st.ActivePlans, st.TotalPlans)),
	)

	lines := []string{
		headerLine(title, m.width, m.lastRefreshed),
		"",
		cards,
		"",
		StyleSubtitle.Render("Recent Activity"),
	}
	for _, a := range st.Activity {
		lines = append(lines, fmt.Sprintf("  %-16s %-24s %s", a.User, a.Action, StyleDim.Render(a.When)))
	}
	lines = append(lines, "")
	if m.err != nil {
		lines = append(lines, StyleError.Render("Some figures could not be loaded: "+m.err.Error()))
	} else {
		lines = append(lines, "")
	}
	lines = append(lines, renderHelp("[ctrl+r] refresh"))
	return strings.Join(lines, "\n")
}

func fetchStats(set source.Set, loc locale.Locale, fetchID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		st, err := dashboard.Collect(ctx, set, loc)
		return statsFetchedMsg{stats: st, err: err, fetchID: fetchID}
	}
}
