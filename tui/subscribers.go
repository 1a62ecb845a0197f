package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/chupakbra/pbadm/internal/collection"
	"github.com/chupakbra/pbadm/internal/model"
)

// The roster is small; one page holds all of it so the tier cards count everyone.
const subscribersPageSize = 50

type subscribersModel struct {
	list    *collection.ListModel[model.Subscriber]
	table   table.Model
	spinner spinner.Model
	filter  searchBar
	rows    []model.Subscriber

	lastRefreshed time.Time

	width  int
	height int
}

func newSubscribersModel(src collection.Source[model.Subscriber], logger *zap.Logger, w, h int) subscribersModel {
	list := collection.NewListModel(src, model.SubscriberSearchFields, collection.ListOptions{
		Name:     "subscribers",
		PageSize: subscribersPageSize,
		Logger:   logger,
	})
	return subscribersModel{list: list, filter: newSearchBar("name, email or plan"), spinner: newSpinner(), width: w, height: h}
}

func (m subscribersModel) init() tea.Cmd {
	return tea.Batch(loadCmd(m.list.BeginLoad(1)), m.spinner.Tick)
}

func (m subscribersModel) isNormalMode() bool { return !m.filter.active }

func (m *subscribersModel) clearFilter() {
	m.filter.clear()
	m.list.SetQuery("")
}

func (m subscribersModel) withRebuiltTable() subscribersModel {
	nameWidth := max(m.width-(28+9+12+12+9+10), 15)
	cols := []table.Column{
		{Title: "NAME", Width: nameWidth},
		{Title: "EMAIL", Width: 28},
		{Title: "PLAN", Width: 9},
		{Title: "START", Width: 12},
		{Title: "END", Width: 12},
		{Title: "STATUS", Width: 9},
	}
	m.rows = m.list.Filtered()
	rows := make([]table.Row, len(m.rows))
	for i, s := range m.rows {
		rows[i] = table.Row{
			s.Name,
			s.Email,
			string(s.Plan),
			s.StartDate.Format(time.DateOnly),
			s.EndDate.Format(time.DateOnly),
			string(s.Status),
		}
	}
	m.table = newTable(cols, rows, m.height-15)
	return m
}

func (m subscribersModel) update(msg tea.Msg) (subscribersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg[model.Subscriber]:
		if !m.list.Apply(msg.res) {
			return m, nil
		}
		m.lastRefreshed = time.Now()
		return m.withRebuiltTable(), nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.list.Loading() {
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.filter.active {
			var rebuild bool
			var cmd tea.Cmd
			m.filter, rebuild, cmd = m.filter.handleKey(msg)
			if rebuild {
				m.list.SetQuery(m.filter.query())
				m = m.withRebuiltTable()
			}
			return m, cmd
		}
		switch msg.String() {
		case "/":
			var cmd tea.Cmd
			m.filter, cmd = m.filter.open()
			return m, cmd
		case "ctrl+u":
			if m.filter.hasActiveFilter() {
				m.clearFilter()
				return m.withRebuiltTable(), nil
			}
		case "ctrl+r":
			return m, tea.Batch(loadCmd(m.list.BeginLoad(m.list.Page())), m.spinner.Tick)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m subscribersModel) view() string {
	if m.width == 0 {
		return ""
	}
	title := StyleTitle.Render("Subscribers")
	if m.list.Loading() && len(m.rows) == 0 {
		return title + "\n\n" + StyleWarning.Render(m.spinner.View()+" Loading...")
	}

	counts := model.CountByTier(m.list.Items())
	cards := make([]string, 0, len(model.Tiers))
	for _, t := range model.Tiers {
		cards = append(cards, card(string(t)+" Plan", strconv.Itoa(counts[t])))
	}

	count := StyleDim.Render(fmt.Sprintf(" (%d)", len(m.list.Items())))
	lines := []string{
		headerLine(title+count, m.width, m.lastRefreshed),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, cards...),
		"",
	}
	switch {
	case m.list.Err() != nil:
		lines = append(lines, StyleDim.Render("No subscribers to show; press ctrl+r to retry."))
	case len(m.rows) == 0:
		lines = append(lines, StyleDim.Render("No subscribers match the filter."))
	default:
		lines = append(lines, m.table.View())
	}
	if fl := m.filter.renderLine(); fl != "" {
		lines = append(lines, fl)
	}
	lines = append(lines, renderHelp("[/] filter by name, email or plan  |  [ctrl+r] refresh"))
	return strings.Join(lines, "\n")
}
