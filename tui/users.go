package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/chupakbra/pbadm/internal/collection"
	apperrors "github.com/chupakbra/pbadm/internal/errors"
	"github.com/chupakbra/pbadm/internal/model"
)

type usersModel struct {
	list    *collection.ListModel[model.User]
	gate    collection.Gate
	table   table.Model
	spinner spinner.Model
	filter  searchBar
	rows    []model.User // rows currently shown, in table order

	statusMsg     string
	statusErr     bool
	lastRefreshed time.Time

	width  int
	height int
}

func newUsersModel(src collection.Source[model.User], pageSize int, logger *zap.Logger, w, h int) usersModel {
	list := collection.NewListModel(src, model.UserSearchFields, collection.ListOptions{
		Name:     "users",
		PageSize: pageSize,
		Logger:   logger,
	})
	return usersModel{
		list:    list,
		filter:  newSearchBar("name or email"),
		spinner: newSpinner(),
		width:   w,
		height:  h,
	}
}

func (m usersModel) init() tea.Cmd {
	return tea.Batch(loadCmd(m.list.BeginLoad(1)), m.spinner.Tick)
}

// fixedUsersColWidth: EMAIL(30)+STATUS(9)+JOINED(12) = 51 + separators ~8
const fixedUsersColWidth = 51 + 8

func (m usersModel) withRebuiltTable() usersModel {
	nameWidth := m.width - fixedUsersColWidth
	if nameWidth < 15 {
		nameWidth = 15
	}
	cols := []table.Column{
		{Title: "NAME", Width: nameWidth},
		{Title: "EMAIL", Width: 30},
		{Title: "STATUS", Width: 9},
		{Title: "JOINED", Width: 12},
	}

	m.rows = m.list.Filtered()
	rows := make([]table.Row, len(m.rows))
	for i, u := range m.rows {
		joined := "-"
		if !u.CreatedAt.IsZero() {
			joined = u.CreatedAt.Format(time.DateOnly)
		}
		rows[i] = table.Row{u.Name, u.Email, string(u.Status), joined}
	}

	cursor := m.table.Cursor()
	m.table = newTable(cols, rows, m.height-10)
	if cursor > 0 && cursor < len(rows) {
		m.table.SetCursor(cursor)
	}
	return m
}

// selected returns the highlighted user, if any.
func (m usersModel) selected() (model.User, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return model.User{}, false
	}
	return m.rows[i], true
}

func (m usersModel) isNormalMode() bool {
	_, pending := m.gate.Pending()
	return !pending && !m.filter.active
}

func (m *usersModel) clearFilter() {
	m.filter.clear()
	m.list.SetQuery("")
}

func (m usersModel) loadPage(page int) (usersModel, tea.Cmd) {
	m.statusMsg = ""
	return m, tea.Batch(loadCmd(m.list.BeginLoad(page)), m.spinner.Tick)
}

func (m usersModel) update(msg tea.Msg) (usersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg[model.User]:
		if !m.list.Apply(msg.res) {
			return m, nil // stale response from a previous fetch; discard
		}
		m.lastRefreshed = time.Now()
		return m.withRebuiltTable(), nil

	case mutatedMsg[model.User]:
		applied := m.list.ApplyMutation(msg.res)
		if msg.res.Err != nil {
			m.statusMsg = "Error: " + apperrors.Handle("", msg.res.Err).Error()
			m.statusErr = true
			return m, nil
		}
		if !applied {
			return m, nil
		}
		m.statusMsg = msg.label
		m.statusErr = false
		m = m.withRebuiltTable()
		if len(m.list.Items()) == 0 && m.list.HasPrev() {
			return m.loadPage(m.list.Page() - 1)
		}
		return m, nil

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

		// Confirm overlay.
		if _, ok := m.gate.Pending(); ok {
			switch msg.String() {
			case "enter":
				var cmd tea.Cmd
				m.gate.ConfirmWith(func(a collection.PendingAction) {
					cmd = m.confirmCmd(a)
				})
				return m, cmd
			case "esc":
				m.gate.Cancel()
				return m, nil
			}
			return m, nil
		}

		if m.list.Loading() {
			return m, nil
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
		case "right", "n":
			if m.list.HasNext() {
				return m.loadPage(m.list.Page() + 1)
			}
			return m, nil
		case "left", "p":
			if m.list.HasPrev() {
				return m.loadPage(m.list.Page() - 1)
			}
			return m, nil
		case "b":
			u, ok := m.selected()
			if !ok {
				return m, nil
			}
			kind := collection.ActionBlock
			if u.Blocked() {
				kind = collection.ActionUnblock
			}
			m.gate.Request(kind, u.ID)
			m.statusMsg = ""
			return m, nil
		case "d":
			u, ok := m.selected()
			if !ok {
				return m, nil
			}
			m.gate.Request(collection.ActionDelete, u.ID)
			m.statusMsg = ""
			return m, nil
		case "ctrl+r":
			return m.loadPage(m.list.Page())
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// confirmCmd sends the confirmed action to the source. The row only changes
// once the source accepts it.
func (m usersModel) confirmCmd(a collection.PendingAction) tea.Cmd {
	u, ok := m.list.Get(a.TargetID)
	if !ok {
		return nil
	}
	switch a.Kind {
	case collection.ActionDelete:
		req := m.list.BeginMutation(collection.Mutation[model.User]{ID: u.ID, Delete: true})
		return mutateCmd(req, fmt.Sprintf("User %q deleted", u.Email))
	default:
		blocked := a.Kind == collection.ActionBlock
		req := m.list.BeginMutation(collection.Mutation[model.User]{
			ID:    u.ID,
			Patch: model.BlockPatch(blocked),
			Local: func(u model.User) (model.User, bool) {
				u.Status = model.StatusFromDeleted(blocked)
				return u, true
			},
		})
		return mutateCmd(req, fmt.Sprintf("User %q %sed", u.Email, a.Kind))
	}
}

func (m usersModel) view() string {
	if m.width == 0 {
		return ""
	}

	title := StyleTitle.Render("Users")

	if m.list.Loading() && len(m.rows) == 0 {
		return title + "\n\n" + StyleWarning.Render(m.spinner.View()+" Loading...")
	}

	count := StyleDim.Render(fmt.Sprintf(" (page %d of %d)", m.list.Page(), m.list.TotalPages()))

	var lines []string
	lines = append(lines, headerLine(title+count, m.width, m.lastRefreshed))
	lines = append(lines, "")

	switch {
	case m.list.Err() != nil:
		lines = append(lines, StyleDim.Render("No users to show. The server could not be reached; press ctrl+r to retry."))
	case len(m.rows) == 0 && m.filter.hasActiveFilter():
		lines = append(lines, StyleDim.Render("No users match the filter."))
	case len(m.rows) == 0:
		lines = append(lines, StyleDim.Render("No users found."))
	default:
		lines = append(lines, m.table.View())
	}

	if fl := m.filter.renderLine(); fl != "" {
		lines = append(lines, fl)
	}

	if pending, ok := m.gate.Pending(); ok {
		who := pending.TargetID
		if u, found := m.list.Get(pending.TargetID); found {
			who = u.Email
		}
		lines = append(lines, "")
		lines = append(lines, StyleWarning.Render(
			fmt.Sprintf("%s user %q? [Enter] confirm   [Esc] cancel", capitalize(pending.Kind.String()), who),
		))
		return strings.Join(lines, "\n")
	}

	if m.list.Loading() {
		lines = append(lines, StyleWarning.Render(m.spinner.View()+" Loading..."))
	} else {
		lines = append(lines, renderStatus(m.statusMsg, m.statusErr))
	}
	lines = append(lines, renderHelp("[b] block/unblock   [d] delete   [/] filter  |  [←/→] page  |  [ctrl+r] refresh"))
	return strings.Join(lines, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

