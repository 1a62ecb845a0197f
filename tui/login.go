package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/chupakbra/pbadm/internal/client"
	"github.com/chupakbra/pbadm/internal/config"
	"github.com/chupakbra/pbadm/internal/locale"
	"github.com/chupakbra/pbadm/internal/source"
)

// loginMode controls which overlay (if any) is active.
type loginMode int

const (
	loginNormal     loginMode = iota
	loginAdding               // add-server form is open
	loginConfirmDel           // remove-server confirmation overlay
)

const defaultServerName = "default"

// loggedInMsg is sent when a server has been verified and its sources built.
type loggedInMsg struct {
	name string
	srv  config.ServerConfig
	loc  locale.Locale
	set  source.Set
}

// connectErrMsg is sent when connecting to a server fails.
type connectErrMsg struct{ err error }

type loginModel struct {
	cfg       *config.Config
	overrides config.ServerConfig
	logger    *zap.Logger

	current    string // name of the currently selected server
	table      table.Model
	spinner    spinner.Model
	connecting bool
	connectErr string

	mode loginMode

	// Add-server form: [0]=name [1]=url [2]=source.
	addInputs [3]textinput.Model
	addFocus  int

	statusMsg string
	statusErr bool

	width  int
	height int
}

func newLoginModel(cfg *config.Config, overrides config.ServerConfig, logger *zap.Logger) loginModel {
	placeholders := [3]string{
		"e.g. production",
		config.DefaultURL,
		"remote or static (default remote)",
	}
	var inputs [3]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 120
		inputs[i] = ti
	}

	m := loginModel{
		cfg:       cfg,
		overrides: overrides,
		logger:    logger,
		current:   cfg.CurrentServer,
		spinner:   newSpinner(),
		addInputs: inputs,
	}
	m.table = m.buildTable()
	return m
}

// servers returns the configured profiles, or the built-in default when none exist.
func (m loginModel) servers() map[string]config.ServerConfig {
	if len(m.cfg.Servers) == 0 {
		return map[string]config.ServerConfig{defaultServerName: config.Default()}
	}
	return m.cfg.Servers
}

func (m loginModel) buildTable() table.Model {
	nameWidth := 20
	urlWidth := 36
	if m.width > 0 {
		if remaining := m.width - urlWidth - 8 - 9 - 12; remaining > nameWidth {
			nameWidth = remaining
		}
	}
	cols := []table.Column{
		{Title: "NAME", Width: nameWidth},
		{Title: "URL", Width: urlWidth},
		{Title: "SOURCE", Width: 8},
		{Title: "DEFAULT", Width: 9},
	}

	servers := m.servers()
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]table.Row, len(names))
	for i, name := range names {
		srv := servers[name].WithDefaults()
		def := ""
		if name == m.current {
			def = "✓"
		}
		rows[i] = table.Row{name, srv.URL, srv.Source, def}
	}
	return newTable(cols, rows, m.height-12)
}

func (m loginModel) init() tea.Cmd {
	return nil
}

func (m loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case connectErrMsg:
		m.connecting = false
		m.connectErr = msg.err.Error()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.connecting {
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.connecting {
			return m, nil
		}

		if m.mode == loginAdding {
			switch msg.String() {
			case "esc":
				m.mode = loginNormal
				m.clearAddForm()
				return m, nil
			case "enter":
				if m.addFocus < len(m.addInputs)-1 {
					m.addInputs[m.addFocus].Blur()
					m.addFocus++
					m.addInputs[m.addFocus].Focus()
					return m, textinput.Blink
				}
				name := strings.TrimSpace(m.addInputs[0].Value())
				url := strings.TrimSpace(m.addInputs[1].Value())
				src := strings.TrimSpace(m.addInputs[2].Value())
				m.mode = loginNormal
				m.clearAddForm()
				m.addServer(name, config.ServerConfig{URL: url, Source: src})
				return m, nil
			default:
				var cmd tea.Cmd
				m.addInputs[m.addFocus], cmd = m.addInputs[m.addFocus].Update(msg)
				return m, cmd
			}
		}

		if m.mode == loginConfirmDel {
			switch msg.String() {
			case "enter":
				row := m.table.SelectedRow()
				m.mode = loginNormal
				if len(row) == 0 {
					return m, nil
				}
				m.removeServer(row[0])
				return m, nil
			case "esc":
				m.mode = loginNormal
			}
			return m, nil
		}

		switch msg.String() {
		case "enter":
			row := m.table.SelectedRow()
			if len(row) == 0 {
				return m, nil
			}
			name := row[0]
			srv := m.servers()[name].WithDefaults().Merge(m.overrides)
			m.connecting = true
			m.connectErr = ""
			m.statusMsg = ""
			return m, tea.Batch(connectToServer(m.cfg, name, srv, m.logger), m.spinner.Tick)
		case "s":
			// Offline demo with fixture data; nothing is contacted.
			m.connectErr = ""
			return m, func() tea.Msg {
				loc, err := locale.Parse(m.overrides.Locale)
				if err != nil {
					loc = locale.Default
				}
				return loggedInMsg{name: "demo", srv: config.Default(), loc: loc, set: source.Static()}
			}
		case "a":
			m.mode = loginAdding
			m.addFocus = 0
			m.addInputs[0].Focus()
			return m, textinput.Blink
		case "d":
			if len(m.cfg.Servers) == 0 {
				return m, nil
			}
			m.mode = loginConfirmDel
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *loginModel) addServer(name string, srv config.ServerConfig) {
	if name == "" || (srv.URL == "" && srv.Source != config.SourceStatic) {
		m.statusMsg, m.statusErr = "Name and URL are required", true
		return
	}
	if _, exists := m.cfg.Servers[name]; exists {
		m.statusMsg, m.statusErr = fmt.Sprintf("Server %q already exists", name), true
		return
	}
	if err := srv.WithDefaults().Validate(); err != nil {
		m.statusMsg, m.statusErr = err.Error(), true
		return
	}
	if m.cfg.Servers == nil {
		m.cfg.Servers = map[string]config.ServerConfig{}
	}
	m.cfg.Servers[name] = srv
	if err := config.Save(m.cfg); err != nil {
		m.logger.Error("saving config failed", zap.Error(err))
	}
	m.statusMsg, m.statusErr = fmt.Sprintf("Server %q added", name), false
	m.table = m.buildTable()
}

func (m *loginModel) removeServer(name string) {
	delete(m.cfg.Servers, name)
	if m.current == name {
		m.current = ""
		m.cfg.CurrentServer = ""
	}
	if err := config.Save(m.cfg); err != nil {
		m.logger.Error("saving config failed", zap.Error(err))
	}
	m.statusMsg, m.statusErr = fmt.Sprintf("Server %q removed", name), false
	m.table = m.buildTable()
}

func (m *loginModel) clearAddForm() {
	for i := range m.addInputs {
		m.addInputs[i].Reset()
		m.addInputs[i].Blur()
	}
	m.addFocus = 0
}

func (m loginModel) view() string {
	title := StyleTitle.Render("pbadm · Sign in")
	sub := StyleSubtitle.Render("Choose a server to manage")

	if m.mode == loginAdding {
		labels := []string{"Name:", "URL:", "Source:"}
		lines := []string{title, "", StyleTitle.Render("Add Server"), ""}
		for i, inp := range m.addInputs {
			label := fmt.Sprintf("  %-10s", labels[i])
			if i == m.addFocus {
				lines = append(lines, StyleWarning.Render(label)+inp.View())
			} else {
				lines = append(lines, StyleDim.Render(label)+inp.View())
			}
		}
		lines = append(lines, "", renderHelp("[Enter] next/save   [Esc] cancel"))
		return strings.Join(lines, "\n")
	}

	lines := []string{title, sub, "", m.table.View(), ""}

	if m.mode == loginConfirmDel {
		row := m.table.SelectedRow()
		name := ""
		if len(row) > 0 {
			name = row[0]
		}
		lines = append(lines, StyleWarning.Render(
			fmt.Sprintf("Remove server %q? [Enter] confirm   [Esc] cancel", name),
		))
		return strings.Join(lines, "\n")
	}

	switch {
	case m.connecting:
		lines = append(lines, StyleWarning.Render(m.spinner.View()+" Connecting..."))
	case m.connectErr != "":
		lines = append(lines, StyleError.Render("Error: "+m.connectErr))
	default:
		lines = append(lines, renderStatus(m.statusMsg, m.statusErr))
	}
	lines = append(lines, renderHelp("[Enter] sign in   [s] offline demo  |  [a] add   [d] remove"))
	lines = append(lines, renderHelp("[Q] quit"))
	return strings.Join(lines, "\n")
}

// connectToServer builds a client for srv, verifies the server answers, makes
// it the default and emits loggedInMsg. Static profiles skip the network.
func connectToServer(cfg *config.Config, name string, srv config.ServerConfig, logger *zap.Logger) tea.Cmd {
	return func() tea.Msg {
		if err := srv.Validate(); err != nil {
			return connectErrMsg{fmt.Errorf("%s: %w", name, err)}
		}
		loc, err := locale.Parse(srv.Locale)
		if err != nil {
			return connectErrMsg{fmt.Errorf("%s: %w", name, err)}
		}

		var c *client.Client
		if srv.Source == config.SourceRemote {
			c, err = client.New(&srv, client.WithLogger(logger))
			if err != nil {
				return connectErrMsg{fmt.Errorf("%s: %w", name, err)}
			}
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := c.Ping(ctx); err != nil {
				logger.Warn("login ping failed", zap.String("server", name), zap.Error(err))
				return connectErrMsg{fmt.Errorf("connecting to %q: %w", name, err)}
			}
		}

		set, err := source.For(&srv, c)
		if err != nil {
			return connectErrMsg{err}
		}
		if _, configured := cfg.Servers[name]; configured {
			cfg.CurrentServer = name
			if err := config.Save(cfg); err != nil {
				logger.Error("saving config failed", zap.Error(err))
			}
		}
		logger.Info("signed in", zap.String("server", name), zap.String("source", srv.Source))
		return loggedInMsg{name: name, srv: srv, loc: loc, set: set}
	}
}
