package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// searchBar is the "/" search line of a collection screen. Its value is the
// list model's query; the screen copies it over whenever handleKey reports a
// change. Esc/Enter close the bar and keep the query applied, Ctrl+U clears.
type searchBar struct {
	input  textinput.Model
	active bool
}

func newSearchBar(placeholder string) searchBar {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 64
	return searchBar{input: ti}
}

// open focuses the bar.
func (b searchBar) open() (searchBar, tea.Cmd) {
	b.active = true
	cmd := b.input.Focus()
	return b, cmd
}

// handleKey feeds a key to the focused bar and reports whether the query
// changed. The returned command belongs to the text input (cursor blink) and
// must be passed back to the runtime.
func (b searchBar) handleKey(msg tea.KeyMsg) (searchBar, bool, tea.Cmd) {
	before := b.input.Value()
	var cmd tea.Cmd
	switch msg.String() {
	case "esc", "enter":
		b.active = false
		b.input.Blur()
		return b, false, nil
	case "ctrl+u":
		b.input.Reset()
	default:
		b.input, cmd = b.input.Update(msg)
	}
	return b, b.input.Value() != before, cmd
}

func (b searchBar) query() string { return b.input.Value() }

// hasActiveFilter reports whether a query is applied.
func (b searchBar) hasActiveFilter() bool { return b.input.Value() != "" }

func (b *searchBar) clear() {
	b.active = false
	b.input.Blur()
	b.input.Reset()
}

// renderLine returns the search status line, or "" when there is nothing to show.
func (b searchBar) renderLine() string {
	switch {
	case b.active:
		return renderHelp("[/] Search: ") + b.input.View() + renderHelp("  [Ctrl+U] clear  [Esc] close")
	case b.hasActiveFilter():
		return renderHelp("[/] Search: ") + StyleWarning.Render(b.query()) + renderHelp("  [Ctrl+U] clear")
	}
	return ""
}
