package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	StyleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	StyleSubtitle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	StyleHelp     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	StyleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	StyleSuccess  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	StyleWarning  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	StyleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	StyleActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	StyleBlocked  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	StyleSpinner  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	StylePopular  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220")).Bold(true).Padding(0, 1)

	StyleCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2).
			MarginRight(1)

	StyleSidebar = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2, 1, 1).
			Width(sidebarWidth)
	StyleNavItem     = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	StyleNavSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("62")).Bold(true)
)

// renderHelp renders a key-hint line.
func renderHelp(s string) string {
	return StyleHelp.Render(s)
}

// renderStatus renders a transient status line, keeping height stable when empty.
func renderStatus(msg string, isErr bool) string {
	switch {
	case msg == "":
		return ""
	case isErr:
		return StyleError.Render(msg)
	default:
		return StyleSuccess.Render(msg)
	}
}

// headerLine places left-aligned text and a right-aligned refreshed timestamp on the same line.
// width is the content width available to the page.
func headerLine(left string, width int, t time.Time) string {
	right := "Refreshed: " + formatRefreshTime(t)
	leftLen := lipgloss.Width(left)
	rightLen := len(right)
	gap := width - leftLen - rightLen
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + StyleDim.Render(right)
}

func formatRefreshTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("15:04:05")
}

// newTable builds a focused table with the shared header and selection styles.
func newTable(cols []table.Column, rows []table.Row, height int) table.Model {
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("236")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// card renders a stat card.
func card(label, value string) string {
	return StyleCard.Render(StyleDim.Render(label) + "\n" + StyleTitle.Render(value))
}

// CLISpinner matches the braille spinner used in the CLI output.
var CLISpinner = spinner.Spinner{
	Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	FPS:    time.Second / 10,
}

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = CLISpinner
	s.Style = StyleSpinner
	return s
}
