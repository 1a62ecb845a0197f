package tui

import (
	"fmt"
	"strings"

	"github.com/chupakbra/pbadm/internal/nav"
)

const sidebarWidth = 22

// renderSidebar draws the page list with the current page highlighted.
func renderSidebar(state nav.State, height int) string {
	lines := []string{StyleTitle.Render("pbadm"), StyleDim.Render(state.Server()), ""}
	for i, p := range nav.Pages {
		label := fmt.Sprintf(" %d  %s", i+1, p.Title())
		if p == state.Page() {
			lines = append(lines, StyleNavSelected.Width(sidebarWidth-3).Render(label))
		} else {
			lines = append(lines, StyleNavItem.Render(label))
		}
	}
	lines = append(lines, "", renderHelp("[Tab] next page"), renderHelp("[L] log out"), renderHelp("[Q] quit"))
	style := StyleSidebar
	if height > 2 {
		style = style.Height(height - 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}
