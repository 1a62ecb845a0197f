// Package nav tracks the login gate and the selected sidebar page.
package nav

import "fmt"

// Page is a sidebar destination.
type Page string

const (
	Dashboard   Page = "dashboard"
	Users       Page = "users"
	Subscribers Page = "subscribers"
	Packages    Page = "packages"
	Profile     Page = "profile"
)

// Pages lists sidebar entries in display order.
var Pages = []Page{Dashboard, Users, Subscribers, Packages, Profile}

// Title is the sidebar label for p.
func (p Page) Title() string {
	switch p {
	case Dashboard:
		return "Dashboard"
	case Users:
		return "Users"
	case Subscribers:
		return "Subscribers"
	case Packages:
		return "Packages"
	case Profile:
		return "Profile"
	}
	return string(p)
}

// ParsePage resolves a page name.
func ParsePage(s string) (Page, error) {
	for _, p := range Pages {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown page %q", s)
}

// State is the navigation state: unauthenticated, or authenticated on a page.
type State struct {
	authenticated bool
	page          Page
	server        string
}

// New returns a logged-out state.
func New() State { return State{page: Dashboard} }

func (s State) Authenticated() bool { return s.authenticated }
func (s State) Page() Page          { return s.page }
func (s State) Server() string      { return s.server }

// Login enters the authenticated state on the dashboard.
func (s State) Login(server string) State {
	return State{authenticated: true, page: Dashboard, server: server}
}

// Logout returns to the login gate and resets the page.
func (s State) Logout() State { return New() }

// Navigate selects p. It has no effect while logged out.
func (s State) Navigate(p Page) State {
	if !s.authenticated {
		return s
	}
	s.page = p
	return s
}

// Next moves to the following sidebar entry, wrapping at the end.
func (s State) Next() State { return s.Navigate(s.offset(1)) }

// Prev moves to the preceding sidebar entry, wrapping at the start.
func (s State) Prev() State { return s.Navigate(s.offset(-1)) }

func (s State) offset(d int) Page {
	i := 0
	for j, p := range Pages {
		if p == s.page {
			i = j
		}
	}
	n := len(Pages)
	return Pages[((i+d)%n+n)%n]
}
