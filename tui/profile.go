package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/chupakbra/pbadm/internal/errors"
	"github.com/chupakbra/pbadm/internal/profile"
)

// Profile form inputs: [0]=name [1]=email [2]=current [3]=new [4]=confirm.
const (
	profileName = iota
	profileEmail
	profileCurrent
	profileNew
	profileConfirm
	profileInputs
)

var profileLabels = [profileInputs]string{"Name:", "Email:", "Current password:", "New password:", "Confirm password:"}

type profileModel struct {
	account *profile.Account
	inputs  [profileInputs]textinput.Model
	focus   int
	editing bool

	statusMsg string
	statusErr bool

	width  int
	height int
}

func newProfileModel(account *profile.Account, w, h int) profileModel {
	var inputs [profileInputs]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 100
		if i >= profileCurrent {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		inputs[i] = ti
	}
	m := profileModel{account: account, inputs: inputs, width: w, height: h}
	m.resetInfo()
	return m
}

func (m *profileModel) resetInfo() {
	info := m.account.Info()
	m.inputs[profileName].SetValue(info.Name)
	m.inputs[profileEmail].SetValue(info.Email)
}

func (m *profileModel) resetPassword() {
	for i := profileCurrent; i < profileInputs; i++ {
		m.inputs[i].Reset()
	}
}

func (m *profileModel) focusInput() tea.Cmd {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.inputs[m.focus].Focus()
	return textinput.Blink
}

func (m profileModel) isNormalMode() bool { return !m.editing }

func (m profileModel) update(msg tea.Msg) (profileModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if !m.editing {
		switch key.String() {
		case "e":
			m.focus = profileName
		case "p":
			m.focus = profileCurrent
		default:
			return m, nil
		}
		m.editing = true
		m.statusMsg = ""
		cmd := m.focusInput()
		return m, cmd
	}

	switch key.String() {
	case "esc":
		m.editing = false
		m.resetInfo()
		m.resetPassword()
		m.focusNone()
		return m, nil
	case "tab", "down":
		m.focus = (m.focus + 1) % profileInputs
		cmd := m.focusInput()
		return m, cmd
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + profileInputs) % profileInputs
		cmd := m.focusInput()
		return m, cmd
	case "enter":
		if m.focus < profileCurrent {
			m.submitInfo()
		} else {
			m.submitPassword()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *profileModel) focusNone() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *profileModel) submitInfo() {
	err := m.account.UpdateInfo(profile.Info{
		Name:  m.inputs[profileName].Value(),
		Email: m.inputs[profileEmail].Value(),
	})
	if err != nil {
		m.statusMsg, m.statusErr = "Error: "+err.Error(), true
		return
	}
	m.resetInfo()
	m.editing = false
	m.focusNone()
	m.statusMsg, m.statusErr = "Profile updated", false
}

func (m *profileModel) submitPassword() {
	m.account.SetPassword(profile.PasswordForm{
		Current: m.inputs[profileCurrent].Value(),
		New:     m.inputs[profileNew].Value(),
		Confirm: m.inputs[profileConfirm].Value(),
	})
	if err := m.account.ChangePassword(); err != nil {
		m.statusMsg, m.statusErr = "Error: "+apperrors.Handle("", err).Error(), true
		return
	}
	m.resetPassword()
	m.editing = false
	m.focusNone()
	m.statusMsg, m.statusErr = "Password changed", false
}

func (m profileModel) view() string {
	if m.width == 0 {
		return ""
	}
	info := m.account.Info()
	lines := []string{
		StyleTitle.Render("Profile"),
		"",
		StyleSubtitle.Render("Account"),
		fmt.Sprintf("  %-18s%s", "Role:", info.Role),
	}
	for i := range m.inputs {
		if i == profileCurrent {
			lines = append(lines, "", StyleSubtitle.Render("Change Password"))
		}
		label := fmt.Sprintf("  %-18s", profileLabels[i])
		if m.editing && i == m.focus {
			lines = append(lines, StyleWarning.Render(label)+m.inputs[i].View())
		} else {
			lines = append(lines, StyleDim.Render(label)+m.inputs[i].View())
		}
	}
	lines = append(lines, "", renderStatus(m.statusMsg, m.statusErr))
	if m.editing {
		lines = append(lines, renderHelp("[Tab] next field   [Enter] save section   [Esc] cancel"))
	} else {
		lines = append(lines, renderHelp("[e] edit account   [p] change password"))
	}
	return strings.Join(lines, "\n")
}
