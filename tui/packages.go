package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/chupakbra/pbadm/internal/collection"
	apperrors "github.com/chupakbra/pbadm/internal/errors"
	"github.com/chupakbra/pbadm/internal/locale"
	"github.com/chupakbra/pbadm/internal/model"
	"github.com/chupakbra/pbadm/internal/source"
)

type planSession = collection.EditSession[model.SubscriptionPlan, *model.PlanDraft]

// Scalar form fields, in focus order.
var planFormKeys = [5]string{
	model.FieldPlanName,
	model.FieldDescription,
	model.FieldPrice,
	model.FieldBillingCycle,
	model.FieldIsActive,
}

var planFormLabels = [5]string{"Name:", "Description:", "Price:", "Billing cycle:", "Active:"}

type packagesModel struct {
	list    *collection.ListModel[model.SubscriptionPlan]
	edit    *planSession
	gate    collection.Gate
	table   table.Model
	spinner spinner.Model
	filter  searchBar
	rows    []model.SubscriptionPlan

	// Edit form. features[i] mirrors the draft's feature i.
	fields   [5]textinput.Model
	features []textinput.Model
	focus    int
	saving   bool

	statusMsg     string
	statusErr     bool
	lastRefreshed time.Time

	width  int
	height int
}

func newPackagesModel(src collection.Source[model.SubscriptionPlan], loc locale.Locale, logger *zap.Logger, w, h int) packagesModel {
	list := collection.NewListModel(src, model.PlanSearchFields, collection.ListOptions{
		Name:     "packages",
		PageSize: 10,
		Locale:   loc,
		Logger:   logger,
	})
	var fields [5]textinput.Model
	for i := range fields {
		ti := textinput.New()
		ti.CharLimit = 256
		fields[i] = ti
	}
	fields[2].Placeholder = "e.g. 24.99"
	fields[3].Placeholder = "monthly or yearly"
	fields[4].Placeholder = "true or false"
	return packagesModel{
		list:    list,
		filter:  newSearchBar("package name"),
		edit:    collection.NewEditSession(list, model.NewPlanDraft),
		spinner: newSpinner(),
		fields:  fields,
		width:   w,
		height:  h,
	}
}

func (m packagesModel) init() tea.Cmd {
	return tea.Batch(loadCmd(m.list.BeginLoad(1)), m.spinner.Tick)
}

func (m packagesModel) isNormalMode() bool {
	_, pending := m.gate.Pending()
	return !pending && !m.filter.active && !m.edit.Open()
}

func (m *packagesModel) clearFilter() {
	m.filter.clear()
	m.list.SetQuery("")
}

func priceLabel(p model.SubscriptionPlan) string {
	unit := "mo"
	if p.BillingCycle == model.Yearly {
		unit = "yr"
	}
	return "$" + p.Price.StringFixed(2) + "/" + unit
}

func (m packagesModel) withRebuiltTable() packagesModel {
	nameWidth := max(m.width-(14+10+9+9+8), 15)
	cols := []table.Column{
		{Title: "NAME", Width: nameWidth},
		{Title: "PRICE", Width: 14},
		{Title: "CYCLE", Width: 10},
		{Title: "STATUS", Width: 9},
		{Title: "FEATURES", Width: 9},
	}
	m.rows = m.list.Filtered()
	rows := make([]table.Row, len(m.rows))
	for i, p := range m.rows {
		name := p.PlanName
		if p.PlanName == source.PopularPlan {
			name += " ★"
		}
		status := "inactive"
		if p.IsActive {
			status = "active"
		}
		rows[i] = table.Row{name, priceLabel(p), string(p.BillingCycle), status, strconv.Itoa(len(p.Features))}
	}
	cursor := m.table.Cursor()
	m.table = newTable(cols, rows, m.height-20)
	if cursor > 0 && cursor < len(rows) {
		m.table.SetCursor(cursor)
	}
	return m
}

func (m packagesModel) selected() (model.SubscriptionPlan, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return model.SubscriptionPlan{}, false
	}
	return m.rows[i], true
}

// openForm fills the form from the open draft.
func (m *packagesModel) openForm() tea.Cmd {
	d := m.edit.Draft()
	values := [5]string{d.PlanName, d.Description, d.Price.String(), string(d.BillingCycle), strconv.FormatBool(d.IsActive)}
	for i := range m.fields {
		m.fields[i].SetValue(values[i])
		m.fields[i].Blur()
	}
	m.features = make([]textinput.Model, 0, len(d.Features))
	for _, f := range d.Features {
		m.features = append(m.features, newFeatureInput(f))
	}
	m.focus = 0
	m.saving = false
	m.statusMsg = ""
	return m.focusInput()
}

func newFeatureInput(v string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Feature"
	ti.CharLimit = 120
	ti.SetValue(v)
	return ti
}

func (m *packagesModel) input(i int) *textinput.Model {
	if i < len(m.fields) {
		return &m.fields[i]
	}
	return &m.features[i-len(m.fields)]
}

func (m *packagesModel) focusInput() tea.Cmd {
	for i := 0; i < len(m.fields)+len(m.features); i++ {
		m.input(i).Blur()
	}
	m.input(m.focus).Focus()
	return textinput.Blink
}

// syncDraft copies the form into the draft.
func (m *packagesModel) syncDraft() error {
	d := m.edit.Draft()
	for i, key := range planFormKeys {
		if err := d.Set(key, m.fields[i].Value()); err != nil {
			return err
		}
	}
	for i, in := range m.features {
		if err := d.UpdateFeature(i, in.Value()); err != nil {
			return err
		}
	}
	return nil
}

func (m packagesModel) loadPage(page int) (packagesModel, tea.Cmd) {
	return m, tea.Batch(loadCmd(m.list.BeginLoad(page)), m.spinner.Tick)
}

func (m packagesModel) update(msg tea.Msg) (packagesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg[model.SubscriptionPlan]:
		if !m.list.Apply(msg.res) {
			return m, nil
		}
		m.lastRefreshed = time.Now()
		return m.withRebuiltTable(), nil

	case committedMsg[model.SubscriptionPlan]:
		reload, ok, err := m.edit.ApplyCommit(msg.res)
		if err != nil {
			m.saving = false
			m.statusMsg = "Error: " + apperrors.Handle("", err).Error()
			m.statusErr = true
			return m, nil
		}
		if !ok {
			return m, nil
		}
		m.saving = false
		m.statusMsg = "Package saved"
		m.statusErr = false
		return m, tea.Batch(loadCmd(reload), m.spinner.Tick)

	case mutatedMsg[model.SubscriptionPlan]:
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
		return m.withRebuiltTable(), nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.list.Loading() || m.saving {
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.edit.Open() {
			return m.updateForm(msg)
		}

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

		if _, ok := m.gate.Pending(); ok {
			switch msg.String() {
			case "enter":
				var cmd tea.Cmd
				m.gate.ConfirmWith(func(a collection.PendingAction) {
					p, found := m.list.Get(a.TargetID)
					if !found {
						return
					}
					req := m.list.BeginMutation(collection.Mutation[model.SubscriptionPlan]{ID: p.ID, Delete: true})
					cmd = mutateCmd(req, fmt.Sprintf("Package %q deleted", p.PlanName))
				})
				return m, cmd
			case "esc":
				m.gate.Cancel()
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
		case "enter", "e":
			p, ok := m.selected()
			if !ok {
				return m, nil
			}
			m.edit.Begin(p)
			cmd := m.openForm()
			return m, cmd
		case "a":
			if _, ok := m.list.Source().(collection.Creator[model.SubscriptionPlan]); !ok {
				m.statusMsg = "Adding packages is not supported by this server"
				m.statusErr = true
				return m, nil
			}
			m.edit.BeginNew(source.NewPlan())
			cmd := m.openForm()
			return m, cmd
		case "d":
			p, ok := m.selected()
			if !ok {
				return m, nil
			}
			m.gate.Request(collection.ActionDelete, p.ID)
			m.statusMsg = ""
			return m, nil
		case "t":
			p, ok := m.selected()
			if !ok {
				return m, nil
			}
			active := !p.IsActive
			req := m.list.BeginMutation(collection.Mutation[model.SubscriptionPlan]{
				ID:    p.ID,
				Patch: map[string]any{model.FieldIsActive: active},
				Local: func(p model.SubscriptionPlan) (model.SubscriptionPlan, bool) {
					p.IsActive = active
					return p, true
				},
			})
			verb := "deactivated"
			if active {
				verb = "activated"
			}
			return m, mutateCmd(req, fmt.Sprintf("Package %q %s", p.PlanName, verb))
		case "l":
			m.list.SetLocale(m.list.Locale().Next())
			m.statusMsg = "Language: " + m.list.Locale().String()
			m.statusErr = false
			return m.loadPage(1)
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
		case "ctrl+r":
			return m.loadPage(m.list.Page())
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m packagesModel) updateForm(msg tea.KeyMsg) (packagesModel, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	total := len(m.fields) + len(m.features)

	switch msg.String() {
	case "esc":
		m.edit.Cancel()
		m.statusMsg = ""
		return m, nil
	case "tab", "down":
		m.focus = (m.focus + 1) % total
		cmd := m.focusInput()
		return m, cmd
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + total) % total
		cmd := m.focusInput()
		return m, cmd
	case "ctrl+n":
		if err := m.syncDraft(); err != nil {
			m.statusMsg, m.statusErr = err.Error(), true
			return m, nil
		}
		m.edit.Draft().AddFeature()
		m.features = append(m.features, newFeatureInput(""))
		m.focus = len(m.fields) + len(m.features) - 1
		cmd := m.focusInput()
		return m, cmd
	case "ctrl+x":
		i := m.focus - len(m.fields)
		if i < 0 {
			return m, nil
		}
		if err := m.syncDraft(); err != nil {
			m.statusMsg, m.statusErr = err.Error(), true
			return m, nil
		}
		if err := m.edit.Draft().RemoveFeature(i); err != nil {
			m.statusMsg, m.statusErr = err.Error(), true
			return m, nil
		}
		m.features = append(m.features[:i], m.features[i+1:]...)
		m.focus = min(m.focus, len(m.fields)+len(m.features)-1)
		cmd := m.focusInput()
		return m, cmd
	case "ctrl+s":
		if err := m.syncDraft(); err != nil {
			m.statusMsg, m.statusErr = err.Error(), true
			return m, nil
		}
		req, err := m.edit.BeginCommit()
		if err != nil {
			if errors.Is(err, collection.ErrNoSession) {
				return m, nil
			}
			m.statusMsg, m.statusErr = err.Error(), true
			return m, nil
		}
		m.saving = true
		m.statusMsg = ""
		return m, tea.Batch(commitCmd(req), m.spinner.Tick)
	}

	var cmd tea.Cmd
	in := m.input(m.focus)
	*in, cmd = in.Update(msg)
	return m, cmd
}

func (m packagesModel) view() string {
	if m.width == 0 {
		return ""
	}
	title := StyleTitle.Render("Packages")
	if m.edit.Open() {
		return m.formView(title)
	}
	if m.list.Loading() && len(m.rows) == 0 {
		return title + "\n\n" + StyleWarning.Render(m.spinner.View()+" Loading...")
	}

	meta := StyleDim.Render(fmt.Sprintf(" (page %d of %d, %s)", m.list.Page(), m.list.TotalPages(), m.list.Locale()))
	lines := []string{headerLine(title+meta, m.width, m.lastRefreshed), ""}

	switch {
	case m.list.Err() != nil:
		lines = append(lines, StyleDim.Render("No packages to show. The server could not be reached; press ctrl+r to retry."))
	case len(m.rows) == 0:
		lines = append(lines, StyleDim.Render("No packages found."))
	default:
		lines = append(lines, m.table.View())
		if p, ok := m.selected(); ok {
			lines = append(lines, "", m.detailView(p))
		}
	}
	if fl := m.filter.renderLine(); fl != "" {
		lines = append(lines, fl)
	}

	if pending, ok := m.gate.Pending(); ok {
		name := pending.TargetID
		if p, found := m.list.Get(pending.TargetID); found {
			name = p.PlanName
		}
		lines = append(lines, "", StyleWarning.Render(
			fmt.Sprintf("Delete package %q? [Enter] confirm   [Esc] cancel", name),
		))
		return strings.Join(lines, "\n")
	}

	if m.list.Loading() {
		lines = append(lines, StyleWarning.Render(m.spinner.View()+" Loading..."))
	} else {
		lines = append(lines, renderStatus(m.statusMsg, m.statusErr))
	}
	lines = append(lines, renderHelp("[e] edit   [a] add   [d] delete   [t] activate/deactivate   [l] language"))
	lines = append(lines, renderHelp("[/] filter  |  [←/→] page  |  [ctrl+r] refresh"))
	return strings.Join(lines, "\n")
}

func (m packagesModel) detailView(p model.SubscriptionPlan) string {
	head := StyleTitle.Render(p.PlanName) + "  " + priceLabel(p)
	if p.PlanName == source.PopularPlan {
		head += "  " + StylePopular.Render("Popular")
	}
	lines := []string{head}
	if p.Description != "" {
		lines = append(lines, StyleSubtitle.Render(p.Description))
	}
	for _, f := range p.Features {
		lines = append(lines, "  ✓ "+f)
	}
	return strings.Join(lines, "\n")
}

func (m packagesModel) formView(title string) string {
	heading := "Edit Package"
	if m.edit.Creating() {
		heading = "Add Package"
	}
	lines := []string{title, "", StyleTitle.Render(heading), ""}
	for i, in := range m.fields {
		label := fmt.Sprintf("  %-15s", planFormLabels[i])
		if i == m.focus {
			lines = append(lines, StyleWarning.Render(label)+in.View())
		} else {
			lines = append(lines, StyleDim.Render(label)+in.View())
		}
	}
	lines = append(lines, "", StyleSubtitle.Render("  Features"))
	if len(m.features) == 0 {
		lines = append(lines, StyleDim.Render("  none; press ctrl+n to add one"))
	}
	for i, in := range m.features {
		label := fmt.Sprintf("  %2d. ", i+1)
		if len(m.fields)+i == m.focus {
			lines = append(lines, StyleWarning.Render(label)+in.View())
		} else {
			lines = append(lines, StyleDim.Render(label)+in.View())
		}
	}
	lines = append(lines, "")
	if m.saving {
		lines = append(lines, StyleWarning.Render(m.spinner.View()+" Saving..."))
	} else {
		lines = append(lines, renderStatus(m.statusMsg, m.statusErr))
	}
	lines = append(lines, renderHelp("[Tab] next field   [ctrl+n] add feature   [ctrl+x] remove feature"))
	lines = append(lines, renderHelp("[ctrl+s] save   [Esc] cancel"))
	return strings.Join(lines, "\n")
}
