package terminal

import (
	"context"
	"strings"

	"roster/internal/controller"
	"roster/internal/render"
	"roster/internal/service"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type focus int

const (
	focusTable focus = iota
	focusSearch
	focusForm
	focusConfirm
)

const helpLine = "↑/↓ move • a add • e edit • d delete • / search • s sort • S seed • C clear • q quit"

// tuiUI is the controller's view of the full-screen editor. Update copies
// its state into the widgets after every command.
type tuiUI struct {
	form     service.StudentForm
	label    string
	notices  []string
	table    render.Table
	approved bool
}

func (u *tuiUI) ReadForm() service.StudentForm { return u.form }

func (u *tuiUI) FillForm(form service.StudentForm) { u.form = form }

func (u *tuiUI) SetSubmitLabel(label string) { u.label = label }

func (u *tuiUI) Notify(message string) { u.notices = append(u.notices, message) }

func (u *tuiUI) Paint(t render.Table) { u.table = t }

// Confirm answers what the user already said at the prompt; the model asks
// before invoking the command.
func (u *tuiUI) Confirm(string) bool { return u.approved }

// Model is the bubbletea model of the roster editor.
type Model struct {
	ctx    context.Context
	ctrl   *controller.Controller
	ui     *tuiUI
	styles Styles

	table   table.Model
	search  textinput.Model
	inputs  []textinput.Model
	focused int
	focus   focus

	prompt  string
	pending func() error
	notice  string
}

var formLabels = []string{"Name", "Student ID", "Major", "GPA"}

// NewModel builds the editor and loads the roster. A corrupt roster is
// reported on screen; other load errors are returned.
func NewModel(ctx context.Context, store *service.RosterStore, opts ...controller.Option) (Model, error) {
	ui := &tuiUI{}
	m := Model{
		ctx:    ctx,
		ctrl:   controller.New(store, ui, opts...),
		ui:     ui,
		styles: DefaultStyles(),
		table: table.New(
			table.WithColumns([]table.Column{
				{Title: "#", Width: 4},
				{Title: "Name", Width: 28},
				{Title: "Student ID", Width: 14},
				{Title: "Major", Width: 22},
				{Title: "GPA", Width: 5},
			}),
			table.WithFocused(true),
			table.WithHeight(12),
		),
	}

	m.search = textinput.New()
	m.search.Prompt = "/ "
	m.search.Placeholder = "Search name, ID or major"
	m.search.CharLimit = 64

	for _, label := range formLabels {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = label
		// No limit: editing must not cut stored values.
		in.CharLimit = 0
		m.inputs = append(m.inputs, in)
	}

	if err := m.ctrl.Start(ctx); err != nil {
		return m, err
	}
	m.sync()
	m.takeNotice()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Controller exposes the underlying controller, mostly for tests.
func (m Model) Controller() *controller.Controller { return m.ctrl }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	if key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.focus {
	case focusConfirm:
		return m.updateConfirm(key)
	case focusSearch:
		return m.updateSearch(key)
	case focusForm:
		return m.updateForm(key)
	}
	return m.updateTable(key)
}

func (m Model) updateTable(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch key.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.focus = focusSearch
		m.table.Blur()
		return m, m.search.Focus()
	case "s":
		m.run(func() error {
			m.ctrl.SortBy(nextSort(m.ctrl.Sort()))
			return nil
		})
		return m, nil
	case "S":
		m.run(func() error { return m.ctrl.Seed(m.ctx) })
		return m, nil
	case "a":
		m.ctrl.ResetForm()
		m.sync()
		return m, m.focusForm()
	case "e", "enter":
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		m.ctrl.Edit(id)
		m.sync()
		if _, editing := m.ctrl.Mode().Editing(); !editing {
			return m, nil
		}
		return m, m.focusForm()
	case "d":
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		m.ask(m.ctrl.DeletePrompt(id), func() error { return m.ctrl.Delete(m.ctx, id) })
		return m, nil
	case "C":
		m.ask(controller.PromptClear, func() error { return m.ctrl.Clear(m.ctx) })
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(key)
	return m, cmd
}

func (m Model) updateSearch(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "enter", "esc":
		m.focus = focusTable
		m.search.Blur()
		m.table.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(key)
	if m.search.Value() != m.ctrl.Query() {
		m.run(func() error {
			m.ctrl.Search(m.search.Value())
			return nil
		})
	}
	return m, cmd
}

func (m Model) updateForm(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.ctrl.ResetForm()
		m.sync()
		m.blurForm()
		return m, nil
	case "tab", "down":
		return m, m.moveFocus(1)
	case "shift+tab", "up":
		return m, m.moveFocus(-1)
	case "enter":
		m.ui.form = m.readInputs()
		err := m.run(func() error { return m.ctrl.Submit(m.ctx) })
		if err == nil {
			m.blurForm()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(key)
	return m, cmd
}

func (m Model) updateConfirm(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	pending := m.pending
	m.prompt = ""
	m.pending = nil
	m.focus = focusTable
	m.table.Focus()

	if pending == nil {
		return m, nil
	}
	switch strings.ToLower(key.String()) {
	case "y", "enter":
		m.ui.approved = true
		m.run(pending)
		m.ui.approved = false
	}
	return m, nil
}

// run executes a controller command and refreshes the widgets from what it
// painted and notified.
func (m *Model) run(fn func() error) error {
	m.ui.notices = nil
	err := fn()
	m.sync()
	m.takeNotice()
	return err
}

func (m *Model) takeNotice() {
	if n := len(m.ui.notices); n > 0 {
		m.notice = m.ui.notices[n-1]
	}
	m.ui.notices = nil
}

func (m *Model) ask(prompt string, fn func() error) {
	m.prompt = prompt
	m.pending = fn
	m.focus = focusConfirm
	m.table.Blur()
}

func (m *Model) sync() {
	rows := make([]table.Row, 0, len(m.ui.table.Rows))
	for _, r := range m.ui.table.Rows {
		cells := rowCells(r)
		rows = append(rows, table.Row(cells[:5]))
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}

	form := m.ui.form
	for i, v := range []string{form.Name, form.Code, form.Major, form.GPA} {
		m.inputs[i].SetValue(v)
	}
}

func (m Model) readInputs() service.StudentForm {
	return service.StudentForm{
		Name:  m.inputs[0].Value(),
		Code:  m.inputs[1].Value(),
		Major: m.inputs[2].Value(),
		GPA:   m.inputs[3].Value(),
	}
}

func (m *Model) focusForm() tea.Cmd {
	m.focus = focusForm
	m.table.Blur()
	m.focused = 0
	return m.inputs[0].Focus()
}

func (m *Model) blurForm() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focus = focusTable
	m.table.Focus()
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	m.inputs[m.focused].Blur()
	m.focused = (m.focused + delta + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.focused].Focus()
}

func (m Model) selectedID() (string, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.ui.table.Rows) {
		return "", false
	}
	return m.ui.table.Rows[i].ID, true
}

func nextSort(current service.SortSpec) service.SortSpec {
	options := service.SortOptions()
	for i, opt := range options {
		if opt == current {
			return options[(i+1)%len(options)]
		}
	}
	return service.DefaultSort()
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Students"))
	sb.WriteString("  " + m.styles.Muted.Render("sort: "+m.ctrl.Sort().String()))
	sb.WriteString("\n\n")

	if m.focus == focusSearch || m.ctrl.Query() != "" {
		sb.WriteString(m.search.View() + "\n\n")
	}

	if m.ui.table.Empty {
		sb.WriteString(m.styles.Muted.Render(emptyMessage) + "\n")
	} else {
		sb.WriteString(m.table.View() + "\n")
	}
	sb.WriteString("\n")

	for i, in := range m.inputs {
		label := formLabels[i]
		style := m.styles.Body
		if m.focus == focusForm && i == m.focused {
			style = m.styles.Focus
		}
		sb.WriteString(style.Render(padRight(label, 11)) + " " + in.View() + "\n")
	}
	label := m.ui.label
	if m.focus == focusForm {
		label = "[enter] " + label + "  [esc] Reset"
	}
	sb.WriteString(m.styles.Header.Render(label) + "\n\n")

	if m.prompt != "" {
		sb.WriteString(m.styles.Prompt.Render(m.prompt+" [y/N]") + "\n")
	} else if m.notice != "" {
		sb.WriteString(m.styles.Notice.Render(m.notice) + "\n")
	}
	sb.WriteString(m.styles.Muted.Render(helpLine) + "\n")
	return sb.String()
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

// RunTUI runs the editor full-screen until the user quits.
func RunTUI(ctx context.Context, store *service.RosterStore, opts ...controller.Option) error {
	m, err := NewModel(ctx, store, opts...)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
