// Package tui is an interactive bubbletea view over one checklist. Every
// action goes through the checklist store, addressing tasks by id.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/checklist/internal/checklist"
	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/ui"
)

// row adapts a task to bubbles/list.Item.
type row struct {
	model.Item
}

func (r row) Title() string       { return r.Message }
func (r row) Description() string { return "" }
func (r row) FilterValue() string { return r.Message }

// delegate renders single-line rows.
type delegate struct{}

func (d delegate) Height() int                         { return 1 }
func (d delegate) Spacing() int                        { return 0 }
func (d delegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(row)
	if !ok {
		return
	}
	th := ui.Current()
	box := th.Muted.Render(th.BoxUnchecked)
	text := r.Message
	if r.Done {
		box = th.Success.Render(th.BoxChecked)
		text = th.Done.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = th.Selected.Render("> ")
	}
	fmt.Fprint(w, prefix+box+" "+text)
}

type mode int

const (
	browsing mode = iota
	adding
	editing
)

var (
	addKey    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editKey   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	toggleKey = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteKey = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	undoKey   = key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo"))
	quitKey   = key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit"))
)

// Model is the bubbletea model for one checklist.
type Model struct {
	ctx   context.Context
	store *checklist.Store
	slug  string

	list   list.Model
	input  textinput.Model
	mode   mode
	editID string
	status string // last error or confirmation, shown under the list

	undo *model.Item // last deleted task
}

// New builds the model for the list at slug.
func New(ctx context.Context, store *checklist.Store, slug string) (Model, error) {
	if _, ok := store.GetListBySlug(slug); !ok {
		return Model{}, &model.NotFoundError{Kind: "list", Key: slug}
	}
	l := list.New(nil, delegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("task", "tasks")
	l.Styles.Title = ui.Current().Title
	l.FilterInput.Prompt = "/ "
	bindings := func() []key.Binding {
		return []key.Binding{addKey, editKey, toggleKey, deleteKey, undoKey}
	}
	l.AdditionalShortHelpKeys = bindings
	l.AdditionalFullHelpKeys = bindings

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = model.MaxMessageLen

	m := Model{ctx: ctx, store: store, slug: slug, list: l, input: ti}
	m.refresh("")
	return m, nil
}

// Run starts the interactive program and blocks until the user quits.
func Run(ctx context.Context, store *checklist.Store, slug string) error {
	m, err := New(ctx, store, slug)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// refresh rebuilds rows from the store, keeping the cursor on selectID when
// it is still present.
func (m *Model) refresh(selectID string) {
	l, ok := m.store.GetListBySlug(m.slug)
	if !ok {
		m.list.SetItems(nil)
		m.status = "list was deleted"
		return
	}
	rows := make([]list.Item, len(l.Items))
	sel := -1
	for i, it := range l.Items {
		rows[i] = row{Item: it}
		if it.ID == selectID {
			sel = i
		}
	}
	m.list.SetItems(rows)
	if sel >= 0 {
		m.list.Select(sel)
	}
	done, pending := l.Stats()
	m.list.Title = ui.Header(l.Title, done, pending)
}

func (m Model) selected() (row, bool) {
	r, ok := m.list.SelectedItem().(row)
	return r, ok
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.list.SetSize(ws.Width-4, ws.Height-6)
		return m, nil
	}
	if m.mode != browsing {
		return m.updateInput(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok || m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(km, quitKey):
		return m, tea.Quit
	case key.Matches(km, toggleKey):
		if r, ok := m.selected(); ok {
			m.apply(m.store.ToggleTask(m.ctx, m.slug, r.ID), r.ID)
		}
		return m, nil
	case key.Matches(km, deleteKey):
		if r, ok := m.selected(); ok {
			it := r.Item
			if err := m.store.DeleteTask(m.ctx, m.slug, r.ID); err == nil {
				m.undo = &it
			}
			m.refresh("")
		}
		return m, nil
	case key.Matches(km, undoKey):
		m.restore()
		return m, nil
	case key.Matches(km, addKey):
		m.mode = adding
		m.status = ""
		m.input.SetValue("")
		m.input.Placeholder = "New task..."
		return m, m.input.Focus()
	case key.Matches(km, editKey):
		if r, ok := m.selected(); ok {
			m.mode = editing
			m.editID = r.ID
			m.status = ""
			m.input.SetValue(r.Message)
			m.input.CursorEnd()
			m.input.Placeholder = "Edit task..."
			return m, m.input.Focus()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc":
			m.leaveInput()
			return m, nil
		case "enter":
			var err error
			selectID := m.editID
			if m.mode == adding {
				var it model.Item
				it, err = m.store.AddTaskToList(m.ctx, m.slug, m.input.Value())
				selectID = it.ID
			} else {
				err = m.store.EditTask(m.ctx, m.slug, m.editID, m.input.Value())
			}
			if err != nil {
				m.status = describe(err)
				return m, nil // stay in input mode for correction
			}
			m.leaveInput()
			m.refresh(selectID)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) leaveInput() {
	m.mode = browsing
	m.editID = ""
	m.input.SetValue("")
	m.input.Blur()
}

// restore re-adds the last deleted task. It gets a new id and timestamp.
func (m *Model) restore() {
	if m.undo == nil {
		return
	}
	it := *m.undo
	added, err := m.store.AddTaskToList(m.ctx, m.slug, it.Message)
	if err != nil {
		m.status = describe(err)
		return
	}
	m.undo = nil
	if it.Done {
		err = m.store.ToggleTask(m.ctx, m.slug, added.ID)
	}
	m.apply(err, added.ID)
}

func (m *Model) apply(err error, selectID string) {
	if err != nil {
		m.status = describe(err)
	}
	m.refresh(selectID)
}

func describe(err error) string {
	switch {
	case errors.Is(err, model.ErrEmpty):
		return "Task cannot be empty"
	case errors.Is(err, model.ErrTooLong):
		return fmt.Sprintf("Task is longer than %d characters", model.MaxMessageLen)
	case errors.Is(err, model.ErrDuplicate):
		return "That task is already in the list"
	}
	return err.Error()
}

// View implements tea.Model.
func (m Model) View() string {
	th := ui.Current()
	content := m.list.View()
	if m.mode != browsing {
		title := "Add task"
		if m.mode == editing {
			title = "Edit task"
		}
		if m.status != "" {
			title += "  " + th.Error.Render(m.status)
		}
		bar := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(th.BorderColor).Padding(0, 1)
		content += "\n" + bar.Render(title+"\n"+m.input.View())
	} else if m.status != "" {
		content += "\n" + th.Error.Render(m.status)
	}
	return ui.PanelString(strings.Split(content, "\n"))
}
