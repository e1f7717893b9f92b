// Package tui renders the store in the terminal. All it does is draw
// snapshots and translate keys into store actions; every state change comes
// back through the subscription channel.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/idilsaglam/todotui/internal/api"
	"github.com/idilsaglam/todotui/internal/model"
	"github.com/idilsaglam/todotui/internal/store"
)

// snapshotMsg carries a store change into the Bubble Tea loop.
type snapshotMsg store.Snapshot

// actionDoneMsg reports a settled store action so it can be logged.
type actionDoneMsg struct {
	op  string
	err error
}

type keymap struct {
	Up, Down       key.Binding
	Add, Edit      key.Binding
	Toggle, Delete key.Binding
	Filter         key.Binding
	ToggleAll      key.Binding
	Clear          key.Binding
	Reload         key.Binding
	Quit           key.Binding
}

func defaultKeymap() keymap {
	return keymap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Filter:    key.NewBinding(key.WithKeys("f", "tab"), key.WithHelp("f", "filter")),
		ToggleAll: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle all")),
		Clear:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear done")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model is the Bubble Tea model over the store.
type Model struct {
	store *store.Store
	log   zerolog.Logger
	keys  keymap

	snap    store.Snapshot
	changes chan store.Snapshot
	unsub   func()

	cursor  int
	loading bool

	// Inline add and edit share one text input.
	adding  bool
	editing bool
	editID  int

	ti   textinput.Model
	spin spinner.Model

	width, height int
}

// NewModel wires a model to st. The subscription stays alive until the
// program exits.
func NewModel(st *store.Store, logger zerolog.Logger) *Model {
	m := &Model{
		store:   st,
		log:     logger,
		keys:    defaultKeymap(),
		changes: make(chan store.Snapshot, 64),
		snap:    st.Snapshot(),
		loading: true,
	}
	m.unsub = st.Subscribe(func(s store.Snapshot) {
		// drop the oldest rather than block a store mutation
		for {
			select {
			case m.changes <- s:
				return
			default:
				select {
				case <-m.changes:
				default:
				}
			}
		}
	})

	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.Placeholder = "New todo title..."
	m.ti.CharLimit = 200

	m.spin = spinner.New()
	m.spin.Spinner = spinner.MiniDot
	m.spin.Style = pendingStyle
	return m
}

// Run starts the program and blocks until quit.
func Run(st *store.Store, logger zerolog.Logger) error {
	p := tea.NewProgram(NewModel(st, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg { return snapshotMsg(<-m.changes) }
}

// action runs a store call off the UI loop and reports its settlement.
func (m *Model) action(op string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{op: op, err: fn(context.Background())}
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		m.action("load", m.store.Load),
		m.waitForChange(),
	)
}

// rows is what the list shows: the filtered collection plus the in-flight
// placeholder at the bottom.
func (m *Model) rows() []model.Todo {
	rows := m.snap.Visible
	if m.snap.Placeholder != nil {
		rows = append(rows, *m.snap.Placeholder)
	}
	return rows
}

func (m *Model) clampCursor() {
	if n := len(m.rows()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selected() (model.Todo, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return model.Todo{}, false
	}
	return rows[m.cursor], true
}

// actionable reports whether the selected row may be mutated: placeholders
// and rows with an in-flight operation refuse interaction.
func (m *Model) actionable() (model.Todo, bool) {
	t, ok := m.selected()
	if !ok || !t.Persisted() || m.snap.Pending[t.ID] {
		return model.Todo{}, false
	}
	return t, true
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case snapshotMsg:
		m.snap = store.Snapshot(msg)
		m.clampCursor()
		return m, m.waitForChange()

	case actionDoneMsg:
		if msg.op == "load" {
			m.loading = false
		}
		if msg.err != nil {
			m.log.Error().Err(msg.err).Str("op", msg.op).Msg("action failed")
		} else {
			m.log.Debug().Str("op", msg.op).Msg("action settled")
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.adding || m.editing {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

// updateInput handles keys while the inline add/edit bar is focused.
func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := strings.TrimSpace(m.ti.Value())
		if title == "" {
			return m, nil
		}
		var cmd tea.Cmd
		if m.adding {
			cmd = m.action("add", func(ctx context.Context) error {
				return m.store.Add(ctx, title)
			})
		} else {
			id := m.editID
			cmd = m.action("edit", func(ctx context.Context) error {
				return m.store.Edit(ctx, id, api.Patch{Title: &title})
			})
		}
		m.closeInput()
		return m, cmd
	case "esc":
		m.closeInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.adding = false
	m.editing = false
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.unsub()
		return m, tea.Quit

	case msg.String() == "esc":
		if m.snap.Err != "" {
			return m, m.action("dismiss", func(context.Context) error {
				m.store.DismissError()
				return nil
			})
		}
		m.unsub()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
		return m, nil

	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.ti.Placeholder = "New todo title..."
		m.ti.SetValue("")
		m.ti.Focus()
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		t, ok := m.actionable()
		if !ok {
			return m, nil
		}
		m.editing = true
		m.editID = t.ID
		m.ti.Placeholder = "Edit todo title..."
		m.ti.SetValue(t.Title)
		m.ti.CursorEnd()
		m.ti.Focus()
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		t, ok := m.actionable()
		if !ok {
			return m, nil
		}
		done := !t.Completed
		return m, m.action("toggle", func(ctx context.Context) error {
			return m.store.Edit(ctx, t.ID, api.Patch{Completed: &done})
		})

	case key.Matches(msg, m.keys.Delete):
		t, ok := m.actionable()
		if !ok {
			return m, nil
		}
		return m, m.action("delete", func(ctx context.Context) error {
			return m.store.Remove(ctx, t.ID)
		})

	case key.Matches(msg, m.keys.Filter):
		next := m.snap.Filter.Next()
		return m, m.action("filter", func(context.Context) error {
			m.store.SetFilter(next)
			return nil
		})

	case key.Matches(msg, m.keys.ToggleAll):
		return m, m.action("toggle-all", m.store.ToggleAll)

	case key.Matches(msg, m.keys.Clear):
		if !m.snap.CanClearCompleted {
			return m, nil
		}
		return m, m.action("clear-completed", m.store.ClearCompleted)

	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		return m, m.action("load", m.store.Load)
	}
	return m, nil
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	if m.snap.Err != "" {
		b.WriteString(bannerStyle.Render("✖ "+m.snap.Err) + "\n\n")
	}

	b.WriteString(m.listView())
	b.WriteString("\n")

	if m.adding || m.editing {
		title := "Add new todo"
		if m.editing {
			title = "Edit todo"
		}
		b.WriteString(inputBarStyle.Render(title+"\n"+m.ti.View()) + "\n")
	}

	b.WriteString(m.footerView())
	return panelStyle.Render(b.String())
}

func (m *Model) headerView() string {
	toggleMark := mutedStyle.Render("◌")
	if m.snap.AllCompleted {
		toggleMark = successStyle.Render("◉")
	}
	return fmt.Sprintf("%s %s  %s %d  %s %d  %s %d",
		toggleMark,
		titleStyle.Render("Todos"),
		pendingStyle.Render("•"), m.snap.ActiveCount,
		successStyle.Render("✔"), m.snap.CompletedCount,
		accentStyle.Render("Total"), len(m.snap.Todos),
	)
}

func (m *Model) listView() string {
	rows := m.rows()
	if m.loading && len(rows) == 0 {
		return mutedStyle.Render(m.spin.View() + " loading...")
	}
	if len(rows) == 0 {
		return mutedStyle.Render("nothing to do")
	}

	lines := make([]string, 0, len(rows))
	for i, t := range rows {
		lines = append(lines, m.renderRow(i, t))
	}
	return strings.Join(lines, "\n")
}

// renderRow draws one single-line item: cursor, checkbox, title, and a
// spinner marker while an operation on the row is in flight.
func (m *Model) renderRow(index int, t model.Todo) string {
	box := mutedStyle.Render(boxUnchecked)
	title := t.Title
	if t.Completed {
		box = successStyle.Render(boxChecked)
		title = doneStyle.Render(title)
	}

	marker := " "
	if !t.Persisted() || m.snap.Pending[t.ID] {
		marker = m.spin.View()
		title = mutedStyle.Render(t.Title)
	}

	prefix := "  "
	if index == m.cursor {
		prefix = selectedStyle.Render("> ")
	}
	return fmt.Sprintf("%s%s %s %s", prefix, box, title, marker)
}

func (m *Model) footerView() string {
	if !m.snap.HasTodos && m.snap.Placeholder == nil {
		return helpStyle.Render("a add · r reload · q quit")
	}

	names := []string{"All", "Active", "Completed"}
	parts := make([]string, len(names))
	for i, n := range names {
		if model.StatusFilter(i) == m.snap.Filter {
			parts[i] = accentStyle.Render("[" + n + "]")
		} else {
			parts[i] = mutedStyle.Render(n)
		}
	}

	left := fmt.Sprintf("%d items left", m.snap.ActiveCount)
	if m.snap.ActiveCount == 1 {
		left = "1 item left"
	}

	line := left + "   " + strings.Join(parts, " ")
	if m.snap.CanClearCompleted {
		line += "   " + mutedStyle.Render("c clear completed")
	}

	help := helpStyle.Render("a add · e edit · space toggle · d delete · f filter · t toggle all · q quit")
	return line + "\n" + help
}
