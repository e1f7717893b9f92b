package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/idilsaglam/todotui/internal/api"
	"github.com/idilsaglam/todotui/internal/model"
	"github.com/idilsaglam/todotui/internal/store"
)

// stubClient serves a fixed collection and accepts every mutation.
type stubClient struct {
	todos []model.Todo
}

func (c *stubClient) UserID() int { return 7 }

func (c *stubClient) List(context.Context) ([]model.Todo, error) { return c.todos, nil }

func (c *stubClient) Create(_ context.Context, t model.Todo) (model.Todo, error) {
	t.ID = 100 + len(c.todos)
	return t, nil
}

func (c *stubClient) Update(context.Context, int, api.Patch) error { return nil }

func (c *stubClient) Delete(context.Context, int) error { return nil }

func newTestModel(t *testing.T, todos ...model.Todo) *Model {
	t.Helper()
	st := store.New(&stubClient{todos: todos}, store.Options{})
	if err := st.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	m := NewModel(st, zerolog.Nop())
	m.loading = false
	m.snap = st.Snapshot()
	return m
}

func TestRowsIncludePlaceholder(t *testing.T) {
	m := newTestModel(t, model.Todo{ID: 1, UserID: 7, Title: "Buy milk"})
	ph := model.Todo{ID: model.PlaceholderID, UserID: 7, Title: "in flight"}
	m.snap.Placeholder = &ph

	rows := m.rows()
	if len(rows) != 2 || rows[1].ID != model.PlaceholderID {
		t.Fatalf("rows = %v, want placeholder last", rows)
	}
}

func TestActionableRefusesPendingRow(t *testing.T) {
	m := newTestModel(t, model.Todo{ID: 1, UserID: 7, Title: "Buy milk"})
	m.snap.Pending = map[int]bool{1: true}
	if _, ok := m.actionable(); ok {
		t.Fatal("pending row must refuse interaction")
	}

	m.snap.Pending = map[int]bool{}
	if _, ok := m.actionable(); !ok {
		t.Fatal("settled row should be actionable")
	}
}

func TestViewShowsErrorBanner(t *testing.T) {
	m := newTestModel(t, model.Todo{ID: 1, UserID: 7, Title: "Buy milk"})
	m.snap.Err = store.MsgDeleteFailed
	if !strings.Contains(m.View(), store.MsgDeleteFailed) {
		t.Fatal("view missing error banner")
	}
}

func TestCursorClampsToVisibleRows(t *testing.T) {
	m := newTestModel(t,
		model.Todo{ID: 1, UserID: 7, Title: "Buy milk"},
		model.Todo{ID: 2, UserID: 7, Title: "Pay rent"},
	)
	m.cursor = 10
	m.clampCursor()
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}

	var tm tea.Model = m
	tm, _ = tm.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := tm.(*Model).cursor; got != 0 {
		t.Fatalf("cursor after up = %d, want 0", got)
	}
}

func TestFooterMarksActiveFilter(t *testing.T) {
	m := newTestModel(t, model.Todo{ID: 1, UserID: 7, Title: "Buy milk"})
	m.snap.Filter = model.FilterActive
	if !strings.Contains(m.footerView(), "[Active]") {
		t.Fatalf("footer = %q, want active filter marked", m.footerView())
	}
}
