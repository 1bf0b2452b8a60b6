package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/checklist/internal/checklist"
	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/persist"
	"github.com/idilsaglam/checklist/internal/store/kvstore"
)

func newStore(t *testing.T) *checklist.Store {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := checklist.New(persist.NewDual(kvstore.NewMemory(), nil, persist.WithLogger(log)), checklist.WithLogger(log))
	s.Load(context.Background())
	if _, err := s.CreateList(context.Background(), "Groceries"); err != nil {
		t.Fatalf("create: %v", err)
	}
	return s
}

func press(t *testing.T, m Model, keys ...tea.Msg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	space = tea.KeyMsg{Type: tea.KeySpace}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = press(t, m, runes(string(r)))
	}
	return m
}

func TestNewRequiresList(t *testing.T) {
	s := newStore(t)
	if _, err := New(context.Background(), s, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestAddToggleDeleteUndo(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	m, err := New(ctx, s, "groceries")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	m = press(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	m = press(t, m, runes("a"))
	if m.mode != adding {
		t.Fatal("expected add mode")
	}
	m = typeText(t, m, "Buy milk")
	m = press(t, m, enter)
	if m.mode != browsing {
		t.Fatalf("still in input mode, status %q", m.status)
	}
	l, _ := s.GetListBySlug("groceries")
	if len(l.Items) != 1 || l.Items[0].Message != "Buy milk" {
		t.Fatalf("items = %+v", l.Items)
	}

	m = press(t, m, space)
	l, _ = s.GetListBySlug("groceries")
	if !l.Items[0].Done {
		t.Fatal("space should toggle the selected task")
	}

	m = press(t, m, runes("d"))
	l, _ = s.GetListBySlug("groceries")
	if len(l.Items) != 0 {
		t.Fatal("d should delete the selected task")
	}

	m = press(t, m, runes("u"))
	l, _ = s.GetListBySlug("groceries")
	if len(l.Items) != 1 || !l.Items[0].Done || l.Items[0].Message != "Buy milk" {
		t.Fatalf("undo restored %+v", l.Items)
	}
	if !strings.Contains(m.View(), "Buy milk") {
		t.Fatal("view should show the task")
	}
}

func TestAddRejectsDuplicateAndStaysInInput(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, _ = s.AddTaskToList(ctx, "groceries", "Eggs")
	m, _ := New(ctx, s, "groceries")

	m = press(t, m, runes("a"))
	m = typeText(t, m, "Eggs")
	m = press(t, m, enter)
	if m.mode != adding || m.status == "" {
		t.Fatalf("mode=%v status=%q", m.mode, m.status)
	}
	m = press(t, m, esc)
	if m.mode != browsing {
		t.Fatal("esc should leave input mode")
	}
}

func TestEditSelectedTask(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, _ = s.AddTaskToList(ctx, "groceries", "Eggs")
	m, _ := New(ctx, s, "groceries")

	m = press(t, m, runes("e"))
	if m.mode != editing || m.input.Value() != "Eggs" {
		t.Fatalf("mode=%v value=%q", m.mode, m.input.Value())
	}
	m = typeText(t, m, " x12")
	m = press(t, m, enter)
	l, _ := s.GetListBySlug("groceries")
	if l.Items[0].Message != "Eggs x12" {
		t.Fatalf("message = %q", l.Items[0].Message)
	}
}

func TestQuit(t *testing.T) {
	s := newStore(t)
	m, _ := New(context.Background(), s, "groceries")
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}
}

// gatedLoad blocks every Load after the first until a token arrives on gate.
type gatedLoad struct {
	persist.Persistence
	gate chan struct{}
}

func (g *gatedLoad) Load(ctx context.Context) []model.CheckList {
	<-g.gate
	return g.Persistence.Load(ctx)
}

func waitPhase(t *testing.T, s *checklist.Store, want checklist.Phase) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Phase() != want {
		if time.Now().After(deadline) {
			t.Fatalf("store never reached phase %v", want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestUndoReportsFailedRestoreOfDoneFlag(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := &gatedLoad{
		Persistence: persist.NewDual(kvstore.NewMemory(), nil, persist.WithLogger(log)),
		gate:        make(chan struct{}, 1),
	}
	g.gate <- struct{}{}
	s := checklist.New(g, checklist.WithLogger(log))
	s.Load(ctx)
	if _, err := s.CreateList(ctx, "Groceries"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.AddTaskToList(ctx, "groceries", "Milk"); err != nil {
		t.Fatalf("add: %v", err)
	}

	m, err := New(ctx, s, "groceries")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	m = press(t, m, tea.WindowSizeMsg{Width: 80, Height: 24}, space, runes("d"))

	// once the task is re-added, start a reload so the follow-up toggle is refused
	var armed atomic.Bool
	armed.Store(true)
	cancel := s.Subscribe(func(checklist.Snapshot) {
		if armed.CompareAndSwap(true, false) {
			go s.Load(ctx)
			waitPhase(t, s, checklist.Loading)
		}
	})
	defer cancel()

	m = press(t, m, runes("u"))
	if !strings.Contains(m.status, "loading") {
		t.Fatalf("status = %q, want the toggle failure", m.status)
	}
	if m.undo != nil {
		t.Fatal("undo should be consumed once the task is back")
	}

	g.gate <- struct{}{}
	waitPhase(t, s, checklist.Ready)
	l, _ := s.GetListBySlug("groceries")
	if len(l.Items) != 1 || l.Items[0].Done {
		t.Fatalf("items = %+v", l.Items)
	}
}
