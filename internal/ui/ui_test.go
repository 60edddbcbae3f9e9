package ui

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/session"
	"github.com/desertthunder/songbook/internal/shared"
	th "github.com/desertthunder/songbook/internal/testing"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func newTestModel(t *testing.T, store session.Store) (*Model, *catalog.Engine) {
	t.Helper()
	clock := th.NewClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger := shared.NewLogger(io.Discard)
	sm := session.NewManager(store, session.WithClock(clock.Now), session.WithLogger(logger))
	engine := catalog.NewEngine(catalog.NewLibrary(th.Songs()))

	m := NewModel(context.Background(), sm, engine, logger)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 60})
	return m, engine
}

// send feeds msg to the model, discarding any command (cursor blinks and the like).
func send(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	m.Update(msg)
}

// run feeds msg to the model, runs the returned command and feeds back the [Msg] it produces.
func run(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatalf("expected a command for %v", msg)
	}
	out, ok := cmd().(Msg)
	if !ok {
		t.Fatalf("expected a Msg from the command for %v", msg)
	}
	m.Update(out)
}

func login(t *testing.T, m *Model, username, password string) {
	t.Helper()
	send(t, m, runes(username))
	send(t, m, enter)
	send(t, m, runes(password))
	run(t, m, enter)
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials open the library", func(t *testing.T) {
		store := &th.MemoryStore{}
		m, _ := newTestModel(t, store)

		login(t, m, "admin", "admin123")

		if m.view != LibraryView {
			t.Fatalf("expected LibraryView, got %v", m.view)
		}
		if m.user == nil || m.user.Username != "admin" {
			t.Errorf("expected admin user, got %+v", m.user)
		}
		if !store.Stored {
			t.Error("expected token to be persisted")
		}
		if out := m.View(); !strings.Contains(out, "Welcome, admin") || !strings.Contains(out, "Showing 5 of 5 songs") {
			t.Errorf("unexpected library view:\n%s", out)
		}
	})

	t.Run("invalid credentials stay on the form", func(t *testing.T) {
		store := &th.MemoryStore{}
		m, _ := newTestModel(t, store)

		login(t, m, "admin", "wrong")

		if m.view != LoginView {
			t.Fatalf("expected LoginView, got %v", m.view)
		}
		if !strings.Contains(m.View(), "Invalid credentials") {
			t.Errorf("expected error message in view:\n%s", m.View())
		}
		if store.Stored {
			t.Error("expected nothing persisted")
		}
	})

	t.Run("q is typed into the form instead of quitting", func(t *testing.T) {
		m, _ := newTestModel(t, &th.MemoryStore{})
		send(t, m, runes("q"))
		if m.view != LoginView {
			t.Fatalf("expected LoginView, got %v", m.view)
		}
		if got := m.login.Value(loginUsername); got != "q" {
			t.Errorf("expected username q, got %q", got)
		}
	})
}

func TestInitRestoresSession(t *testing.T) {
	store := &th.MemoryStore{}
	m, _ := newTestModel(t, store)
	login(t, m, "user", "user123")

	restored, _ := newTestModel(t, store)
	if out, ok := restored.Init()().(Msg); ok {
		restored.Update(out)
	}

	if restored.view != LibraryView || restored.user == nil || restored.user.Username != "user" {
		t.Errorf("expected restored user session, got view %v user %+v", restored.view, restored.user)
	}

	t.Run("without a stored token", func(t *testing.T) {
		fresh, _ := newTestModel(t, &th.MemoryStore{})
		if out, ok := fresh.Init()().(Msg); ok {
			fresh.Update(out)
		}
		if fresh.view != LoginView {
			t.Errorf("expected LoginView, got %v", fresh.view)
		}
	})
}

func TestLibraryControls(t *testing.T) {
	m, engine := newTestModel(t, &th.MemoryStore{})
	login(t, m, "user", "user123")

	t.Run("sort cycles fields", func(t *testing.T) {
		send(t, m, runes("s"))
		if got := engine.View().SortBy; got != catalog.FieldArtist {
			t.Errorf("expected artist, got %s", got)
		}
		first := m.songList.Items()[0].(songItem).song
		if first.Artist != "Leonard Cohen" {
			t.Errorf("expected Leonard Cohen first, got %+v", first)
		}
	})

	t.Run("order toggles", func(t *testing.T) {
		send(t, m, runes("o"))
		if engine.View().Order != catalog.Descending {
			t.Errorf("expected desc")
		}
		first := m.songList.Items()[0].(songItem).song
		if first.Artist != "Unsigned" {
			t.Errorf("expected Unsigned first, got %+v", first)
		}
	})

	t.Run("group adds header rows", func(t *testing.T) {
		send(t, m, runes("g"))
		if engine.View().GroupBy != catalog.GroupKey(catalog.FieldArtist) {
			t.Fatalf("expected artist grouping, got %s", engine.View().GroupBy)
		}
		items := m.songList.Items()
		if len(items) != 8 {
			t.Fatalf("expected 3 headers and 5 songs, got %d rows", len(items))
		}
		header, ok := items[0].(groupItem)
		if !ok || header.group.Label != "Unsigned" {
			t.Errorf("expected Unsigned header first, got %#v", items[0])
		}
		if !strings.Contains(m.View(), "Group: Artist") {
			t.Errorf("status line missing grouping")
		}
	})

	t.Run("filters apply while typing and esc restores them", func(t *testing.T) {
		send(t, m, runes("/"))
		if m.view != FilterView {
			t.Fatalf("expected FilterView, got %v", m.view)
		}
		send(t, m, runes("LOVE"))
		if m.result.Shown != 1 {
			t.Errorf("expected 1 match while typing, got %d", m.result.Shown)
		}

		send(t, m, esc)
		if m.view != LibraryView || m.result.Shown != 5 {
			t.Errorf("expected filters reverted, got view %v shown %d", m.view, m.result.Shown)
		}

		send(t, m, runes("/"))
		send(t, m, tea.KeyMsg{Type: tea.KeyTab})
		send(t, m, runes("cohen"))
		send(t, m, enter)
		if engine.View().Filters.Artist != "cohen" || m.result.Shown != 2 {
			t.Errorf("expected artist filter kept, got %+v shown %d", engine.View().Filters, m.result.Shown)
		}

		send(t, m, runes("c"))
		if m.result.Shown != 5 {
			t.Errorf("expected filters cleared, got %d", m.result.Shown)
		}
	})

	t.Run("mutations are refused for users", func(t *testing.T) {
		send(t, m, runes("a"))
		if m.view != LibraryView {
			t.Errorf("expected to stay on LibraryView, got %v", m.view)
		}
		if !strings.Contains(m.View(), shared.ErrForbidden.Error()) {
			t.Errorf("expected forbidden message:\n%s", m.View())
		}
		send(t, m, runes("d"))
		if m.view != LibraryView || engine.Library().Len() != 5 {
			t.Errorf("expected delete refused")
		}
	})

	t.Run("logout returns to login", func(t *testing.T) {
		run(t, m, runes("x"))
		if m.view != LoginView || m.user != nil {
			t.Errorf("expected logged out, got view %v", m.view)
		}
	})
}

func TestAdminMutations(t *testing.T) {
	m, engine := newTestModel(t, &th.MemoryStore{})
	login(t, m, "admin", "admin123")

	t.Run("add requires every field", func(t *testing.T) {
		send(t, m, runes("a"))
		if m.view != AddView {
			t.Fatalf("expected AddView, got %v", m.view)
		}
		send(t, m, runes("Suzanne"))
		send(t, m, enter)
		send(t, m, enter)
		send(t, m, enter)
		if m.view != AddView || m.err == nil {
			t.Fatalf("expected validation error, got view %v err %v", m.view, m.err)
		}
		if engine.Library().Len() != 5 {
			t.Errorf("expected no song added")
		}
	})

	t.Run("add appends with the next id", func(t *testing.T) {
		send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
		send(t, m, runes("Leonard Cohen"))
		send(t, m, tea.KeyMsg{Type: tea.KeyTab})
		send(t, m, runes("Songs of Leonard Cohen"))
		send(t, m, enter)

		if m.view != LibraryView {
			t.Fatalf("expected LibraryView, got %v (err %v)", m.view, m.err)
		}
		song, ok := engine.Library().Get(6)
		if !ok || song.Title != "Suzanne" || song.Album != "Songs of Leonard Cohen" {
			t.Errorf("unexpected added song %+v", song)
		}
		if !strings.Contains(m.View(), "Showing 6 of 6 songs") {
			t.Errorf("expected updated count:\n%s", m.View())
		}
	})

	t.Run("delete asks for confirmation", func(t *testing.T) {
		target, ok := m.selectedSong()
		if !ok {
			t.Fatal("expected a selected song")
		}

		send(t, m, runes("d"))
		if m.view != ConfirmDeleteView {
			t.Fatalf("expected ConfirmDeleteView, got %v", m.view)
		}
		send(t, m, runes("n"))
		if _, ok := engine.Library().Get(target.ID); !ok {
			t.Fatal("expected song kept after declining")
		}

		send(t, m, runes("d"))
		send(t, m, runes("y"))
		if _, ok := engine.Library().Get(target.ID); ok {
			t.Errorf("expected song %d deleted", target.ID)
		}
		if m.result.Total != 5 {
			t.Errorf("expected 5 songs, got %d", m.result.Total)
		}
	})

	t.Run("delete on a group header does nothing", func(t *testing.T) {
		send(t, m, runes("g"))
		if _, ok := m.songList.SelectedItem().(groupItem); !ok {
			m.songList.Select(0)
		}
		send(t, m, runes("d"))
		if m.view != LibraryView {
			t.Errorf("expected to stay on LibraryView, got %v", m.view)
		}
	})
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, &th.MemoryStore{})
	login(t, m, "user", "user123")

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
