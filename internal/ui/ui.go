package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/session"
	"github.com/desertthunder/songbook/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	LibraryView
	FilterView
	AddView
	ConfirmDeleteView
)

const (
	loginUsername = iota
	loginPassword
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	session  *session.Manager
	engine   *catalog.Engine
	logger   *log.Logger
	width    int
	height   int
	user     *models.User
	songList list.Model
	result   catalog.Result
	login    form
	filters  form
	saved    catalog.Filters
	add      form
	pending  *models.Song
	err      error
	notice   string
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
//
// A nil engine is replaced by one over the seeded catalog.
func NewModel(ctx context.Context, sm *session.Manager, engine *catalog.Engine, logger *log.Logger) *Model {
	if engine == nil {
		engine = catalog.NewEngine(nil)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	songs := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	songs.Title = "Music Library"
	songs.SetShowHelp(false)
	songs.SetShowStatusBar(false)
	songs.SetFilteringEnabled(false)
	songs.KeyMap.Quit.SetEnabled(false)

	filterFields := make([]field, len(catalog.Fields))
	for i, f := range catalog.Fields {
		filterFields[i] = field{label: f.Label(), placeholder: "Filter by " + string(f)}
	}

	m := &Model{
		ctx:      ctx,
		view:     LoginView,
		session:  sm,
		engine:   engine,
		logger:   logger,
		songList: songs,
		login: newForm(
			field{label: "Username", placeholder: "admin or user"},
			field{label: "Password", placeholder: "password", secret: true},
		),
		filters: newForm(filterFields...),
		add: newForm(
			field{label: "Title", placeholder: "Song title"},
			field{label: "Artist", placeholder: "Artist"},
			field{label: "Album", placeholder: "Album"},
		),
		help: help.New(),
		keys: newKeyMap(),
	}
	m.login.Focus(loginUsername)
	return m
}

// Init restores any stored session.
func (m *Model) Init() tea.Cmd {
	return m.restoreSession()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.songList.SetSize(max(msg.Width-4, 0), max(msg.Height-10, 0))
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LoginView:
			return m.handleLoginKeys(msg)
		case LibraryView:
			return m.handleLibraryKeys(msg)
		case FilterView:
			return m.handleFilterKeys(msg)
		case AddView:
			return m.handleAddKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSessionRestored:
		s, _ := msg.data.(*models.Session)
		if s == nil {
			return m, nil
		}
		user := s.User
		m.logger.Info("restored session", "username", user.Username, "role", user.Role)
		m.enterLibrary(&user)
		return m, nil

	case MsgLoginFinished:
		res := msg.data.(loginResult)
		if res.err != nil {
			if errors.Is(res.err, shared.ErrInvalidCredentials) {
				m.err = errors.New(shared.InvalidCredentialsMessage)
			} else {
				m.err = res.err
			}
			m.logger.Warn("login failed", "error", res.err)
			return m, nil
		}
		m.logger.Info("logged in", "username", res.user.Username, "role", res.user.Role)
		m.enterLibrary(res.user)
		return m, nil

	case MsgLoggedOut:
		if err, _ := msg.data.(error); err != nil {
			m.logger.Error("logout failed", "error", err)
			m.err = err
		}
		m.user = nil
		m.notice = ""
		m.view = LoginView
		return m, m.login.Reset()
	}
	return m, nil
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.force):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if !m.login.Last() {
			return m, m.login.Next()
		}
		m.err = nil
		return m, m.submitLogin(m.login.Value(loginUsername), m.login.Value(loginPassword))
	case key.Matches(msg, m.keys.next):
		return m, m.login.Next()
	case key.Matches(msg, m.keys.prev):
		return m, m.login.Prev()
	}
	return m, m.login.Update(msg)
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	admin := m.user != nil && m.user.IsAdmin()
	m.notice = ""
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.sort):
		v := m.engine.View()
		m.setSort(nextField(v.SortBy), v.Order)
		return m, nil
	case key.Matches(msg, m.keys.order):
		m.engine.ToggleOrder()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.group):
		m.setGroup(m.engine.View().GroupBy.Next())
		return m, nil
	case key.Matches(msg, m.keys.filter):
		m.view = FilterView
		m.saved = m.engine.View().Filters
		for i, f := range catalog.Fields {
			m.filters.SetValue(i, m.saved.Get(f))
		}
		return m, m.filters.Focus(0)
	case key.Matches(msg, m.keys.clear):
		m.applyFilters(catalog.Filters{})
		return m, nil
	case key.Matches(msg, m.keys.add):
		if !admin {
			m.err = shared.ErrForbidden
			return m, nil
		}
		m.view = AddView
		return m, m.add.Reset()
	case key.Matches(msg, m.keys.remove):
		if !admin {
			m.err = shared.ErrForbidden
			return m, nil
		}
		if song, ok := m.selectedSong(); ok {
			m.pending = &song
			m.view = ConfirmDeleteView
		}
		return m, nil
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.force):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.applyFilters(m.saved)
		m.view = LibraryView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.view = LibraryView
		return m, nil
	case key.Matches(msg, m.keys.next):
		return m, m.filters.Next()
	case key.Matches(msg, m.keys.prev):
		return m, m.filters.Prev()
	}

	cmd := m.filters.Update(msg)
	m.applyFilters(m.filterValues())
	return m, cmd
}

func (m *Model) handleAddKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.force):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.err = nil
		m.view = LibraryView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if !m.add.Last() {
			return m, m.add.Next()
		}
		in := models.SongInput{
			Title:  strings.TrimSpace(m.add.Value(0)),
			Artist: strings.TrimSpace(m.add.Value(1)),
			Album:  strings.TrimSpace(m.add.Value(2)),
		}
		if err := in.Validate(); err != nil {
			m.err = err
			return m, nil
		}
		song := m.engine.AddSong(in)
		m.logger.Info("added song", "id", song.ID, "title", song.Title)
		m.err = nil
		m.notice = fmt.Sprintf("Added %q", song.Title)
		m.view = LibraryView
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.next):
		return m, m.add.Next()
	case key.Matches(msg, m.keys.prev):
		return m, m.add.Prev()
	}
	return m, m.add.Update(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.force):
		return m, tea.Quit
	case key.Matches(msg, m.keys.yes):
		if m.pending != nil && m.engine.DeleteSong(m.pending.ID) {
			m.logger.Info("deleted song", "id", m.pending.ID, "title", m.pending.Title)
			m.notice = fmt.Sprintf("Deleted %q", m.pending.Title)
		}
		m.pending = nil
		m.view = LibraryView
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.no):
		m.pending = nil
		m.view = LibraryView
		return m, nil
	}
	return m, nil
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case LoginView:
		cmd = m.login.Update(msg)
	case LibraryView:
		m.songList, cmd = m.songList.Update(msg)
	case FilterView:
		cmd = m.filters.Update(msg)
	case AddView:
		cmd = m.add.Update(msg)
	}
	return m, cmd
}

func (m *Model) restoreSession() tea.Cmd {
	return func() tea.Msg {
		return sessionRestoredMsg(m.session.RestoreSession())
	}
}

func (m *Model) submitLogin(username, password string) tea.Cmd {
	return func() tea.Msg {
		user, _, err := m.session.IssueToken(strings.TrimSpace(username), password)
		return loginFinishedMsg(user, err)
	}
}

func (m *Model) logout() tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg(m.session.Logout())
	}
}

func (m *Model) enterLibrary(user *models.User) {
	m.user = user
	m.err = nil
	m.view = LibraryView
	m.songList.Title = fmt.Sprintf("Music Library (%s)", user.Role.Label())
	m.refresh()
}

// refresh re-derives the visible rows from the engine.
func (m *Model) refresh() {
	m.result = m.engine.DeriveView()
	m.songList.SetItems(resultItems(m.result))
}

func (m *Model) setSort(f catalog.Field, o catalog.Order) {
	if err := m.engine.SetSort(f, o); err != nil {
		m.err = err
		return
	}
	m.refresh()
}

func (m *Model) setGroup(g catalog.GroupKey) {
	if err := m.engine.SetGroup(g); err != nil {
		m.err = err
		return
	}
	m.refresh()
}

func (m *Model) applyFilters(fs catalog.Filters) {
	for _, f := range catalog.Fields {
		if err := m.engine.SetFilter(f, fs.Get(f)); err != nil {
			m.err = err
			return
		}
	}
	m.refresh()
}

func (m *Model) filterValues() catalog.Filters {
	return catalog.Filters{
		Title:  m.filters.Value(0),
		Artist: m.filters.Value(1),
		Album:  m.filters.Value(2),
	}
}

func (m *Model) selectedSong() (models.Song, bool) {
	item, ok := m.songList.SelectedItem().(songItem)
	if !ok {
		return models.Song{}, false
	}
	return item.song, true
}

// nextField cycles the sort key through [catalog.Fields].
func nextField(f catalog.Field) catalog.Field {
	for i, candidate := range catalog.Fields {
		if candidate == f {
			return catalog.Fields[(i+1)%len(catalog.Fields)]
		}
	}
	return catalog.FieldTitle
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoginView:
		return m.renderLogin()
	case LibraryView:
		return m.renderLibrary()
	case FilterView:
		return m.renderFilter()
	case AddView:
		return m.renderAdd()
	case ConfirmDeleteView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Music App"))
	b.WriteString("\n")
	b.WriteString(styles.help.Render("Login to access your music library"))
	b.WriteString("\n\n")
	b.WriteString(m.login.View())
	if m.err != nil {
		b.WriteString(styles.err.Render(m.err.Error()))
		b.WriteString("\n\n")
	}

	helpKeys := []key.Binding{m.keys.next, m.keys.enter, m.keys.force}
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderLibrary() string {
	var b strings.Builder
	if m.user != nil {
		b.WriteString(fmt.Sprintf("Welcome, %s %s\n\n", m.user.Username, styles.Badge(m.user.Role)))
	}
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")

	if m.result.Shown == 0 {
		b.WriteString(styles.warn.Render("No songs to display."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.songList.View())
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\nShowing %d of %d songs\n", m.result.Shown, m.result.Total))
	if m.notice != "" {
		b.WriteString(styles.ok.Render(m.notice))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(styles.err.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys.libraryKeys(m.user != nil && m.user.IsAdmin())))
	return b.String()
}

// renderStatus summarizes the active view state.
func (m *Model) renderStatus() string {
	v := m.engine.View()
	parts := []string{fmt.Sprintf("Sort: %s (%s)", v.SortBy.Label(), v.Order.Label())}

	if f, ok := v.GroupBy.Field(); ok {
		parts = append(parts, "Group: "+f.Label())
	} else {
		parts = append(parts, "Group: None")
	}

	var filters []string
	for _, f := range catalog.Fields {
		if s := v.Filters.Get(f); s != "" {
			filters = append(filters, fmt.Sprintf("%s=%q", f, s))
		}
	}
	if len(filters) > 0 {
		parts = append(parts, "Filters: "+strings.Join(filters, " "))
	}

	return styles.help.Render(strings.Join(parts, " • "))
}

func (m *Model) renderFilter() string {
	title := styles.title.Render("Filter Songs")
	preview := fmt.Sprintf("Showing %d of %d songs", m.result.Shown, m.result.Total)

	helpKeys := []key.Binding{m.keys.next, m.keys.enter, m.keys.back}
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, m.filters.View(), preview, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderAdd() string {
	title := styles.title.Render("Add Song")

	var errView string
	if m.err != nil {
		errView = styles.err.Render(m.err.Error()) + "\n\n"
	}

	helpKeys := []key.Binding{m.keys.next, m.keys.enter, m.keys.back}
	return fmt.Sprintf("%s\n%s%s%s", title, m.add.View(), errView, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	if m.pending == nil {
		return ""
	}
	title := styles.title.Render(fmt.Sprintf("Delete '%s'?", m.pending.Title))
	info := fmt.Sprintf("\nArtist: %s\nAlbum: %s\n", m.pending.Artist, m.pending.Album)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}
