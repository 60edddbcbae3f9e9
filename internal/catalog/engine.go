package catalog

import "github.com/desertthunder/songbook/internal/models"

// Engine pairs a [Library] with the [View] applied to it.
type Engine struct {
	library *Library
	view    View
}

// NewEngine starts from lib with [DefaultView]. A nil lib is replaced by a seeded one.
func NewEngine(lib *Library) *Engine {
	if lib == nil {
		lib = NewSeededLibrary()
	}
	return &Engine{library: lib, view: DefaultView()}
}

func (e *Engine) Library() *Library { return e.library }
func (e *Engine) View() View        { return e.view }
func (e *Engine) Songs() []models.Song {
	return e.library.Songs()
}

func (e *Engine) SetView(v View) { e.view = v }

func (e *Engine) SetFilter(field Field, substring string) error {
	return e.view.SetFilter(field, substring)
}

func (e *Engine) SetSort(key Field, order Order) error {
	return e.view.SetSort(key, order)
}

func (e *Engine) ToggleOrder() { e.view.ToggleOrder() }

func (e *Engine) SetGroup(key GroupKey) error {
	return e.view.SetGroup(key)
}

// DeriveView recomputes the result from the current list and view.
func (e *Engine) DeriveView() Result {
	return Derive(e.library.songs, e.view)
}

func (e *Engine) AddSong(in models.SongInput) models.Song {
	return e.library.Add(in)
}

func (e *Engine) DeleteSong(id int) bool {
	return e.library.Delete(id)
}
