package catalog

import (
	"slices"

	"github.com/desertthunder/songbook/internal/models"
)

// Library is an ordered in-memory song list.
type Library struct {
	songs []models.Song
}

// NewLibrary copies songs into a new library.
func NewLibrary(songs []models.Song) *Library {
	return &Library{songs: slices.Clone(songs)}
}

// NewSeededLibrary returns a library holding [InitialSongs].
func NewSeededLibrary() *Library {
	return &Library{songs: InitialSongs()}
}

// Songs returns a copy of the list in insertion order.
func (l *Library) Songs() []models.Song {
	return slices.Clone(l.songs)
}

func (l *Library) Len() int { return len(l.songs) }

// Get looks up a song by id.
func (l *Library) Get(id int) (models.Song, bool) {
	i := slices.IndexFunc(l.songs, func(s models.Song) bool { return s.ID == id })
	if i < 0 {
		return models.Song{}, false
	}
	return l.songs[i], true
}

// Add appends a song with id one greater than the current maximum, or 1 when empty.
func (l *Library) Add(in models.SongInput) models.Song {
	id := 1
	for _, s := range l.songs {
		if s.ID >= id {
			id = s.ID + 1
		}
	}

	song := models.Song{ID: id, Title: in.Title, Artist: in.Artist, Album: in.Album}
	l.songs = append(l.songs, song)
	return song
}

// Delete removes the song with id and reports whether one was found.
func (l *Library) Delete(id int) bool {
	n := len(l.songs)
	l.songs = slices.DeleteFunc(l.songs, func(s models.Song) bool { return s.ID == id })
	return len(l.songs) != n
}

// Unique returns the distinct non-empty values of field in first-seen order.
func (l *Library) Unique(field Field) []string {
	return Unique(l.songs, field)
}

// Unique returns the distinct non-empty values of field across songs in first-seen order.
func Unique(songs []models.Song, field Field) []string {
	seen := make(map[string]bool)
	values := []string{}
	for _, s := range songs {
		v := field.Value(s)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values
}
