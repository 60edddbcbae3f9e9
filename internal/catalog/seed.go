package catalog

import "github.com/desertthunder/songbook/internal/models"

// InitialSongs returns a fresh copy of the seed catalog.
func InitialSongs() []models.Song {
	return []models.Song{
		{ID: 1, Title: "Love Story", Artist: "Taylor Swift", Album: "Fearless"},
		{ID: 2, Title: "Blinding Lights", Artist: "The Weeknd", Album: "After Hours"},
		{ID: 3, Title: "Shape of You", Artist: "Ed Sheeran", Album: "Divide"},
		{ID: 4, Title: "Bohemian Rhapsody", Artist: "Queen", Album: "A Night at the Opera"},
		{ID: 5, Title: "Anti-Hero", Artist: "Taylor Swift", Album: "Midnights"},
		{ID: 6, Title: "Save Your Tears", Artist: "The Weeknd", Album: "After Hours"},
		{ID: 7, Title: "Perfect", Artist: "Ed Sheeran", Album: "Divide"},
		{ID: 8, Title: "Don't Stop Me Now", Artist: "Queen", Album: "Jazz"},
		{ID: 9, Title: "Rolling in the Deep", Artist: "Adele", Album: "21"},
		{ID: 10, Title: "Someone Like You", Artist: "Adele", Album: "21"},
		{ID: 11, Title: "Hotel California", Artist: "Eagles", Album: "Hotel California"},
		{ID: 12, Title: "Smells Like Teen Spirit", Artist: "Nirvana", Album: "Nevermind"},
	}
}
