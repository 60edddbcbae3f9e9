package catalog

import (
	"slices"
	"strings"

	"github.com/desertthunder/songbook/internal/models"
)

const (
	// AllSongsLabel names the single group produced by [GroupNone].
	AllSongsLabel = "All Songs"
	// UnknownLabel names the group of songs whose grouped field is empty.
	UnknownLabel = "Unknown"
)

// Group is a labeled run of songs in a [Result].
type Group struct {
	Label string        `json:"label"`
	Songs []models.Song `json:"songs"`
}

// Result is the derived view.
type Result struct {
	View   View    `json:"view"`
	Groups []Group `json:"groups"`
	Shown  int     `json:"shown"`
	Total  int     `json:"total"`
}

// Grouped reports whether the result was partitioned by a field.
func (r Result) Grouped() bool {
	_, ok := r.View.GroupBy.Field()
	return ok
}

// Derive filters, sorts and groups songs according to v. songs is not modified.
func Derive(songs []models.Song, v View) Result {
	sorted := Sort(Filter(songs, v.Filters), v.SortBy, v.Order)
	return Result{
		View:   v,
		Groups: GroupBy(sorted, v.GroupBy),
		Shown:  len(sorted),
		Total:  len(songs),
	}
}

// Filter returns the songs matching every filter, in their original order.
func Filter(songs []models.Song, fs Filters) []models.Song {
	title := strings.ToLower(fs.Title)
	artist := strings.ToLower(fs.Artist)
	album := strings.ToLower(fs.Album)

	out := make([]models.Song, 0, len(songs))
	for _, s := range songs {
		if strings.Contains(strings.ToLower(s.Title), title) &&
			strings.Contains(strings.ToLower(s.Artist), artist) &&
			strings.Contains(strings.ToLower(s.Album), album) {
			out = append(out, s)
		}
	}
	return out
}

// Sort returns a stably sorted copy of songs ordered by the lowercased value of key.
func Sort(songs []models.Song, key Field, order Order) []models.Song {
	out := slices.Clone(songs)
	slices.SortStableFunc(out, func(a, b models.Song) int {
		c := strings.Compare(strings.ToLower(key.Value(a)), strings.ToLower(key.Value(b)))
		if order == Descending {
			return -c
		}
		return c
	})
	return out
}

// GroupBy partitions sorted songs. Group order is first-seen; songs keep their order within a group.
func GroupBy(sorted []models.Song, key GroupKey) []Group {
	field, ok := key.Field()
	if !ok {
		return []Group{{Label: AllSongsLabel, Songs: sorted}}
	}

	var groups []Group
	index := make(map[string]int)
	for _, s := range sorted {
		label := field.Value(s)
		if label == "" {
			label = UnknownLabel
		}

		i, seen := index[label]
		if !seen {
			i = len(groups)
			index[label] = i
			groups = append(groups, Group{Label: label})
		}
		groups[i].Songs = append(groups[i].Songs, s)
	}
	return groups
}
