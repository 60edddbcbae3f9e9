package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/models"
)

var (
	_ list.Item = groupItem{}
	_ list.Item = songItem{}
)

// groupItem is a header row introducing a [catalog.Group].
type groupItem struct {
	group catalog.Group
}

func (i groupItem) FilterValue() string { return i.group.Label }
func (i groupItem) Title() string       { return "▸ " + i.group.Label }
func (i groupItem) Description() string {
	if len(i.group.Songs) == 1 {
		return "1 song"
	}
	return fmt.Sprintf("%d songs", len(i.group.Songs))
}

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song models.Song
}

func (i songItem) FilterValue() string { return i.song.Title }
func (i songItem) Title() string       { return i.song.Title }
func (i songItem) Description() string {
	desc := i.song.Artist
	if i.song.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.song.Album)
	}
	return desc
}

// resultItems flattens res into list rows, with a header before each group when grouped.
func resultItems(res catalog.Result) []list.Item {
	items := make([]list.Item, 0, res.Shown+len(res.Groups))
	for _, g := range res.Groups {
		if res.Grouped() {
			items = append(items, groupItem{group: g})
		}
		for _, s := range g.Songs {
			items = append(items, songItem{song: s})
		}
	}
	return items
}
