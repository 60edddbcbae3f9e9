package catalog

import (
	"net/url"
)

// Filters holds one substring per field. Empty means no filtering on that field.
type Filters struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// Get returns the filter for f.
func (fs Filters) Get(f Field) string {
	switch f {
	case FieldTitle:
		return fs.Title
	case FieldArtist:
		return fs.Artist
	case FieldAlbum:
		return fs.Album
	}
	return ""
}

// View is the full set of controls applied by [Derive].
type View struct {
	Filters Filters  `json:"filters"`
	SortBy  Field    `json:"sort"`
	Order   Order    `json:"order"`
	GroupBy GroupKey `json:"group"`
}

// DefaultView sorts by title ascending with no filters and no grouping.
func DefaultView() View {
	return View{SortBy: FieldTitle, Order: Ascending, GroupBy: GroupNone}
}

// SetFilter stores the literal substring for field.
func (v *View) SetFilter(field Field, substring string) error {
	switch field {
	case FieldTitle:
		v.Filters.Title = substring
	case FieldArtist:
		v.Filters.Artist = substring
	case FieldAlbum:
		v.Filters.Album = substring
	default:
		return ErrInvalidField
	}
	return nil
}

// SetSort sets the sort key and direction.
func (v *View) SetSort(key Field, order Order) error {
	if _, err := ParseField(string(key)); err != nil {
		return err
	}
	if order != Ascending && order != Descending {
		return ErrInvalidOrder
	}
	v.SortBy, v.Order = key, order
	return nil
}

// ToggleOrder flips the sort direction.
func (v *View) ToggleOrder() { v.Order = v.Order.Toggle() }

// SetGroup sets the group key.
func (v *View) SetGroup(key GroupKey) error {
	if _, err := ParseGroup(string(key)); err != nil {
		return err
	}
	v.GroupBy = key
	return nil
}

// ParseView reads title, artist, album, sort, order and group from q.
// Unknown or invalid values keep their defaults.
func ParseView(q url.Values) View {
	v := DefaultView()
	v.Filters = Filters{Title: q.Get("title"), Artist: q.Get("artist"), Album: q.Get("album")}

	if f, err := ParseField(q.Get("sort")); err == nil {
		v.SortBy = f
	}
	if o, err := ParseOrder(q.Get("order")); err == nil {
		v.Order = o
	}
	if g, err := ParseGroup(q.Get("group")); err == nil {
		v.GroupBy = g
	}
	return v
}

// Query encodes v in the form accepted by [ParseView], omitting empty filters.
func (v View) Query() url.Values {
	q := url.Values{}
	for _, f := range Fields {
		if s := v.Filters.Get(f); s != "" {
			q.Set(string(f), s)
		}
	}
	q.Set("sort", string(v.SortBy))
	q.Set("order", string(v.Order))
	q.Set("group", string(v.GroupBy))
	return q
}
