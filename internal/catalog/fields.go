package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/songbook/internal/models"
)

var (
	ErrInvalidField = errors.New("invalid field")
	ErrInvalidOrder = errors.New("invalid sort order")
	ErrInvalidGroup = errors.New("invalid group key")
)

// Field names one of the three text attributes of a [models.Song].
type Field string

const (
	FieldTitle  Field = "title"
	FieldArtist Field = "artist"
	FieldAlbum  Field = "album"
)

// Fields lists every field in display order.
var Fields = []Field{FieldTitle, FieldArtist, FieldAlbum}

// ParseField accepts a field name case-insensitively.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FieldTitle, FieldArtist, FieldAlbum:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidField, s)
}

// Value returns the field's value on s.
func (f Field) Value(s models.Song) string {
	switch f {
	case FieldTitle:
		return s.Title
	case FieldArtist:
		return s.Artist
	case FieldAlbum:
		return s.Album
	}
	return ""
}

// Label is the capitalized field name
func (f Field) Label() string {
	if f == "" {
		return ""
	}
	return strings.ToUpper(string(f[:1])) + string(f[1:])
}

// Order is a sort direction.
type Order string

const (
	Ascending  Order = "asc"
	Descending Order = "desc"
)

// ParseOrder accepts "asc"/"desc" and their long forms.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrder, s)
}

// Toggle returns the opposite direction.
func (o Order) Toggle() Order {
	if o == Descending {
		return Ascending
	}
	return Descending
}

// Label is "Asc" or "Desc".
func (o Order) Label() string {
	if o == Descending {
		return "Desc"
	}
	return "Asc"
}

// GroupKey is either [GroupNone] or the name of a [Field].
type GroupKey string

const GroupNone GroupKey = "none"

// GroupKeys lists every group key in display order.
var GroupKeys = []GroupKey{GroupNone, GroupKey(FieldArtist), GroupKey(FieldAlbum), GroupKey(FieldTitle)}

// ParseGroup accepts "none" or a field name.
func ParseGroup(s string) (GroupKey, error) {
	if strings.EqualFold(strings.TrimSpace(s), string(GroupNone)) {
		return GroupNone, nil
	}
	f, err := ParseField(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidGroup, s)
	}
	return GroupKey(f), nil
}

// Field returns the grouped field; ok is false for [GroupNone].
func (g GroupKey) Field() (Field, bool) {
	if g == GroupNone || g == "" {
		return "", false
	}
	return Field(g), true
}

// Next cycles through [GroupKeys].
func (g GroupKey) Next() GroupKey {
	for i, k := range GroupKeys {
		if k == g {
			return GroupKeys[(i+1)%len(GroupKeys)]
		}
	}
	return GroupNone
}
