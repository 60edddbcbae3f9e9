// package models defines the data model for the songbook catalog
package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the capability level of an authenticated actor.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// String returns the role's wire value
func (r Role) String() string { return string(r) }

// Label returns the display badge text for the role ("Admin" or "User").
func (r Role) Label() string {
	if r == RoleAdmin {
		return "Admin"
	}
	return "User"
}

// Credential is a static lookup entry. Passwords are plaintext and only ever compared.
type Credential struct {
	ID       int
	Username string
	Password string
	Role     Role
}

// User holds the public fields of an authenticated actor.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Session is the currently authenticated actor.
type Session struct {
	User
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the session is still live at now.
func (s Session) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// Song is a catalog entry.
type Song struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// SongInput carries the user-supplied fields for a new [Song].
type SongInput struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// Validate checks that all three fields are present
func (in SongInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Artist) == "" {
		missing = append(missing, "artist")
	}
	if strings.TrimSpace(in.Album) == "" {
		missing = append(missing, "album")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
