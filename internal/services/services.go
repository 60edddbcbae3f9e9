package services

import (
	"context"
	"net/url"

	"github.com/desertthunder/songbook/internal/models"
)

const (
	// DefaultContainer is the global the remote entry script declares.
	DefaultContainer = "musicLibrary"
	// DefaultModule is the key of the library component in the container's exposes map.
	DefaultModule = "./MusicLibrary"
	// EntryPath is where the remote serves its entry script.
	EntryPath = "/assets/remoteEntry.js"
	// RoleHeader carries the caller's role from the shell to the remote.
	RoleHeader = "X-User-Role"
	// RoleParam is the query parameter equivalent of [RoleHeader].
	RoleParam = "userRole"
)

// Loader resolves the remote component asynchronously.
type Loader interface {
	Load(ctx context.Context) <-chan LoadResult
}

// Renderer produces an HTML fragment for a role and a view query.
type Renderer interface {
	Render(ctx context.Context, role models.Role, query url.Values) ([]byte, error)
}
