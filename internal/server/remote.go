package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/services"
	"github.com/desertthunder/songbook/internal/session"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/web"
)

// ComponentPath is where the remote serves the library fragment.
const ComponentPath = "/modules/music-library"

const maxBodySize = 1 << 20

// RemoteOptions configures [NewRemote].
type RemoteOptions struct {
	Library   *catalog.Library // defaults to the seeded library
	Renderer  *web.Renderer
	Container string
	Module    string
	Logger    *log.Logger
	Now       func() time.Time
}

// Remote serves the entry script, the library fragment and the JSON song API over one shared [catalog.Library].
type Remote struct {
	mu       sync.RWMutex
	library  *catalog.Library
	renderer *web.Renderer
	entry    []byte
	logger   *log.Logger
	now      func() time.Time
}

// NewRemote creates the remote.
func NewRemote(opts RemoteOptions) (*Remote, error) {
	if opts.Library == nil {
		opts.Library = catalog.NewSeededLibrary()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Container == "" {
		opts.Container = services.DefaultContainer
	}
	if opts.Module == "" {
		opts.Module = services.DefaultModule
	}
	if opts.Renderer == nil {
		r, err := web.NewRenderer()
		if err != nil {
			return nil, err
		}
		opts.Renderer = r
	}

	script, err := services.EntryScript(opts.Container, map[string]services.Exposed{
		opts.Module: {Path: ComponentPath, Props: []string{services.RoleParam}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build entry script: %w", err)
	}

	return &Remote{
		library:  opts.Library,
		renderer: opts.Renderer,
		entry:    []byte(script),
		logger:   opts.Logger,
		now:      opts.Now,
	}, nil
}

// NewRemoteRouter builds a router with logging and panic recovery serving the remote.
func NewRemoteRouter(opts RemoteOptions) (*BasicRouter, error) {
	remote, err := NewRemote(opts)
	if err != nil {
		return nil, err
	}

	router := NewBasicRouter()
	router.Use(Recoverer(remote.logger), Logging(remote.logger))
	remote.Register(router)
	return router, nil
}

// Register adds the remote's routes to r.
func (rm *Remote) Register(r Router) {
	r.Handle(http.MethodGet, services.EntryPath, http.HandlerFunc(rm.entryScript))
	r.Handle(http.MethodGet, ComponentPath, http.HandlerFunc(rm.component))
	r.Handle(http.MethodPost, ComponentPath+"/songs", http.HandlerFunc(rm.addSong))
	r.Handle(http.MethodPost, ComponentPath+"/songs/{id}/delete", http.HandlerFunc(rm.deleteSong))
	r.Handle(http.MethodGet, services.SongsPath, http.HandlerFunc(rm.listSongs))
	r.Handle(http.MethodPost, services.SongsPath, http.HandlerFunc(rm.createSong))
	r.Handle(http.MethodDelete, services.SongsPath+"/{id}", http.HandlerFunc(rm.removeSong))
	r.Handle(http.MethodGet, "/healthz", http.HandlerFunc(health))
}

// Songs returns a snapshot of the shared library.
func (rm *Remote) Songs() []models.Song {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.library.Songs()
}

func (rm *Remote) entryScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(rm.entry)
}

func (rm *Remote) component(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	role := requestRole(r)
	songs := rm.Songs()

	page := web.LibraryPage{
		Role:        role,
		Result:      catalog.Derive(songs, catalog.ParseView(q)),
		Artists:     catalog.Unique(songs, catalog.FieldArtist),
		Albums:      catalog.Unique(songs, catalog.FieldAlbum),
		Page:        localPath(q.Get("page"), ComponentPath),
		Mount:       strings.TrimSuffix(localPath(q.Get("mount"), ""), "/"),
		ShowAddForm: role == models.RoleAdmin && q.Get("add") == "1",
	}

	var buf strings.Builder
	if err := rm.renderer.Library(&buf, page); err != nil {
		rm.logger.Error("render failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, buf.String())
}

func (rm *Remote) addSong(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if requestRole(r) != models.RoleAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	in := models.SongInput{
		Title:  r.PostForm.Get("title"),
		Artist: r.PostForm.Get("artist"),
		Album:  r.PostForm.Get("album"),
	}
	if err := in.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rm.mu.Lock()
	song := rm.library.Add(in)
	rm.mu.Unlock()

	rm.logger.Info("added song", "id", song.ID, "title", song.Title)
	http.Redirect(w, r, localPath(r.PostForm.Get("return"), ComponentPath), http.StatusSeeOther)
}

func (rm *Remote) deleteSong(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if requestRole(r) != models.RoleAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid song id", http.StatusBadRequest)
		return
	}

	rm.mu.Lock()
	removed := rm.library.Delete(id)
	rm.mu.Unlock()

	if removed {
		rm.logger.Info("deleted song", "id", id)
	}
	http.Redirect(w, r, localPath(r.PostForm.Get("return"), ComponentPath), http.StatusSeeOther)
}

func (rm *Remote) listSongs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Derive(rm.Songs(), catalog.ParseView(r.URL.Query())))
}

func (rm *Remote) createSong(w http.ResponseWriter, r *http.Request) {
	if _, ok := rm.authorizeAdmin(w, r); !ok {
		return
	}

	var in models.SongInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body"})
		return
	}
	if err := in.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	rm.mu.Lock()
	song := rm.library.Add(in)
	rm.mu.Unlock()

	rm.logger.Info("added song", "id", song.ID, "title", song.Title)
	writeJSON(w, http.StatusCreated, song)
}

func (rm *Remote) removeSong(w http.ResponseWriter, r *http.Request) {
	if _, ok := rm.authorizeAdmin(w, r); !ok {
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid song id"})
		return
	}

	rm.mu.Lock()
	removed := rm.library.Delete(id)
	rm.mu.Unlock()

	if !removed {
		writeJSON(w, http.StatusNotFound, apiError{Error: shared.ErrSongNotFound.Error()})
		return
	}
	rm.logger.Info("deleted song", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

type apiError struct {
	Error string `json:"error"`
}

// authorizeAdmin decodes the bearer token and requires the admin role, writing 401 or 403 otherwise.
func (rm *Remote) authorizeAdmin(w http.ResponseWriter, r *http.Request) (*models.Session, bool) {
	raw, ok := bearerToken(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeJSON(w, http.StatusUnauthorized, apiError{Error: shared.ErrNotAuthenticated.Error()})
		return nil, false
	}

	sess, err := session.Decode(raw, rm.now())
	if err != nil {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		writeJSON(w, http.StatusUnauthorized, apiError{Error: err.Error()})
		return nil, false
	}
	if !sess.IsAdmin() {
		writeJSON(w, http.StatusForbidden, apiError{Error: shared.ErrForbidden.Error()})
		return nil, false
	}
	return sess, true
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// requestRole reads the role from the shell's header, then the userRole parameter, defaulting to user.
func requestRole(r *http.Request) models.Role {
	v := r.Header.Get(services.RoleHeader)
	if v == "" {
		v = r.FormValue(services.RoleParam)
	}
	if role := models.Role(v); role.Valid() {
		return role
	}
	return models.RoleUser
}

// localPath accepts only same-origin absolute paths.
func localPath(p, fallback string) string {
	if p == "" || p[0] != '/' || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return fallback
	}
	return p
}
