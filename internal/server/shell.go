package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/services"
	"github.com/desertthunder/songbook/internal/session"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/web"
	"golang.org/x/time/rate"
)

// LibraryMount is the shell path prefix forwarded to the remote.
const LibraryMount = "/library"

// ShellOptions configures [NewShell].
type ShellOptions struct {
	Config     *shared.Config
	Loader     services.Loader // defaults to a [services.RemoteLoader] for Config.Shell.RemoteURL
	Renderer   *web.Renderer
	HTTPClient *http.Client
	Logger     *log.Logger
	Now        func() time.Time
}

// Shell serves the login page and the authenticated layout, loading the library component from the remote on
// every page render.
type Shell struct {
	entryURL string
	cookie   string
	ttl      time.Duration
	loader   services.Loader
	renderer *web.Renderer
	proxy    *httputil.ReverseProxy
	limiter  *rate.Limiter
	logger   *log.Logger
	now      func() time.Time
}

// NewShell creates the shell.
func NewShell(opts ShellOptions) (*Shell, error) {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Renderer == nil {
		r, err := web.NewRenderer()
		if err != nil {
			return nil, err
		}
		opts.Renderer = r
	}

	cfg := opts.Config
	if opts.Loader == nil {
		opts.Loader = services.NewRemoteLoader(cfg.Shell.RemoteURL, cfg.Shell.RemoteName, cfg.Shell.RemoteModule, opts.HTTPClient)
	}

	origin, err := services.Origin(cfg.Shell.RemoteURL)
	if err != nil {
		return nil, fmt.Errorf("%w: shell.remote_url: %v", shared.ErrInvalidConfig, err)
	}

	s := &Shell{
		entryURL: cfg.Shell.RemoteURL,
		cookie:   cfg.Session.CookieName,
		ttl:      cfg.Session.Lifetime(),
		loader:   opts.Loader,
		renderer: opts.Renderer,
		limiter:  NewLoginLimiter(cfg.Limits),
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if s.cookie == "" {
		s.cookie = "token"
	}
	s.proxy = s.newProxy(origin, opts.HTTPClient.Transport)
	return s, nil
}

// NewShellRouter builds a router with logging and panic recovery serving the shell.
func NewShellRouter(opts ShellOptions) (*BasicRouter, error) {
	shell, err := NewShell(opts)
	if err != nil {
		return nil, err
	}

	router := NewBasicRouter()
	router.Use(Recoverer(shell.logger), Logging(shell.logger))
	shell.Register(router)
	return router, nil
}

// Register adds the shell's routes to r.
func (s *Shell) Register(r Router) {
	limit := RateLimit(s.limiter)

	r.Handle(http.MethodGet, "/{$}", http.HandlerFunc(s.index))
	r.Handle(http.MethodPost, "/login", limit(http.HandlerFunc(s.login)))
	r.Handle(http.MethodPost, "/logout", http.HandlerFunc(s.logout))
	r.Handle(http.MethodPost, LibraryMount+"/", http.HandlerFunc(s.forward))
	r.Handle(http.MethodGet, "/healthz", http.HandlerFunc(health))
	r.Handler(NewTokenHandler(s.ttl, s.now, s.limiter, s.logger))
}

func (s *Shell) manager(w http.ResponseWriter, r *http.Request) *session.Manager {
	return session.NewManager(NewCookieStore(s.cookie, s.ttl, w, r),
		session.WithTTL(s.ttl), session.WithClock(s.now), session.WithLogger(s.logger))
}

func (s *Shell) index(w http.ResponseWriter, r *http.Request) {
	sess := s.manager(w, r).RestoreSession()
	if sess == nil {
		s.render(w, http.StatusOK, func(w io.Writer) error {
			return s.renderer.Login(w, web.LoginPage{})
		})
		return
	}

	page := web.ShellPage{User: sess.User, Year: s.now().Year()}
	html, err := s.loadComponent(r.Context(), sess.Role, r.URL.Query())
	if err != nil {
		s.logger.Error("music library failed to load", "id", RequestID(r.Context()), "error", err)
		page.Fallback = services.FailureNotice(s.entryURL)
	} else {
		page.Component = template.HTML(html)
	}

	s.render(w, http.StatusOK, func(w io.Writer) error {
		return s.renderer.Shell(w, page)
	})
}

// loadComponent performs one remote load and renders the component with the caller's role.
func (s *Shell) loadComponent(ctx context.Context, role models.Role, q url.Values) ([]byte, error) {
	res := <-s.loader.Load(ctx)
	if err := res.Error(); err != nil {
		return nil, err
	}
	if res.Component == nil {
		return nil, shared.ErrRemoteLoad
	}

	query := catalog.ParseView(q).Query()
	if q.Get("add") == "1" {
		query.Set("add", "1")
	}
	query.Set("page", "/")
	query.Set("mount", LibraryMount)
	return res.Component.Render(ctx, role, query)
}

func (s *Shell) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	username := r.PostForm.Get("username")
	if _, _, err := s.manager(w, r).IssueToken(username, r.PostForm.Get("password")); err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			s.logger.Error("login failed", "error", err)
			status = http.StatusInternalServerError
		}
		s.render(w, status, func(w io.Writer) error {
			return s.renderer.Login(w, web.LoginPage{Username: username, Error: shared.InvalidCredentialsMessage})
		})
		return
	}

	s.logger.Info("login", "username", username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Shell) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.manager(w, r).Logout(); err != nil {
		s.logger.Warn("logout failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// forward proxies a library form post to the remote with the session's role attached.
func (s *Shell) forward(w http.ResponseWriter, r *http.Request) {
	sess := s.manager(w, r).RestoreSession()
	if sess == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Header.Set(services.RoleHeader, sess.Role.String())
	s.proxy.ServeHTTP(w, r)
}

func (s *Shell) newProxy(origin *url.URL, transport http.RoundTripper) *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(origin)
			pr.Out.URL.Path = strings.TrimPrefix(pr.In.URL.Path, LibraryMount)
			pr.Out.URL.RawPath = ""
			pr.Out.Header.Del("Cookie")
			pr.Out.Header.Set(services.RoleHeader, pr.In.Header.Get(services.RoleHeader))
			pr.SetXForwarded()
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			s.logger.Error("library proxy failed", "id", RequestID(r.Context()), "error", err)
			http.Error(w, "Music Library is unavailable", http.StatusBadGateway)
		},
	}
}

func (s *Shell) render(w http.ResponseWriter, status int, fn func(io.Writer) error) {
	var b bytes.Buffer
	if err := fn(&b); err != nil {
		s.logger.Error("render failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	b.WriteTo(w)
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
