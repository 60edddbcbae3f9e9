package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/server"
	"github.com/desertthunder/songbook/internal/services"
	"github.com/desertthunder/songbook/internal/shared"
	tu "github.com/desertthunder/songbook/internal/testing"
	"github.com/urfave/cli/v3"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(shared.MemoryDatabase)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

type harness struct {
	runner *Runner
	output *bytes.Buffer
	clock  *tu.Clock
}

func newHarness(t *testing.T, config *shared.Config) *harness {
	t.Helper()
	output := &bytes.Buffer{}
	clock := tu.NewClock(time.Now())
	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
		DB:     newTestDB(t),
		Now:    clock.Now,
	})
	return &harness{runner: runner, output: output, clock: clock}
}

// run executes args against a fresh command tree and returns what was written to the output.
func (h *harness) run(ctx context.Context, args ...string) (string, error) {
	h.output.Reset()
	app := &cli.Command{Name: "songbook", Commands: h.runner.register()}
	err := app.Run(ctx, append([]string{"songbook"}, args...))
	return h.output.String(), err
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			db := newTestDB(t)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				DB:         db,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.db != db {
				t.Error("expected db to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("Close leaves an injected database open", func(t *testing.T) {
			db := newTestDB(t)
			runner := NewRunner(RunnerOpts{DB: db})
			if err := runner.Close(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if err := db.Ping(); err != nil {
				t.Errorf("expected injected database to stay open, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := make(map[string]bool)
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "auth", "library", "serve", "remote", "tui"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})
}

func TestAuthCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("login, status and logout", func(t *testing.T) {
		h := newHarness(t, nil)

		out, err := h.run(ctx, "auth", "login", "-u", "admin", "-p", "admin123")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if !strings.Contains(out, "✓ Logged in as admin (Admin)") {
			t.Errorf("unexpected login output: %s", out)
		}

		out, err = h.run(ctx, "auth", "status")
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(out, "Username: admin") || !strings.Contains(out, "Role: Admin") {
			t.Errorf("unexpected status output: %s", out)
		}

		if _, err := h.run(ctx, "auth", "logout"); err != nil {
			t.Fatalf("logout failed: %v", err)
		}

		out, _ = h.run(ctx, "auth", "status")
		if !strings.Contains(out, "Not logged in") {
			t.Errorf("expected logged out status, got %s", out)
		}

		if _, err := h.run(ctx, "auth", "logout"); err != nil {
			t.Errorf("expected repeated logout to succeed, got %v", err)
		}
	})

	t.Run("invalid credentials", func(t *testing.T) {
		h := newHarness(t, nil)

		out, err := h.run(ctx, "auth", "login", "-u", "admin", "-p", "nope")
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		if !strings.Contains(out, "Invalid credentials") {
			t.Errorf("expected literal message, got %s", out)
		}

		out, _ = h.run(ctx, "auth", "status", "--json")
		var status struct {
			Authenticated bool `json:"authenticated"`
		}
		if err := json.Unmarshal([]byte(out), &status); err != nil {
			t.Fatalf("status JSON did not decode: %v", err)
		}
		if status.Authenticated {
			t.Error("expected nothing persisted after a failed login")
		}
	})

	t.Run("expired session is discarded", func(t *testing.T) {
		h := newHarness(t, nil)

		if _, err := h.run(ctx, "auth", "login", "-u", "user", "-p", "user123"); err != nil {
			t.Fatalf("login failed: %v", err)
		}
		h.clock.Advance(25 * time.Hour)

		out, _ := h.run(ctx, "auth", "status")
		if !strings.Contains(out, "Not logged in") {
			t.Errorf("expected expired session, got %s", out)
		}

		h.clock.Advance(-25 * time.Hour)
		out, _ = h.run(ctx, "auth", "status")
		if !strings.Contains(out, "Not logged in") {
			t.Errorf("expected slot to have been cleared, got %s", out)
		}
	})
}

func TestLibraryCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a session", func(t *testing.T) {
		h := newHarness(t, nil)
		if _, err := h.run(ctx, "library", "list"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	h := newHarness(t, nil)
	if _, err := h.run(ctx, "auth", "login", "-u", "user", "-p", "user123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	t.Run("list with defaults", func(t *testing.T) {
		out, err := h.run(ctx, "library", "list")
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(out, "Showing 12 of 12 songs") {
			t.Errorf("expected full catalog, got %s", out)
		}
		if first := strings.SplitN(out, "\n", 2)[0]; !strings.Contains(first, "Anti-Hero") {
			t.Errorf("expected Anti-Hero first by title, got %q", first)
		}
	})

	t.Run("list filtered and grouped as CSV", func(t *testing.T) {
		out, err := h.run(ctx, "library", "list", "--artist", "QUEEN", "--group", "album", "--format", "csv")
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		want := "ID,Title,Artist,Album,Group\n" +
			"4,Bohemian Rhapsody,Queen,A Night at the Opera,A Night at the Opera\n" +
			"8,Don't Stop Me Now,Queen,Jazz,Jazz\n"
		if out != want {
			t.Errorf("expected %q, got %q", want, out)
		}
	})

	t.Run("list to a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "songs.md")
		out, err := h.run(ctx, "library", "list", "--sort", "artist", "--order", "desc", "-f", "markdown", "-o", path)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(out, "✓ Exported 12 songs to "+path) {
			t.Errorf("unexpected output: %s", out)
		}
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "**Sort**: Artist (Desc)") {
			t.Errorf("unexpected export: %s", content)
		}
	})

	t.Run("invalid keys are rejected", func(t *testing.T) {
		if _, err := h.run(ctx, "library", "list", "--sort", "year"); !errors.Is(err, catalog.ErrInvalidField) {
			t.Errorf("expected ErrInvalidField, got %v", err)
		}
		if _, err := h.run(ctx, "library", "list", "--order", "up"); !errors.Is(err, catalog.ErrInvalidOrder) {
			t.Errorf("expected ErrInvalidOrder, got %v", err)
		}
		if _, err := h.run(ctx, "library", "list", "--group", "year"); !errors.Is(err, catalog.ErrInvalidGroup) {
			t.Errorf("expected ErrInvalidGroup, got %v", err)
		}
		if _, err := h.run(ctx, "library", "list", "--format", "yaml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("values", func(t *testing.T) {
		out, err := h.run(ctx, "library", "values", "--field", "artist")
		if err != nil {
			t.Fatalf("values failed: %v", err)
		}
		want := "Taylor Swift\nThe Weeknd\nEd Sheeran\nQueen\nAdele\nEagles\nNirvana\n"
		if out != want {
			t.Errorf("expected %q, got %q", want, out)
		}

		out, _ = h.run(ctx, "library", "values", "--field", "album", "--json")
		var albums []string
		if err := json.Unmarshal([]byte(out), &albums); err != nil {
			t.Fatalf("values JSON did not decode: %v", err)
		}
		if len(albums) != 9 {
			t.Errorf("expected 9 albums, got %v", albums)
		}
	})
}

func TestSetup(t *testing.T) {
	t.Chdir(t.TempDir())

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output})
	app := &cli.Command{Name: "songbook", Commands: runner.register()}

	if err := app.Run(context.Background(), []string{"songbook", "setup", "-c", "custom.toml"}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	tu.AssertFileExists(t, "custom.toml")
	tu.AssertFileExists(t, "songbook.db")
	if runner.configPath != "custom.toml" {
		t.Errorf("expected runner to adopt the config path, got %s", runner.configPath)
	}
	if !strings.Contains(output.String(), "✓ Setup complete") {
		t.Errorf("unexpected output: %s", output.String())
	}

	t.Run("existing config is kept", func(t *testing.T) {
		before := tu.MustReadFile(t, "custom.toml")
		app := &cli.Command{Name: "songbook", Commands: runner.register()}
		if err := app.Run(context.Background(), []string{"songbook", "setup", "-c", "custom.toml"}); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if after := tu.MustReadFile(t, "custom.toml"); after != before {
			t.Error("expected config file to be unchanged")
		}
	})
}

// newServers starts a remote and a shell wired to it.
func newServers(t *testing.T) (shellURL, remoteURL string) {
	t.Helper()
	logger := shared.NewLogger(io.Discard)

	remoteRouter, err := server.NewRemoteRouter(server.RemoteOptions{Logger: logger})
	if err != nil {
		t.Fatalf("NewRemoteRouter failed: %v", err)
	}
	remoteSrv := httptest.NewServer(remoteRouter)
	t.Cleanup(remoteSrv.Close)

	cfg := shared.DefaultConfig()
	cfg.Shell.RemoteURL = remoteSrv.URL + services.EntryPath
	cfg.Limits.LoginRate = 0

	shellRouter, err := server.NewShellRouter(server.ShellOptions{Config: cfg, Logger: logger})
	if err != nil {
		t.Fatalf("NewShellRouter failed: %v", err)
	}
	shellSrv := httptest.NewServer(shellRouter)
	t.Cleanup(shellSrv.Close)

	return shellSrv.URL, remoteSrv.URL
}

func TestRemoteCommands(t *testing.T) {
	ctx := context.Background()
	shellURL, remoteURL := newServers(t)
	urls := []string{"remote", "--shell-url", shellURL, "--remote-url", remoteURL}
	remote := func(args ...string) []string { return append(append([]string{}, urls...), args...) }

	t.Run("songs without a token", func(t *testing.T) {
		h := newHarness(t, nil)
		out, err := h.run(ctx, remote("songs", "--title", "love")...)
		if err != nil {
			t.Fatalf("songs failed: %v", err)
		}
		if !strings.Contains(out, "Love Story") || !strings.Contains(out, "Showing 1 of 12 songs") {
			t.Errorf("unexpected output: %s", out)
		}
	})

	t.Run("admin adds and deletes", func(t *testing.T) {
		h := newHarness(t, nil)

		out, err := h.run(ctx, remote("login", "-u", "admin", "-p", "admin123")...)
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if !strings.Contains(out, "✓ Logged in as admin") {
			t.Errorf("unexpected login output: %s", out)
		}

		out, err = h.run(ctx, remote("add", "--title", "Creep", "--artist", "Radiohead", "--album", "Pablo Honey")...)
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if !strings.Contains(out, "✓ Added #13 Creep by Radiohead") {
			t.Errorf("unexpected add output: %s", out)
		}

		out, err = h.run(ctx, remote("songs", "--artist", "radiohead", "--format", "json")...)
		if err != nil {
			t.Fatalf("songs failed: %v", err)
		}
		var res catalog.Result
		if err := json.Unmarshal([]byte(out), &res); err != nil {
			t.Fatalf("songs JSON did not decode: %v", err)
		}
		if res.Shown != 1 || res.Total != 13 {
			t.Errorf("expected 1 of 13, got %d of %d", res.Shown, res.Total)
		}

		if _, err := h.run(ctx, remote("delete", "--id", "13")...); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := h.run(ctx, remote("delete", "--id", "13")...); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound on second delete, got %v", err)
		}
	})

	t.Run("user is forbidden", func(t *testing.T) {
		h := newHarness(t, nil)
		if _, err := h.run(ctx, remote("login", "-u", "user", "-p", "user123")...); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		_, err := h.run(ctx, remote("add", "--title", "A", "--artist", "B", "--album", "C")...)
		if !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("mutations need a stored token", func(t *testing.T) {
		h := newHarness(t, nil)
		if _, err := h.run(ctx, remote("delete", "--id", "1")...); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}

		h.run(ctx, remote("login", "-u", "admin", "-p", "admin123")...)
		if _, err := h.run(ctx, remote("logout")...); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		if _, err := h.run(ctx, remote("delete", "--id", "1")...); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated after logout, got %v", err)
		}
	})

	t.Run("invalid credentials", func(t *testing.T) {
		h := newHarness(t, nil)
		out, err := h.run(ctx, remote("login", "-u", "admin", "-p", "wrong")...)
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
		if !strings.Contains(out, "Invalid credentials") {
			t.Errorf("expected literal message, got %s", out)
		}
	})

	t.Run("import from CSV", func(t *testing.T) {
		h := newHarness(t, nil)
		if _, err := h.run(ctx, remote("login", "-u", "admin", "-p", "admin123")...); err != nil {
			t.Fatalf("login failed: %v", err)
		}

		path := filepath.Join(t.TempDir(), "import.csv")
		csv := "Title,Artist,Album\nCreep,Radiohead,Pablo Honey\nKaraoke,,Nowhere\nYellow,Coldplay,Parachutes\n"
		if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
			t.Fatalf("failed to write CSV: %v", err)
		}

		out, err := h.run(ctx, remote("import", "--file", path, "--workers", "1")...)
		if err != nil {
			t.Fatalf("import failed: %v", err)
		}
		if !strings.Contains(out, "Imported 2 of 3 songs") {
			t.Errorf("expected summary, got %s", out)
		}
		if !strings.Contains(out, "row 2:") {
			t.Errorf("expected failed row to be listed, got %s", out)
		}

		out, _ = h.run(ctx, remote("songs", "--album", "parachutes")...)
		if !strings.Contains(out, "Yellow") {
			t.Errorf("expected imported song to be listed, got %s", out)
		}
	})
}

func TestServe(t *testing.T) {
	t.Run("all stops when the context ends and opens the browser", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Shell.Host, cfg.Shell.Port = "127.0.0.1", 0
		cfg.Remote.Host, cfg.Remote.Port = "127.0.0.1", 0

		h := newHarness(t, cfg)
		var opened string
		h.runner.openBrowser = func(url string) error {
			opened = url
			return nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := h.run(ctx, "serve", "all", "--open"); err != nil {
			t.Fatalf("serve all failed: %v", err)
		}
		if opened != "http://127.0.0.1:0" {
			t.Errorf("expected browser to open the shell URL, got %q", opened)
		}
	})

	t.Run("invalid remote URL is a config error", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Shell.RemoteURL = "not a url"

		h := newHarness(t, cfg)
		if _, err := h.runner.shellHandler(); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
