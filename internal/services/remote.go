package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/songbook/internal/shared"
	"github.com/dop251/goja"
)

const maxEntrySize = 1 << 20

// Exposed describes one module in the remote container.
type Exposed struct {
	Path  string   `json:"path"`
	Props []string `json:"props"`
}

// LoadResult is the outcome of a single [RemoteLoader.Load].
type LoadResult struct {
	Component *Component
	err       error
}

func (r LoadResult) Error() error { return r.err }

// Loaded reports whether the component resolved.
func (r LoadResult) Loaded() bool { return r.err == nil && r.Component != nil }

// RemoteLoader loads the library component from the remote's entry script.
type RemoteLoader struct {
	entryURL   string
	container  string
	module     string
	httpClient *http.Client
}

// NewRemoteLoader creates a loader for entryURL. Empty container and module fall back to
// [DefaultContainer] and [DefaultModule].
func NewRemoteLoader(entryURL, container, module string, client *http.Client) *RemoteLoader {
	if container == "" {
		container = DefaultContainer
	}
	if module == "" {
		module = DefaultModule
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &RemoteLoader{
		entryURL:   entryURL,
		container:  container,
		module:     module,
		httpClient: client,
	}
}

func (l *RemoteLoader) EntryURL() string { return l.entryURL }

// Load starts loading in a new goroutine.
//
// The channel receives exactly one result and is then closed.
func (l *RemoteLoader) Load(ctx context.Context) <-chan LoadResult {
	ch := make(chan LoadResult, 1)
	go func() {
		defer close(ch)
		c, err := l.load(ctx)
		if err != nil {
			ch <- LoadResult{err: fmt.Errorf("%w: %w", shared.ErrRemoteLoad, err)}
			return
		}
		ch <- LoadResult{Component: c}
	}()
	return ch
}

func (l *RemoteLoader) load(ctx context.Context) (*Component, error) {
	base, err := url.Parse(l.entryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid entry URL: %w", err)
	}

	script, err := l.fetch(ctx, base.String())
	if err != nil {
		return nil, err
	}

	exposed, err := EvaluateEntry(ctx, script, l.container, l.module)
	if err != nil {
		return nil, err
	}

	ref, err := url.Parse(exposed.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid module path %q: %w", exposed.Path, err)
	}

	return &Component{
		Name:       l.container,
		Module:     l.module,
		URL:        base.ResolveReference(ref),
		Props:      exposed.Props,
		httpClient: l.httpClient,
	}, nil
}

func (l *RemoteLoader) fetch(ctx context.Context, entryURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entryURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("entry script: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEntrySize))
	if err != nil {
		return "", fmt.Errorf("failed to read entry script: %w", err)
	}
	return string(body), nil
}

// EvaluateEntry runs script in a fresh runtime and returns the module exposed under container.
//
// Evaluation is interrupted when ctx is done.
func EvaluateEntry(ctx context.Context, script, container, module string) (*Exposed, error) {
	vm := goja.New()
	stop := context.AfterFunc(ctx, func() { vm.Interrupt(ctx.Err()) })
	defer stop()

	if _, err := vm.RunString(script); err != nil {
		return nil, fmt.Errorf("entry script: %w", err)
	}

	v := vm.Get(container)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, fmt.Errorf("container %q not declared", container)
	}

	exposes := v.ToObject(vm).Get("exposes")
	if exposes == nil || goja.IsUndefined(exposes) || goja.IsNull(exposes) {
		return nil, fmt.Errorf("container %q exposes nothing", container)
	}

	m := exposes.ToObject(vm).Get(module)
	if m == nil || goja.IsUndefined(m) || goja.IsNull(m) {
		return nil, fmt.Errorf("module %q not exposed by %q", module, container)
	}

	raw, ok := m.Export().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("module %q is not an object", module)
	}

	exposed := &Exposed{}
	if p, ok := raw["path"].(string); ok {
		exposed.Path = p
	}
	if exposed.Path == "" {
		return nil, fmt.Errorf("module %q has no path", module)
	}
	if props, ok := raw["props"].([]any); ok {
		for _, p := range props {
			if s, ok := p.(string); ok {
				exposed.Props = append(exposed.Props, s)
			}
		}
	}
	return exposed, nil
}

// EntryScript builds the entry script served by the remote.
func EntryScript(container string, modules map[string]Exposed) (string, error) {
	exposes, err := json.MarshalIndent(modules, "  ", "  ")
	if err != nil {
		return "", err
	}
	name, err := json.Marshal(container)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "var %s = {\n", container)
	fmt.Fprintf(&b, "  name: %s,\n", name)
	fmt.Fprintf(&b, "  exposes: %s,\n", exposes)
	b.WriteString("  get: function (module) { return this.exposes[module]; }\n")
	b.WriteString("};\n")
	return b.String(), nil
}

// Origin returns the scheme and host of entryURL.
func Origin(entryURL string) (*url.URL, error) {
	u, err := url.Parse(entryURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("entry URL %q is not absolute", entryURL)
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}

// FailureNotice is the text shown in place of the component when loading fails.
func FailureNotice(entryURL string) string {
	origin, path := entryURL, EntryPath
	if o, err := Origin(entryURL); err == nil {
		origin = o.String()
		if u, _ := url.Parse(entryURL); u.Path != "" {
			path = u.Path
		}
	}
	return fmt.Sprintf("Music Library failed to load. Make sure the remote is running on %s and that %s is reachable.", origin, path)
}
