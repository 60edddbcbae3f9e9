// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/desertthunder/songbook/internal/models"
)

// MemoryStore is an in-memory session.Store
type MemoryStore struct {
	Token  string
	Stored bool
	Saves  int
	Clears int
}

func (m *MemoryStore) Load() (string, bool, error) { return m.Token, m.Stored, nil }

func (m *MemoryStore) Save(token string) error {
	m.Token, m.Stored = token, true
	m.Saves++
	return nil
}

func (m *MemoryStore) Clear() error {
	m.Token, m.Stored = "", false
	m.Clears++
	return nil
}

// FailingStore is a session.Store whose operations all fail with Err
type FailingStore struct {
	Err error
}

func (f *FailingStore) Load() (string, bool, error) { return "", false, f.Err }
func (f *FailingStore) Save(string) error           { return f.Err }
func (f *FailingStore) Clear() error                { return f.Err }

// Clock is a settable time source
type Clock struct {
	T time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{T: t} }

func (c *Clock) Now() time.Time          { return c.T }
func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// Songs returns a small catalog with duplicated artists and albums and one song missing its album.
func Songs() []models.Song {
	return []models.Song{
		{ID: 1, Title: "Love Story", Artist: "Taylor Swift", Album: "Fearless"},
		{ID: 2, Title: "Anthem", Artist: "Leonard Cohen", Album: "The Future"},
		{ID: 3, Title: "Fifteen", Artist: "Taylor Swift", Album: "Fearless"},
		{ID: 4, Title: "Hallelujah", Artist: "Leonard Cohen", Album: "Various Positions"},
		{ID: 5, Title: "Demo", Artist: "Unsigned", Album: ""},
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}
