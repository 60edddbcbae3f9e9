package server

import (
	"net/http"
	"time"
)

// CookieStore keeps the session token in a cookie for the duration of one request.
//
// Load reads the request cookie; Save and Clear set the response cookie and are visible to later Loads on the same
// store.
type CookieStore struct {
	name    string
	ttl     time.Duration
	w       http.ResponseWriter
	r       *http.Request
	value   string
	stored  bool
	written bool
}

// NewCookieStore creates a store for one exchange.
func NewCookieStore(name string, ttl time.Duration, w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{name: name, ttl: ttl, w: w, r: r}
}

func (c *CookieStore) Load() (string, bool, error) {
	if c.written {
		return c.value, c.stored, nil
	}
	cookie, err := c.r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return "", false, nil
	}
	return cookie.Value, true, nil
}

func (c *CookieStore) Save(token string) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.value, c.stored, c.written = token, true, true
	return nil
}

func (c *CookieStore) Clear() error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.value, c.stored, c.written = "", false, true
	return nil
}
