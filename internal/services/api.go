// API client for the shell's token endpoint and the remote's song API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
	"golang.org/x/oauth2"
)

const (
	// TokenPath is the shell's password grant endpoint.
	TokenPath = "/oauth/token"
	// SongsPath is the remote's JSON API root.
	SongsPath = "/api/songs"
	// ClientID identifies the CLI to the token endpoint.
	ClientID = "songbook-cli"
)

// APIClient talks to the shell for tokens and to the remote for songs.
type APIClient struct {
	shellURL   string
	remoteURL  string
	httpClient *http.Client
	config     *oauth2.Config
	token      *oauth2.Token
}

// NewAPIClient creates a client. A nil client uses [http.DefaultClient].
func NewAPIClient(shellURL, remoteURL string, client *http.Client) *APIClient {
	if shellURL == "" {
		shellURL = "http://localhost:3000"
	}
	if remoteURL == "" {
		remoteURL = "http://localhost:3001"
	}
	if client == nil {
		client = http.DefaultClient
	}

	shellURL = strings.TrimRight(shellURL, "/")
	return &APIClient{
		shellURL:   shellURL,
		remoteURL:  strings.TrimRight(remoteURL, "/"),
		httpClient: client,
		config: &oauth2.Config{
			ClientID: ClientID,
			Endpoint: oauth2.Endpoint{
				TokenURL:  shellURL + TokenPath,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// Login exchanges username and password for a bearer token and keeps it for later calls.
func (c *APIClient) Login(ctx context.Context, username, password string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.config.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.ErrorCode == "invalid_grant" {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: token request: %w", shared.ErrAPIRequest, err)
	}

	c.token = token
	return token, nil
}

// Authenticate uses a previously issued access token.
func (c *APIClient) Authenticate(accessToken string) {
	if accessToken == "" {
		c.token = nil
		return
	}
	c.token = &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
}

// Token returns the current token, or nil.
func (c *APIClient) Token() *oauth2.Token { return c.token }

// Songs fetches the remote's derived view.
func (c *APIClient) Songs(ctx context.Context, view catalog.View) (*catalog.Result, error) {
	var result catalog.Result
	path := SongsPath + "?" + view.Query().Encode()
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AddSong creates a song. Requires an admin token.
func (c *APIClient) AddSong(ctx context.Context, in models.SongInput) (*models.Song, error) {
	var song models.Song
	if err := c.doRequest(ctx, http.MethodPost, SongsPath, in, &song); err != nil {
		return nil, err
	}
	return &song, nil
}

// DeleteSong removes a song by id. Requires an admin token.
func (c *APIClient) DeleteSong(ctx context.Context, id int) error {
	return c.doRequest(ctx, http.MethodDelete, SongsPath+"/"+strconv.Itoa(id), nil, nil)
}

func (c *APIClient) doRequest(ctx context.Context, method, path string, body, result any) error {
	if c.token == nil {
		return shared.ErrNotAuthenticated
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.remoteURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	resp, err := c.config.Client(ctx, c.token).Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return shared.ErrNotAuthenticated
	case resp.StatusCode == http.StatusForbidden:
		return shared.ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return shared.ErrSongNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
