package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// Component is a module resolved from the remote container.
type Component struct {
	Name       string
	Module     string
	URL        *url.URL
	Props      []string
	httpClient *http.Client
}

// Render fetches the component's fragment with the role and view parameters applied.
func (c *Component) Render(ctx context.Context, role models.Role, query url.Values) ([]byte, error) {
	u := *c.URL
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set(RoleParam, role.String())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(RoleHeader, role.String())

	client := c.httpClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrRemoteLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: component status %d", shared.ErrRemoteLoad, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read component: %w", err)
	}
	return body, nil
}
