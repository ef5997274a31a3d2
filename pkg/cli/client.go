package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/denoland-id/denoid/pkg/provider"
	"github.com/denoland-id/denoid/pkg/server"
)

// ErrModuleNotFound is returned when the server has no module by that name
var ErrModuleNotFound = errors.New("module not found")

// Client reads the JSON API of a denoid server
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// ListModules returns the modules matching query
func (c *Client) ListModules(ctx context.Context, query string) (*server.ModulesResponse, error) {
	endpoint := c.baseURL + "/api/modules"
	if query != "" {
		endpoint += "?" + url.Values{"q": {query}}.Encode()
	}

	var out server.ModulesResponse
	if err := c.get(ctx, endpoint, &out); err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return &out, nil
}

// GetModule returns a single module
func (c *Client) GetModule(ctx context.Context, name string) (provider.Module, error) {
	var out provider.Module
	if err := c.get(ctx, c.baseURL+"/api/modules/"+url.PathEscape(name), &out); err != nil {
		return provider.Module{}, fmt.Errorf("failed to get module %s: %w", name, err)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrModuleNotFound
	case resp.StatusCode != http.StatusOK:
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		if body.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
