// Package jobsearch proxies the JSearch job-listing API. It plays no part
// in authentication or ownership decisions; results are forwarded as-is.
package jobsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jobtrackr/apiserver/config"
)

const defaultRequestTimeout = 15 * time.Second

// Client queries the JSearch API on RapidAPI.
type Client struct {
	apiKey     string
	host       string
	httpClient *http.Client
}

// NewClient constructs a Client from config.
func NewClient(cfg config.JobSearchConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("job search api key is required")
	}
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("job search host is required")
	}

	return &Client{
		apiKey: cfg.APIKey,
		host:   cfg.Host,
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}, nil
}

// Search returns the raw listing array for a free-text query.
func (c *Client) Search(ctx context.Context, query string) (json.RawMessage, error) {
	u := &url.URL{
		Scheme: "https",
		Host:   c.host,
		Path:   "/search",
	}
	q := u.Query()
	q.Set("query", query)
	q.Set("page", "1")
	q.Set("num_pages", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("job search upstream status %d", resp.StatusCode)
	}

	var parsed struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if parsed.Data == nil {
		return json.RawMessage("[]"), nil
	}
	return parsed.Data, nil
}
