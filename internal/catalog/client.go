// Package catalog queries the external book catalog (Google Books) used by
// the search passthrough endpoint. The upstream response shape is consumed
// as-is and flattened for the mobile client.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/skillsenselab/shelfmark/internal/errors"
)

// Config configures the catalog client.
type Config struct {
	// BaseURL is the catalog API root (default: the Google Books API).
	BaseURL string `mapstructure:"base_url"`

	// Timeout bounds each upstream request (default: 10s).
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxResults caps the number of results per query (default: 20).
	MaxResults int `mapstructure:"max_results"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://www.googleapis.com/books/v1"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxResults == 0 {
		c.MaxResults = 20
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url %q: %w", c.BaseURL, err)
	}
	if c.MaxResults < 1 || c.MaxResults > 40 {
		return fmt.Errorf("max_results must be between 1 and 40 (got: %d)", c.MaxResults)
	}
	return nil
}

// Result is one flattened search hit.
type Result struct {
	ID          string   `json:"id"`
	Title       string   `json:"titulo"`
	Authors     []string `json:"autores"`
	Description string   `json:"descripcion"`
	Thumbnail   string   `json:"imagenUrl"`
}

// Client searches the external catalog.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a catalog client from configuration.
func NewClient(cfg Config) *Client {
	cfg.ApplyDefaults()
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// volumesResponse mirrors the subset of the upstream payload we read.
type volumesResponse struct {
	Items []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title       string   `json:"title"`
			Authors     []string `json:"authors"`
			Description string   `json:"description"`
			ImageLinks  struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Search runs a free-text title query against the catalog.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	endpoint := fmt.Sprintf("%s/volumes?q=%s&maxResults=%d",
		strings.TrimSuffix(c.cfg.BaseURL, "/"),
		url.QueryEscape(query),
		c.cfg.MaxResults,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.ExternalService("book catalog", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ExternalService("book catalog",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.ExternalService("book catalog", err)
	}

	results := make([]Result, 0, len(payload.Items))
	for _, item := range payload.Items {
		results = append(results, Result{
			ID:          item.ID,
			Title:       item.VolumeInfo.Title,
			Authors:     item.VolumeInfo.Authors,
			Description: item.VolumeInfo.Description,
			Thumbnail:   item.VolumeInfo.ImageLinks.Thumbnail,
		})
	}
	return results, nil
}
