package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/pwin/internal/logging"
)

const (
	// DefaultBaseURL is where windows.php.net publishes release archives.
	DefaultBaseURL = "https://windows.php.net/downloads/releases"
	// ManifestName is the manifest file under the base URL.
	ManifestName = "releases.json"
)

// Fetcher is the HTTP transport used by Client.
type Fetcher interface {
	// FetchText returns the body of url as a string.
	FetchText(ctx context.Context, url string) (string, error)
}

// Client downloads and decodes the release manifest.
type Client struct {
	BaseURL string
	Fetcher Fetcher
	Logger  logging.Logger
}

// NewClient returns a client for DefaultBaseURL.
func NewClient(f Fetcher, logger logging.Logger) *Client {
	return &Client{BaseURL: DefaultBaseURL, Fetcher: f, Logger: logger}
}

func (c *Client) base() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

// ManifestURL returns the URL of releases.json.
func (c *Client) ManifestURL() string {
	return c.base() + "/" + ManifestName
}

// ArchiveURL returns the download URL for a path taken from a Download.
func (c *Client) ArchiveURL(path string) string {
	return c.base() + "/" + strings.TrimLeft(path, "/")
}

// Fetch downloads and decodes the manifest.
func (c *Client) Fetch(ctx context.Context) (Catalog, error) {
	url := c.ManifestURL()
	log := logging.OrNop(c.Logger)
	log.Debug("fetching release catalog", "url", url)

	body, err := c.Fetcher.FetchText(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	cat, err := Decode([]byte(body))
	if err != nil {
		return nil, err
	}
	log.Debug("release catalog loaded", "releases", len(cat))
	return cat, nil
}
