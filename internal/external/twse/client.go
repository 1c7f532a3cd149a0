package twse

import (
	"time"

	"github.com/tsubasarcs/etf-strategy-automation/pkg/httputil"
	"github.com/tsubasarcs/etf-strategy-automation/pkg/logger"
)

const defaultBaseURL = "https://www.twse.com.tw"

// Client handles communication with the TWSE open endpoints. All
// exchange calls go through this client so pacing stays in one place.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	loc        *time.Location
}

// NewClient creates a TWSE client. The exchange throttles aggressive
// callers, so the HTTP client should carry a rate limit.
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		loc = time.FixedZone("CST", 8*60*60)
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    defaultBaseURL,
		loc:        loc,
	}
}

// WithBaseURL overrides the exchange base URL. Used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

var requestHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
}
