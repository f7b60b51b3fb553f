package nexus

// Package nexus talks to the Nexus Mods web API. Its single job in the
// pipeline is exchanging a signed nxm request for a time-boxed direct CDN
// URL. Requests are paced to respect the API's rate limits.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/hrmshandy/treasure-chest/internal/nxm"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.nexusmods.com"

	// DefaultTimeout bounds one whole request/response exchange. There is no
	// per-chunk timeout.
	DefaultTimeout = 5 * time.Minute

	// UserAgent identifies the manager to the API.
	UserAgent = "Treasure Chest Mod Manager/0.1.0"

	errorBodyLimit = 512
)

// ErrAPIKeyMissing is returned before any request when no key is configured.
var ErrAPIKeyMissing = errors.New("nexus API key not configured, add your key in settings")

// APIError is a non-success response from the API.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("API error %s: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("API error %s", e.Status)
}

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client resolves signed download requests against the Nexus Mods API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
}

// NewClient creates a new API client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		// The API allows short bursts; one request per second sustained is
		// well inside its hourly budget.
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// downloadLink is one entry of the download_link.json response.
type downloadLink struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	URI       string `json:"URI"`
}

// ResolveDownloadURL exchanges the request's signed fields for a direct CDN
// URL. Any non-success response is a permanent failure; the caller does not
// retry.
func (c *Client) ResolveDownloadURL(ctx context.Context, req nxm.Request) (string, error) {
	if c.apiKey == "" {
		return "", ErrAPIKeyMissing
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1/games/%s/mods/%d/files/%d/download_link.json",
		c.baseURL, req.Game, req.ModID, req.FileID)

	query := url.Values{}
	query.Set("key", req.Key)
	query.Set("expires", strconv.FormatInt(req.Expires, 10))
	if req.UserID != 0 {
		query.Set("user_id", strconv.FormatInt(req.UserID, 10))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("User-Agent", UserAgent)
	httpReq.Header.Set("apikey", c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return "", &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}

	var links []downloadLink
	if err := json.NewDecoder(resp.Body).Decode(&links); err != nil {
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}

	for _, link := range links {
		if link.URI != "" {
			return link.URI, nil
		}
	}
	return "", errors.New("no download link in API response")
}
