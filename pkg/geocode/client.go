package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Result is the outcome of a single lookup. Found is false when the provider
// had no match for the query.
type Result struct {
	Lat   float64
	Lng   float64
	Found bool
}

// Geocoder performs a single address lookup.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (Result, error)
}

// Client is a Nominatim search client that spaces consecutive requests by a
// minimum interval. The interval gate is serialized by a mutex so the client
// is safe to share, though the pipelines here call it from one goroutine.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	userAgent   string
	minInterval time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Nominatim endpoint, e.g. for a self-hosted
// instance or a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if strings.TrimSpace(baseURL) != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the HTTP client, typically to set a timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent sets the User-Agent header. Nominatim's usage policy requires
// an identifying agent.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithMinInterval sets the minimum delay between consecutive requests.
func WithMinInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.minInterval = interval
	}
}

// NewClient builds a Client with the public endpoint, a one second interval
// and the default HTTP client unless overridden.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		httpClient:  http.DefaultClient,
		userAgent:   "resourcemap-geocoder/1.0",
		minInterval: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geocode looks up a single address. An empty provider response is not an
// error; it returns Result{Found: false}.
func (c *Client) Geocode(ctx context.Context, query string) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, nil
	}

	if err := c.waitInterval(ctx); err != nil {
		return Result{}, err
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/search"
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, err
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("geocode: status %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Result{}, err
	}
	if len(results) == 0 {
		return Result{}, nil
	}
	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Result{}, err
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Result{}, err
	}
	return Result{Lat: lat, Lng: lng, Found: true}, nil
}

// waitInterval blocks until the minimum spacing since the previous request
// has elapsed, or the context is done.
func (c *Client) waitInterval(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}
	c.mu.Lock()
	now := time.Now()
	next := c.lastRequest.Add(c.minInterval)
	if !next.After(now) {
		c.lastRequest = now
		c.mu.Unlock()
		return nil
	}
	c.lastRequest = next
	c.mu.Unlock()

	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
