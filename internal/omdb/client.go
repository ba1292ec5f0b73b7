package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"moviemeta/internal/services"
)

// Rating is one third-party rating attached to a title.
type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

// Movie is the full OMDb title payload. Field names mirror the upstream JSON
// so written metadata files match what the API returns.
type Movie struct {
	Title      string   `json:"Title"`
	Year       string   `json:"Year"`
	Rated      string   `json:"Rated,omitempty"`
	Released   string   `json:"Released,omitempty"`
	Runtime    string   `json:"Runtime,omitempty"`
	Genre      string   `json:"Genre,omitempty"`
	Director   string   `json:"Director,omitempty"`
	Writer     string   `json:"Writer,omitempty"`
	Actors     string   `json:"Actors,omitempty"`
	Plot       string   `json:"Plot,omitempty"`
	Language   string   `json:"Language,omitempty"`
	Country    string   `json:"Country,omitempty"`
	Awards     string   `json:"Awards,omitempty"`
	Poster     string   `json:"Poster,omitempty"`
	Ratings    []Rating `json:"Ratings,omitempty"`
	Metascore  string   `json:"Metascore,omitempty"`
	IMDbRating string   `json:"imdbRating,omitempty"`
	IMDbVotes  string   `json:"imdbVotes,omitempty"`
	IMDbID     string   `json:"imdbID,omitempty"`
	Type       string   `json:"Type,omitempty"`
	DVD        string   `json:"DVD,omitempty"`
	BoxOffice  string   `json:"BoxOffice,omitempty"`
	Production string   `json:"Production,omitempty"`
	Website    string   `json:"Website,omitempty"`
	Response   string   `json:"Response"`
}

// LookupResult is the classified response of one title lookup.
type LookupResult struct {
	Found bool
	Movie Movie
	// Message carries the upstream "Error" text for misses.
	Message string
}

// Looker defines the lookup operation used by the enrichment engine.
type Looker interface {
	Lookup(ctx context.Context, title, year string) (*LookupResult, error)
}

// Client provides access to the OMDb API.
type Client struct {
	apiKey     string
	baseURL    string
	mediaType  string
	httpClient *http.Client
}

var _ Looker = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMediaType overrides the "type" filter (movie, series, episode).
func WithMediaType(mediaType string) Option {
	return func(c *Client) {
		if mediaType = strings.TrimSpace(mediaType); mediaType != "" {
			c.mediaType = mediaType
		}
	}
}

// New creates an OMDb client. The HTTP client carries no timeout of its own;
// callers bound each lookup through the context.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "omdb", "new client", "api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "omdb", "new client", "base url required", nil)
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		mediaType:  "movie",
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Lookup fetches a single title, optionally filtered by year.
func (c *Client) Lookup(ctx context.Context, title, year string) (*LookupResult, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "omdb", "lookup", "parse base url", err)
	}
	params := endpoint.Query()
	params.Set("t", title)
	params.Set("type", c.mediaType)
	params.Set("apikey", c.apiKey)
	if year = strings.TrimSpace(year); year != "" {
		params.Set("y", year)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read omdb response (latency=%v): %w", latency, err)
	}

	var payload struct {
		Movie
		Error string `json:"Error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, services.Wrap(services.ErrTransient, "omdb", "lookup",
			fmt.Sprintf("decode response (status=%d latency=%v)", resp.StatusCode, latency), err)
	}

	if strings.EqualFold(payload.Response, "True") {
		return &LookupResult{Found: true, Movie: payload.Movie}, nil
	}

	if resp.StatusCode == http.StatusUnauthorized && isInvalidKey(payload.Error) {
		return nil, services.Wrap(services.ErrConfiguration, "omdb", "lookup", payload.Error, nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransient, "omdb", "lookup",
			fmt.Sprintf("omdb returned %d (latency=%v): %s", resp.StatusCode, latency, payload.Error), nil)
	}
	if !strings.EqualFold(payload.Response, "False") {
		return nil, services.Wrap(services.ErrTransient, "omdb", "lookup", "response missing Response field", nil)
	}
	return &LookupResult{Found: false, Message: payload.Error}, nil
}

func isInvalidKey(message string) bool {
	message = strings.ToLower(message)
	return strings.Contains(message, "invalid api key") || strings.Contains(message, "no api key")
}
