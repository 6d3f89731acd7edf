// Package ban provides a client for the Base Adresse Nationale geocoding
// API, which resolves free-text French addresses to WGS84 coordinates.
package ban

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api-adresse.data.gouv.fr"

// ErrNoMatch is returned when the geocoder finds no candidate for a query.
var ErrNoMatch = eris.New("ban: no address match")

// Client geocodes free-text addresses.
type Client interface {
	// Search returns up to limit ranked candidates for a query.
	Search(ctx context.Context, query string, limit int) ([]Candidate, error)

	// Best returns the top candidate, or ErrNoMatch when there is none.
	Best(ctx context.Context, query string) (*Candidate, error)
}

// StatusError is returned when the geocoder answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ban: geocoder returned status %d: %s", e.StatusCode, e.Body)
}

// Candidate is one geocoding match.
type Candidate struct {
	Label     string  // normalized address label
	Score     float64 // match score in [0, 1]
	CityCode  string  // 5-character INSEE commune code
	Longitude float64 // WGS84 degrees
	Latitude  float64 // WGS84 degrees
}

// searchResponse mirrors the GeoJSON FeatureCollection the API returns.
type searchResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
		Properties struct {
			Label    string  `json:"label"`
			Score    float64 `json:"score"`
			CityCode string  `json:"citycode"`
		} `json:"properties"`
	} `json:"features"`
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the geocoder base URL. Empty keeps the default.
func WithBaseURL(u string) Option {
	return func(c *client) {
		if u == "" {
			return
		}
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for geocoder calls.
// Non-positive values keep the default.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		if rps <= 0 {
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCache memoizes up to size queries in process. Establishments cluster
// on the same few addresses, so repeat lookups are common.
func WithCache(size int) Option {
	return func(c *client) {
		cache, err := lru.New[string, []Candidate](size)
		if err != nil {
			return // size < 1 disables the cache
		}
		c.cache = cache
	}
}

type client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *lru.Cache[string, []Candidate]
}

// NewClient creates a BAN client. The default limiter stays well under the
// published fair-use limit of 50 requests per second per IP.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search calls /search/ with q and limit parameters.
func (c *client) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, eris.New("ban: empty query")
	}
	if limit < 1 {
		limit = 1
	}

	key := cacheKey(query, limit)
	if c.cache != nil {
		if hit, ok := c.cache.Get(key); ok {
			zap.L().Debug("ban cache hit", zap.String("query", query))
			return hit, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "ban: rate limit")
	}

	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(limit)},
	}
	reqURL := c.baseURL + "/search/?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "ban: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "ban: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "ban: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "ban: parse response")
	}

	candidates := make([]Candidate, 0, len(parsed.Features))
	for _, f := range parsed.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		candidates = append(candidates, Candidate{
			Label:     f.Properties.Label,
			Score:     f.Properties.Score,
			CityCode:  f.Properties.CityCode,
			Longitude: f.Geometry.Coordinates[0],
			Latitude:  f.Geometry.Coordinates[1],
		})
	}

	if c.cache != nil {
		c.cache.Add(key, candidates)
	}
	return candidates, nil
}

// Best returns the first candidate of a limit-1 search.
func (c *client) Best(ctx context.Context, query string) (*Candidate, error) {
	candidates, err := c.Search(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoMatch
	}
	best := candidates[0]
	return &best, nil
}

// cacheKey normalizes the query so trivially different spellings share an
// entry.
func cacheKey(query string, limit int) string {
	return strconv.Itoa(limit) + "|" + strings.ToLower(strings.Join(strings.Fields(query), " "))
}
