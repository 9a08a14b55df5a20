// Package jikan is the read-only gateway to the public Jikan catalog: the
// seasonal ticker feed, the filtered recommendation listing and the genre
// taxonomy.
package jikan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/example/animelist/internal/card"
	"github.com/example/animelist/internal/platform/metrics"
)

const (
	upstream     = "jikan"
	maxBodyBytes = 4 << 20
	genreKey     = "jikan:genres:anime"
)

// Genre is one entry of the catalog genre taxonomy.
type Genre struct {
	MalID int    `json:"mal_id"`
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"`
}

type listResponse struct {
	Data []card.RawItem `json:"data"`
}

type genreResponse struct {
	Data []Genre `json:"data"`
}

// Cache stores decoded values by key. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

type Client struct {
	cfg        Config
	HTTPClient *http.Client
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[[]byte]
	cbSet      bool
	cache      Cache
	log        *zap.Logger
}

// Option configures the Client.
type Option func(*Client)

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithCache enables caching of the genre taxonomy.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithCircuitBreaker replaces the default breaker; nil disables it.
func WithCircuitBreaker(cb *gobreaker.CircuitBreaker[[]byte]) Option {
	return func(c *Client) {
		c.cb = cb
		c.cbSet = true
	}
}

func New(cfg Config, opts ...Option) *Client {
	cfg = cfg.withDefaults()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	c := &Client{
		cfg:        cfg,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	if !c.cbSet {
		c.cb = NewCircuitBreaker("jikan", c.log)
	}
	return c
}

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.cfg }

// NewCircuitBreaker opens after five consecutive failures. Non-2xx answers
// below 500 count as successes: the catalog answered.
func NewCircuitBreaker(name string, log *zap.Logger) *gobreaker.CircuitBreaker[[]byte] {
	if log == nil {
		log = zap.NewNop()
	}
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			if se, ok := AsStatusError(err); ok {
				return se.Code < http.StatusInternalServerError && se.Code != http.StatusTooManyRequests
			}
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("circuit-breaker state change", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// FetchSeasonalOrCatalog tries the current season first and falls back to
// the unfiltered catalog when that fails or is empty.
func (c *Client) FetchSeasonalOrCatalog(ctx context.Context) ([]card.RawItem, error) {
	sources := []struct {
		op   string
		path string
	}{
		{"seasons_now", "/seasons/now"},
		{"catalog", "/anime"},
	}
	for _, src := range sources {
		items, err := c.fetchList(ctx, src.op, src.path, nil)
		if err != nil {
			c.log.Warn("catalog source failed", zap.String("source", src.op), zap.Error(err))
			continue
		}
		if len(items) > 0 {
			return items, nil
		}
	}
	return nil, ErrNoData
}

// FetchFiltered lists catalog items for rating, ordered by popularity and
// capped at the configured limit. genreID 0 means any genre. An empty rating
// uses the configured default.
func (c *Client) FetchFiltered(ctx context.Context, rating string, genreID int) ([]card.RawItem, error) {
	if rating == "" {
		rating = c.cfg.DefaultRating
	}
	q := url.Values{}
	q.Set("rating", strings.ToLower(rating))
	q.Set("order_by", c.cfg.OrderBy)
	q.Set("limit", strconv.Itoa(c.cfg.Limit))
	if genreID > 0 {
		q.Set("genres", strconv.Itoa(genreID))
	}
	items, err := c.fetchList(ctx, "filtered", "/anime", q)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []card.RawItem{}
	}
	return items, nil
}

// FetchGenres returns the genre taxonomy without denylisted names.
func (c *Client) FetchGenres(ctx context.Context) ([]Genre, error) {
	if c.cache != nil {
		var cached []Genre
		ok, err := c.cache.Get(ctx, genreKey, &cached)
		if err != nil {
			c.log.Warn("genre cache read failed", zap.Error(err))
		} else if ok {
			metrics.CacheLookups.WithLabelValues("genres", "hit").Inc()
			return cached, nil
		}
		metrics.CacheLookups.WithLabelValues("genres", "miss").Inc()
	}

	b, err := c.get(ctx, "genres", "/genres/anime", nil)
	if err != nil {
		return nil, err
	}
	var out genreResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("jikan: decode error: %w body=%q", err, snippet(b))
	}
	genres := FilterGenres(out.Data, c.cfg.GenreDenylist)

	if c.cache != nil {
		if err := c.cache.Set(ctx, genreKey, genres); err != nil {
			c.log.Warn("genre cache write failed", zap.Error(err))
		}
	}
	return genres, nil
}

// FilterGenres drops every genre whose name is on the denylist.
func FilterGenres(genres []Genre, denylist []string) []Genre {
	deny := make(map[string]struct{}, len(denylist))
	for _, n := range denylist {
		deny[n] = struct{}{}
	}
	out := make([]Genre, 0, len(genres))
	for _, g := range genres {
		if _, ok := deny[g.Name]; ok {
			continue
		}
		out = append(out, g)
	}
	return out
}

func (c *Client) fetchList(ctx context.Context, op, path string, q url.Values) ([]card.RawItem, error) {
	b, err := c.get(ctx, op, path, q)
	if err != nil {
		return nil, err
	}
	var out listResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("jikan: decode error: %w body=%q", err, snippet(b))
	}
	return out.Data, nil
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.UpstreamDuration.WithLabelValues(upstream, op).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.UpstreamRequests.WithLabelValues(upstream, op, "rejected").Inc()
		return nil, err
	}

	u := c.cfg.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var (
		b   []byte
		err error
	)
	if c.cb == nil {
		b, err = c.do(ctx, u)
	} else {
		b, err = c.cb.Execute(func() ([]byte, error) { return c.do(ctx, u) })
	}

	metrics.UpstreamRequests.WithLabelValues(upstream, op, outcome(err)).Inc()
	return b, err
}

func (c *Client) do(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: snippet(b)}
	}
	return b, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	default:
		if _, ok := AsStatusError(err); ok {
			return "http_error"
		}
		return "transport_error"
	}
}

func snippet(b []byte) string {
	return string(b[:min(len(b), 200)])
}
