// Package mylist is the HTTP client for the personal watch-list backend.
package mylist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/example/animelist/internal/platform/httpserver"
	"github.com/example/animelist/internal/platform/metrics"
	"github.com/example/animelist/internal/status"
)

const (
	DefaultBaseURL = "http://localhost:3000"
	upstream       = "mylist"
	maxBodyBytes   = 2 << 20
)

// FallbackCreateMsg is shown when the backend rejects a create without a message.
const FallbackCreateMsg = "Failed to add to list."

// Entry is the backend's projection of a list entry joined with its anime.
type Entry struct {
	ID             string      `json:"_id"`
	JikanID        int         `json:"jikanId"`
	Title          string      `json:"title"`
	Image          string      `json:"image,omitempty"`
	Status         status.Code `json:"status"`
	CurrentEpisode int         `json:"currentEpisode"`
	Score          *int        `json:"score,omitempty"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// AnimeRef identifies the catalog item being added.
type AnimeRef struct {
	JikanID int
	Title   string
	Image   string
}

type createRequest struct {
	JikanID int         `json:"jikanId"`
	Title   string      `json:"title"`
	Image   string      `json:"image"`
	Status  status.Code `json:"status"`
}

type updateRequest struct {
	Status status.Code `json:"status"`
}

// APIError is a non-2xx answer from the backend. Msg is what users see.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mylist: status %d: %s", e.Status, e.Msg)
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{BaseURL: strings.TrimRight(cfg.BaseURL, "/"), HTTPClient: &http.Client{Timeout: cfg.Timeout}}
}

// List returns the entries, filtered by code when code is non-empty. The
// slice is never nil, even on error.
func (c *Client) List(ctx context.Context, code status.Code) ([]Entry, error) {
	u := c.BaseURL + "/mylist"
	if code != "" {
		u += "?" + url.Values{"status": {string(code)}}.Encode()
	}
	out := []Entry{}
	b, err := c.do(ctx, "list", http.MethodGet, u, nil)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return []Entry{}, fmt.Errorf("mylist: decode error: %w", err)
	}
	if out == nil {
		out = []Entry{}
	}
	return out, nil
}

// ListedIDs returns the catalog ids of every entry on the list.
func (c *Client) ListedIDs(ctx context.Context) ([]int, error) {
	entries, err := c.List(ctx, "")
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.JikanID)
	}
	return ids, err
}

// Create adds an anime to the list. Duplicates are rejected by the backend.
func (c *Client) Create(ctx context.Context, ref AnimeRef, label status.Label) error {
	body := createRequest{JikanID: ref.JikanID, Title: ref.Title, Image: ref.Image, Status: status.ToCode(label)}
	_, err := c.do(ctx, "create", http.MethodPost, c.BaseURL+"/mylist", body)
	if ae, ok := AsAPIError(err); ok && ae.Msg == "" {
		ae.Msg = FallbackCreateMsg
	}
	return err
}

func (c *Client) Update(ctx context.Context, id string, label status.Label) error {
	_, err := c.do(ctx, "update", http.MethodPut, c.entryURL(id), updateRequest{Status: status.ToCode(label)})
	return err
}

func (c *Client) Remove(ctx context.Context, id string) error {
	_, err := c.do(ctx, "remove", http.MethodDelete, c.entryURL(id), nil)
	return err
}

func (c *Client) entryURL(id string) string {
	return c.BaseURL + "/mylist/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, op, method, u string, body any) ([]byte, error) {
	start := time.Now()
	b, err := c.roundTrip(ctx, method, u, body)
	metrics.UpstreamDuration.WithLabelValues(upstream, op).Observe(time.Since(start).Seconds())
	metrics.UpstreamRequests.WithLabelValues(upstream, op, outcome(err)).Inc()
	return b, err
}

func (c *Client) roundTrip(ctx context.Context, method, u string, body any) ([]byte, error) {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if rid := httpserver.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set(httpserver.RequestIDHeader, rid)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mylist: %s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb struct {
			Msg string `json:"msg"`
		}
		_ = json.Unmarshal(b, &eb)
		return nil, &APIError{Status: resp.StatusCode, Msg: eb.Msg}
	}
	return b, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if _, ok := AsAPIError(err); ok {
		return "http_error"
	}
	return "transport_error"
}
