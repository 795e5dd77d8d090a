// Package sharepoint is a minimal read-only SharePoint REST client for one list.
package sharepoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tinytelemetry/spdash/internal/model"
)

// ErrListFetch is returned (wrapped) when either list lookup answers with a
// non-success status.
var ErrListFetch = model.ErrListFetch

// StatusError carries the status detail of a failed lookup for logging.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sharepoint: %s: unexpected status %d", e.Op, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrListFetch }

// Context is the hosting context the client is built from: the absolute site
// URL and an authenticated transport.
type Context struct {
	SiteURL    string
	HTTPClient *http.Client
}

// Client reads field metadata and items from SharePoint lists.
type Client struct {
	site    string
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithRequestTimeout bounds each lookup. Zero keeps the caller's context deadline only.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient validates the hosting context and returns a client bound to it.
func NewClient(sc Context, opts ...Option) (*Client, error) {
	site := strings.TrimRight(strings.TrimSpace(sc.SiteURL), "/")
	u, err := url.Parse(site)
	if err != nil {
		return nil, fmt.Errorf("sharepoint: invalid site url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("sharepoint: site url must be absolute http(s), got %q", sc.SiteURL)
	}

	hc := sc.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	c := &Client{site: site, http: hc}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SiteURL returns the normalized site address.
func (c *Client) SiteURL() string { return c.site }

type fieldEntry struct {
	Title        string `json:"Title"`
	InternalName string `json:"InternalName"`
}

// Fields returns the metadata of the requested fields in response order.
func (c *Client) Fields(ctx context.Context, listTitle string, names []string) ([]model.FieldDescriptor, error) {
	var entries []fieldEntry
	if err := c.get(ctx, "fields", fieldsURL(c.site, listTitle, names), &entries); err != nil {
		return nil, err
	}

	fields := make([]model.FieldDescriptor, 0, len(entries))
	for _, e := range entries {
		fields = append(fields, model.FieldDescriptor{Key: e.InternalName, DisplayName: e.Title})
	}
	return fields, nil
}

// Items returns up to top items projected to names. Keys outside names are dropped.
func (c *Client) Items(ctx context.Context, listTitle string, names []string, top int) ([]model.Row, error) {
	if top <= 0 || top > model.MaxRows {
		top = model.MaxRows
	}

	var raw []map[string]any
	if err := c.get(ctx, "items", itemsURL(c.site, listTitle, names, top), &raw); err != nil {
		return nil, err
	}
	if len(raw) > top {
		raw = raw[:top]
	}

	rows := make([]model.Row, len(raw))
	for i, item := range raw {
		row := make(model.Row, len(names))
		for _, name := range names {
			if v, ok := item[name]; ok {
				row[name] = v
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// get issues one GET and decodes the OData "value" array into dest.
func (c *Client) get(ctx context.Context, op, endpoint string, dest any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("sharepoint: build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json;odata=nometadata")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sharepoint: %s request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		log.Printf("sharepoint: %s returned %d: %s", op, statusErr.StatusCode, statusErr.Body)
		return statusErr
	}

	var envelope struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("sharepoint: decode %s response: %w", op, err)
	}
	if v := bytes.TrimSpace(envelope.Value); len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return fmt.Errorf("sharepoint: %s response has no value array", op)
	}
	if err := json.Unmarshal(envelope.Value, dest); err != nil {
		return fmt.Errorf("sharepoint: decode %s value: %w", op, err)
	}
	return nil
}
