package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// Client talks to a single Supabase project with the service role key.
// It is safe for concurrent use.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// Bucket returns the configured storage bucket.
func (c *Client) Bucket() string {
	return c.cfg.Bucket
}

// Params builds PostgREST query strings.
type Params struct {
	values url.Values
}

// NewParams returns an empty parameter set.
func NewParams() Params {
	return Params{values: url.Values{}}
}

// Select restricts the returned columns.
func (p Params) Select(columns string) Params {
	p.values.Set("select", columns)
	return p
}

// Eq adds an equality filter on column.
func (p Params) Eq(column, value string) Params {
	p.values.Set(column, "eq."+value)
	return p
}

// IsNull adds an "is null" filter on column.
func (p Params) IsNull(column string) Params {
	p.values.Set(column, "is.null")
	return p
}

// Order sorts by column.
func (p Params) Order(column string, desc bool) Params {
	dir := "asc"
	if desc {
		dir = "desc"
	}
	p.values.Set("order", column+"."+dir)
	return p
}

// Limit caps the number of returned rows.
func (p Params) Limit(n int) Params {
	p.values.Set("limit", strconv.Itoa(n))
	return p
}

// Offset skips the first n rows.
func (p Params) Offset(n int) Params {
	p.values.Set("offset", strconv.Itoa(n))
	return p
}

// Encode returns the URL-encoded query string.
func (p Params) Encode() string {
	if p.values == nil {
		return ""
	}
	return p.values.Encode()
}

// Select runs GET /rest/v1/{table} and decodes the JSON array into out.
func (c *Client) Select(ctx context.Context, table string, params Params, out any) error {
	return c.rest(ctx, http.MethodGet, table, params, nil, out)
}

// Insert runs POST /rest/v1/{table} and decodes the inserted rows into out.
func (c *Client) Insert(ctx context.Context, table string, row any, out any) error {
	return c.rest(ctx, http.MethodPost, table, NewParams(), row, out)
}

// Update runs PATCH /rest/v1/{table} with the given filters and decodes the
// updated rows into out (out may be nil).
func (c *Client) Update(ctx context.Context, table string, params Params, patch any, out any) error {
	return c.rest(ctx, http.MethodPatch, table, params, patch, out)
}

func (c *Client) rest(ctx context.Context, method, table string, params Params, body any, out any) error {
	u := fmt.Sprintf("%s/rest/v1/%s", c.cfg.baseURL(), url.PathEscape(table))
	if q := params.Encode(); q != "" {
		u += "?" + q
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("supabase: encode %s body: %w", table, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	c.authorize(req)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	return c.do(req, out)
}

// authorize sets the headers Supabase expects for the service role.
func (c *Client) authorize(req *http.Request) {
	req.Header.Set("apikey", c.cfg.ServiceRoleKey)
	req.Header.Set("Authorization", "Bearer "+c.cfg.ServiceRoleKey)
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return newAPIError(res)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("supabase: decode response: %w", err)
	}
	return nil
}
