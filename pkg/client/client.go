package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/rzbill/xstream/pkg/id"
)

// DefaultBaseURL is used when New is given an empty base URL.
const DefaultBaseURL = "http://localhost:8080"

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithHeaders assigns default headers added to every request.
func WithHeaders(h http.Header) Option {
	return func(c *Client) {
		for k, values := range h {
			for _, v := range values {
				c.headers.Add(k, v)
			}
		}
	}
}

// WithTracing wraps the transport with otelhttp so requests carry trace
// context from the global propagator.
func WithTracing() Option {
	return func(c *Client) {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc := *c.httpClient
		hc.Transport = otelhttp.NewTransport(base,
			otelhttp.WithTracerProvider(otel.GetTracerProvider()),
			otelhttp.WithPropagators(otel.GetTextMapPropagator()),
		)
		c.httpClient = &hc
	}
}

// Client talks to an xstream server.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    http.Header
}

// New creates a Client for the provided base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: invalid base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("client: base URL %q must include scheme and host", baseURL)
	}
	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// XAdd appends fields to stream and returns the new entry ID.
func (c *Client) XAdd(ctx context.Context, stream string, fields map[string]any) (id.ID, error) {
	return c.XAddAt(ctx, stream, fields, 0)
}

// XAddAt is XAdd with an explicit millisecond timestamp for ID generation;
// 0 means the server clock. The server still guarantees a strictly
// increasing ID.
func (c *Client) XAddAt(ctx context.Context, stream string, fields map[string]any, ms uint64) (id.ID, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return id.ID{}, fmt.Errorf("client: encode fields: %w", err)
	}
	var q url.Values
	if ms > 0 {
		q = url.Values{"ms": {strconv.FormatUint(ms, 10)}}
	}
	var resp struct {
		ID id.ID `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/xadd/"+url.PathEscape(stream), q, body, &resp); err != nil {
		return id.ID{}, err
	}
	return resp.ID, nil
}

// XRange returns up to count entries of stream from the beginning.
func (c *Client) XRange(ctx context.Context, stream string, count int) ([]Entry, error) {
	return c.XRangeWith(ctx, stream, RangeOptions{Count: count})
}

// XRangeWith is XRange with explicit bounds and a CEL filter.
func (c *Client) XRangeWith(ctx context.Context, stream string, opts RangeOptions) ([]Entry, error) {
	q := url.Values{}
	if opts.Count > 0 {
		q.Set("count", strconv.Itoa(opts.Count))
	}
	if opts.Start != "" {
		q.Set("start", opts.Start)
	}
	if opts.End != "" {
		q.Set("end", opts.End)
	}
	if opts.Filter != "" {
		q.Set("filter", opts.Filter)
	}
	var out []Entry
	if err := c.do(ctx, http.MethodGet, "/xrange/"+url.PathEscape(stream), q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// XLen returns the number of entries in stream.
func (c *Client) XLen(ctx context.Context, stream string) (int, error) {
	var resp struct {
		Length int `json:"length"`
	}
	if err := c.do(ctx, http.MethodGet, "/xlen/"+url.PathEscape(stream), nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Length, nil
}

// XRead reads entries after ids[i] for each streams[i]; an id may be "$".
// Only streams with new entries appear in the result.
func (c *Client) XRead(ctx context.Context, streams, ids []string, count int) ([]StreamEntries, error) {
	if len(streams) != len(ids) {
		return nil, fmt.Errorf("client: %d streams but %d ids", len(streams), len(ids))
	}
	pairs := make([]string, 0, len(streams))
	for i, s := range streams {
		pairs = append(pairs, s+" "+ids[i])
	}
	q := url.Values{}
	q.Set("streams", strings.Join(pairs, " "))
	if count > 0 {
		q.Set("count", strconv.Itoa(count))
	}
	var out []StreamEntries
	if err := c.do(ctx, http.MethodGet, "/xread", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Streams lists the stream names known to the server.
func (c *Client) Streams(ctx context.Context) ([]string, error) {
	var resp struct {
		Streams []string `json:"streams"`
	}
	if err := c.do(ctx, http.MethodGet, "/streams", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Streams, nil
}

// Health returns nil when the server reports itself healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, q), rd)
	if err != nil {
		return err
	}
	for k, values := range c.headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return &HTTPError{StatusCode: resp.StatusCode, Body: data, Header: resp.Header.Clone()}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

// buildURL joins path (already escaped) onto the base URL, keeping any base
// path prefix.
func (c *Client) buildURL(path string, q url.Values) string {
	u := *c.baseURL
	unescaped, err := url.PathUnescape(path)
	if err != nil {
		unescaped = path
	}
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + unescaped
	u.RawPath = strings.TrimRight(c.baseURL.EscapedPath(), "/") + path
	u.RawQuery = q.Encode()
	return u.String()
}
