package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/secrets"
	"github.com/goliatone/go-intake/pkg/store"
)

// Error is a PostgREST error response.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("supabase: %d %s: %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("supabase: %d: %s", e.Status, msg)
}

// StatusCode reports the HTTP status of the failed request.
func (e *Error) StatusCode() int { return e.Status }

// Client calls the REST endpoint of a project.
type Client struct {
	baseURL string
	apiKey  string
	opts    Options
	logger  *zap.Logger
	tracer  trace.Tracer
}

var (
	_ store.Sink        = (*Client)(nil)
	_ secrets.RPCCaller = (*Client)(nil)
)

// New builds a client for the project at baseURL using the anon or service key.
func New(baseURL, apiKey string, fns ...OptionFn) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("supabase: base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("supabase: parse base url: %w", err)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("supabase: api key is required")
	}
	opts := NewOptions(fns...)
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		opts:    opts,
		logger:  opts.Logger.Named("supabase"),
		tracer:  otel.Tracer("github.com/goliatone/go-intake/pkg/supabase"),
	}, nil
}

// RPC invokes fn with args and decodes the JSON result into out. A nil out
// discards the result.
func (c *Client) RPC(ctx context.Context, fn string, args any, out any) error {
	fn = strings.TrimSpace(fn)
	if fn == "" {
		return errors.New("supabase: function name is required")
	}
	ctx, span := c.tracer.Start(ctx, "supabase.rpc", trace.WithAttributes(attribute.String("rpc.function", fn)))
	defer span.End()

	err := c.do(ctx, "/rest/v1/rpc/"+url.PathEscape(fn), args, nil, out)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Insert adds row to table without asking for the representation back.
func (c *Client) Insert(ctx context.Context, table string, row store.Row) error {
	table = strings.TrimSpace(table)
	if table == "" {
		return errors.New("supabase: table is required")
	}
	ctx, span := c.tracer.Start(ctx, "supabase.insert", trace.WithAttributes(attribute.String("db.table", table)))
	defer span.End()

	headers := http.Header{}
	headers.Set("Prefer", "return=minimal")
	err := c.do(ctx, "/rest/v1/"+url.PathEscape(table), []store.Row{row}, headers, nil)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("insert failed", zap.String("table", table), zap.Error(err))
	}
	return err
}

func (c *Client) do(ctx context.Context, path string, body any, headers http.Header, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	if body == nil {
		body = struct{}{}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("supabase: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("supabase: build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.opts.Schema != "" {
		req.Header.Set("Content-Profile", c.opts.Schema)
		req.Header.Set("Accept-Profile", c.opts.Schema)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("supabase: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode}
		if len(data) > 0 {
			_ = json.Unmarshal(data, apiErr)
		}
		return apiErr
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("supabase: decode response: %w", err)
	}
	return nil
}
