package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dori/taskdeck/internal/model"
	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request UUID, echoed by the server
const RequestIDHeader = "X-Request-ID"

// DefaultTimeout bounds each request when the caller's context has no deadline
const DefaultTimeout = 10 * time.Second

// Client talks to the task REST API rooted at BaseURL
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for baseURL, e.g. "http://localhost:5000/api"
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		userAgent:  "taskdeck",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListTasks implements Service
func (c *Client) ListTasks(ctx context.Context, q model.QueryState) (model.Page, error) {
	var page model.Page
	if err := c.do(ctx, http.MethodGet, "/tasks", q.Values(), nil, &page); err != nil {
		return model.Page{}, err
	}
	if page.Items == nil {
		page.Items = []model.Task{}
	}
	return page, nil
}

// Stats implements Service
func (c *Client) Stats(ctx context.Context) (model.Stats, error) {
	var raw struct {
		Total  *int `json:"total"`
		High   *int `json:"alta"`
		Medium *int `json:"media"`
		Low    *int `json:"baja"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks/stats", nil, nil, &raw); err != nil {
		return model.Stats{}, err
	}
	if raw.Total == nil || raw.High == nil || raw.Medium == nil || raw.Low == nil {
		return model.Stats{}, fmt.Errorf("stats: %w: missing counters", ErrMalformedResponse)
	}
	return model.Stats{Total: *raw.Total, High: *raw.High, Medium: *raw.Medium, Low: *raw.Low}, nil
}

// CreateTask implements Service
func (c *Client) CreateTask(ctx context.Context, in TaskInput) (model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, in, &task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// UpdateTask implements Service
func (c *Client) UpdateTask(ctx context.Context, id int64, in TaskInput) (model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), nil, in, &task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// DeleteTask implements Service
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil)
}

// Health returns the server's health document
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do performs one request. body is encoded as JSON when non-nil; out is
// decoded from a 2xx response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		if out != nil {
			return fmt.Errorf("%s %s: %w: empty body", method, path, ErrMalformedResponse)
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrMalformedResponse, err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	apiErr := &Error{StatusCode: status}
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		apiErr.Message = strings.TrimSpace(body.Error)
	}
	return apiErr
}
