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

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	v1 "github.com/kubev2v/taskengine/api/v1"
	srvErrors "github.com/kubev2v/taskengine/pkg/errors"
)

const apiPrefix = "/api/v1"

// ErrRateLimited is returned when the server kept refusing a load after every retry.
var ErrRateLimited = errors.New("load rate limited by the server")

// Client talks to the HTTP API of a taskengine server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxTries   uint
}

type Option func(c *Client)

// WithToken sends token as a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMaxTries bounds the attempts of a rate limited SubmitLoad.
func WithMaxTries(n uint) Option {
	return func(c *Client) {
		c.maxTries = n
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("failed to initialize client: invalid server url %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
		maxTries:   5,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Workers returns the pool status
// GET /api/v1/workers
func (c *Client) Workers(ctx context.Context) (*v1.PoolStatus, error) {
	var status v1.PoolStatus
	if err := c.do(ctx, http.MethodGet, "/workers", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// SubmitLoad schedules the load of path on the server and returns its id. Requests refused
// with 429 are retried, honoring Retry-After.
// POST /api/v1/loads
func (c *Client) SubmitLoad(ctx context.Context, path string) (string, error) {
	id, err := backoff.Retry(ctx, func() (string, error) {
		var created v1.LoadCreated
		err := c.do(ctx, http.MethodPost, "/loads", v1.CreateLoadRequest{Path: path}, &created)

		var limited *rateLimitedError
		switch {
		case err == nil:
			return created.Id, nil
		case errors.As(err, &limited):
			zap.S().Named("client").Debugw("load rate limited, retrying", "path", path, "retry-after", limited.after)
			return "", backoff.RetryAfter(limited.after)
		default:
			return "", backoff.Permanent(err)
		}
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(c.maxTries))
	if err != nil {
		var retryAfter *backoff.RetryAfterError
		if errors.As(err, &retryAfter) {
			return "", ErrRateLimited
		}
		return "", err
	}
	return id, nil
}

// GetLoad returns the status of a load
// GET /api/v1/loads/{id}
func (c *Client) GetLoad(ctx context.Context, id string) (*v1.Load, error) {
	var load v1.Load
	if err := c.do(ctx, http.MethodGet, "/loads/"+url.PathEscape(id), nil, &load); err != nil {
		return nil, err
	}
	return &load, nil
}

// ListLoads returns every load known to the server
// GET /api/v1/loads
func (c *Client) ListLoads(ctx context.Context) ([]v1.Load, error) {
	var list v1.LoadList
	if err := c.do(ctx, http.MethodGet, "/loads", nil, &list); err != nil {
		return nil, err
	}
	return list.Loads, nil
}

// CancelLoad releases a load, abandoning it if it is still running
// DELETE /api/v1/loads/{id}
func (c *Client) CancelLoad(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/loads/"+url.PathEscape(id), nil, nil)
}

// ListHistory returns one page of the task history
// GET /api/v1/history
func (c *Client) ListHistory(ctx context.Context, params v1.ListHistoryParams) (*v1.HistoryListResponse, error) {
	q := url.Values{}
	for _, o := range params.Outcome {
		q.Add("outcome", o)
	}
	if params.Name != "" {
		q.Set("name", params.Name)
	}
	if params.Since != "" {
		q.Set("since", params.Since)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(params.PageSize))
	}

	path := "/history"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp v1.HistoryListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WaitLoad polls a load every interval until it reaches a final state.
func (c *Client) WaitLoad(ctx context.Context, id string, interval time.Duration, onProgress func(v1.Load)) (*v1.Load, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		load, err := c.GetLoad(ctx, id)
		if err != nil {
			return nil, err
		}
		if onProgress != nil {
			onProgress(*load)
		}
		if IsFinal(load.State) {
			return load, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// IsFinal reports whether a load in state will not change anymore.
func IsFinal(state string) bool {
	switch state {
	case "completed", "error", "failed":
		return true
	default:
		return false
	}
}

type rateLimitedError struct {
	after int
}

func (e *rateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %ds", e.after)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
		}
		return nil
	case http.StatusNoContent, http.StatusCreated:
		return nil
	case http.StatusNotFound:
		return srvErrors.NewResourceNotFoundError("resource", path)
	case http.StatusBadRequest:
		return srvErrors.NewInvalidArgumentError("request", errorMessage(resp))
	case http.StatusServiceUnavailable:
		return srvErrors.NewServiceUnavailableError(errorMessage(resp))
	case http.StatusTooManyRequests:
		after, err := strconv.Atoi(resp.Header.Get("Retry-After"))
		if err != nil || after < 1 {
			after = 1
		}
		return &rateLimitedError{after: after}
	case http.StatusUnauthorized:
		return fmt.Errorf("unauthorized: %s", errorMessage(resp))
	default:
		return fmt.Errorf("%s %s failed: %s: %s", method, path, resp.Status, errorMessage(resp))
	}
}

func errorMessage(resp *http.Response) string {
	var e v1.Error
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
		return resp.Status
	}
	return e.Error
}
