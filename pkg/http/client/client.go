package client

import (
	"context"
	"io"
	"net/http"
	"time"
)

type Response struct {
	StatusCode int
	Body       []byte
}

type Interface interface {
	Get(ctx context.Context, path string) (*Response, error)
	GetWithHeaders(ctx context.Context, path string, header http.Header) (*Response, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	throttle   *Throttle
	GetFunc    func(ctx context.Context, path string) (*Response, error)
}

type Options struct {
	BaseURL  string
	Timeout  time.Duration
	Throttle *Throttle
}

func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	if opts.Throttle == nil {
		opts.Throttle = NewThrottle(DefaultMaxConcurrent)
	}

	return &Client{
		baseURL: opts.BaseURL,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		throttle: opts.Throttle,
	}
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.GetWithHeaders(ctx, path, nil)
}

// GetWithHeaders performs a throttled GET. The throttle slot is released
// whether the request succeeds, fails or is cancelled.
func (c *Client) GetWithHeaders(ctx context.Context, path string, header http.Header) (*Response, error) {
	if err := c.throttle.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.throttle.Release()

	if c.GetFunc != nil {
		return c.GetFunc(ctx, path)
	}

	var fullURL string
	if c.baseURL == "" {
		fullURL = path // If no base URL, treat path as full URL
	} else {
		fullURL = c.baseURL + path // Otherwise combine them
	}

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, err
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			return
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
