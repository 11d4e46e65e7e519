// Package httpfetch is the network-backed fetch.Fetcher: it GETs the URL and
// returns the body of a 200 response.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/raysh454/addrmeta/internal/fetch"
	"github.com/raysh454/addrmeta/internal/logging"
)

var ErrBodyTooLarge = errors.New("response body too large")

// StatusError is returned for any response other than 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Fetcher is a net/http backed implementation of fetch.Fetcher.
type Fetcher struct {
	client      *http.Client
	maxBodySize int64
	userAgent   string
	logger      logging.Logger
}

// New returns a Fetcher. If httpClient is nil a client with cfg.Timeout is
// constructed.
func New(cfg fetch.HTTPConfig, logger logging.Logger, httpClient *http.Client) *Fetcher {
	componentLogger := logging.OrNop(logger).With(logging.Field{Key: "component", Value: "httpfetch"})

	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = fetch.DefaultConfig().HTTP.Timeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = fetch.DefaultConfig().HTTP.MaxBodySize
	}

	componentLogger.Debug("created http fetcher",
		logging.Field{Key: "timeout", Value: httpClient.Timeout.String()},
		logging.Field{Key: "max_body_size", Value: maxBody})

	return &Fetcher{
		client:      httpClient,
		maxBodySize: maxBody,
		userAgent:   cfg.UserAgent,
		logger:      componentLogger,
	}
}

// Register makes the http backend available to fetch.New.
func Register() {
	fetch.RegisterBackend(string(fetch.BackendHTTP), func(cfg fetch.Config, logger logging.Logger) (fetch.Fetcher, error) {
		return New(cfg.HTTP, logger, nil), nil
	})
}

// Fetch implements fetch.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*fetch.Response, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, &fetch.UnroutableError{URL: url}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	f.logger.Debug("sending http request", logging.Field{Key: "url", Value: url})

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("http request failed",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxBodySize))
		f.logger.Warn("unexpected status",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "status", Value: resp.StatusCode})
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		f.logger.Warn("failed to read response body",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, fmt.Errorf("GET %s: %w (limit %d bytes)", url, ErrBodyTooLarge, f.maxBodySize)
	}

	return &fetch.Response{URL: url, Data: body, FetchedAt: time.Now()}, nil
}

// HTTPClient returns the underlying *http.Client.
func (f *Fetcher) HTTPClient() *http.Client {
	return f.client
}

var _ fetch.Fetcher = (*Fetcher)(nil)
