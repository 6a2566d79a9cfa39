// Package gcs implements the txarchive ObjectStorage port against Google
// Cloud Storage using the JSON API's simple media upload, carried over the
// shared retryable HTTP client.
package gcs

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"

	"github.com/gabapcia/tokenwatch/internal/pkg/transport/http"
	"github.com/gabapcia/tokenwatch/internal/txarchive"

	"github.com/hashicorp/go-retryablehttp"
)

// defaultBaseURL is the public Google Cloud Storage endpoint.
const defaultBaseURL = "https://storage.googleapis.com"

// uploadPathFormat is the simple media upload path: bucket in the path, the
// object name as a query parameter.
const uploadPathFormat = "%s/upload/storage/v1/b/%s/o?uploadType=media&name=%s"

// errorBodyLimit caps how much of an error response body is captured into
// the returned error.
const errorBodyLimit = 512

// config holds optional client settings.
type config struct {
	baseURL    string
	httpClient *retryablehttp.Client
}

// Option configures the GCS client.
type Option func(*config)

// WithBaseURL overrides the storage endpoint. Intended for tests pointing at
// a local server.
func WithBaseURL(u string) Option {
	return func(c *config) {
		c.baseURL = u
	}
}

// WithHTTPClient replaces the underlying retryable HTTP client.
func WithHTTPClient(hc *retryablehttp.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// client uploads objects into a fixed bucket using a bearer token credential.
type client struct {
	bucket      string
	accessToken string

	baseURL    string
	httpClient *retryablehttp.Client
}

// Ensure compile-time compliance with the txarchive storage port.
var _ txarchive.ObjectStorage = (*client)(nil)

// New creates a GCS object storage adapter for the given bucket. The access
// token is treated as an already-resolved credential; obtaining and
// refreshing it is the deployment's concern.
func New(bucket, accessToken string, opts ...Option) *client {
	cfg := config{
		baseURL:    defaultBaseURL,
		httpClient: http.NewClient(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &client{
		bucket:      bucket,
		accessToken: accessToken,
		baseURL:     cfg.baseURL,
		httpClient:  cfg.httpClient,
	}
}

// Put uploads data under the given object name, replacing any existing
// object. Transient HTTP failures are retried by the underlying client;
// anything that still fails is returned to the caller unretried.
func (c *client) Put(ctx context.Context, key string, data []byte) error {
	endpoint := fmt.Sprintf(uploadPathFormat,
		c.baseURL,
		url.PathEscape(c.bucket),
		url.QueryEscape(key),
	)

	req, err := retryablehttp.NewRequestWithContext(ctx, nethttp.MethodPost, endpoint, data)
	if err != nil {
		return fmt.Errorf("building gcs upload request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gcs upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return fmt.Errorf("gcs upload rejected: status %d: %s", resp.StatusCode, body)
	}

	return nil
}
