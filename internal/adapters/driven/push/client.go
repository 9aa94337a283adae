package push

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

	"golang.org/x/oauth2"

	"github.com/custodia-labs/adpush/internal/core/domain"
	"github.com/custodia-labs/adpush/internal/core/ports/driven"
	"github.com/custodia-labs/adpush/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.PushClient = (*Client)(nil)

const (
	// DefaultTimeout is the default Push API request timeout.
	DefaultTimeout = 30 * time.Second

	// UploadTimeout bounds the blob upload, which carries the whole batch.
	UploadTimeout = 10 * time.Minute

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 4096
)

// Config identifies the push source.
type Config struct {
	// Platform is the Push API host, e.g. "push.cloud.coveo.com".
	// A value with an http:// or https:// scheme is used as-is.
	Platform string
	Org      string
	Source   string
	APIKey   string

	RequestsPerSecond int
}

// Client talks to one push source.
type Client struct {
	api         *http.Client
	blob        *http.Client
	rateLimiter *RateLimiter
	orgURL      string
	source      string
}

// NewClient creates a Push API client authenticated with cfg.APIKey.
func NewClient(ctx context.Context, cfg Config) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.APIKey},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	return &Client{
		api:         tc,
		blob:        &http.Client{Timeout: UploadTimeout},
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond),
		orgURL:      baseURL(cfg.Platform) + "/v1/organizations/" + url.PathEscape(cfg.Org),
		source:      url.PathEscape(cfg.Source),
	}
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// SetStatus announces the source status.
func (c *Client) SetStatus(ctx context.Context, status domain.SourceStatus) error {
	q := url.Values{"statusType": {status.String()}}
	_, err := c.do(ctx, http.MethodPost, c.sourceURL("/status", q))
	if err != nil {
		return fmt.Errorf("set status %s: %w", status, err)
	}
	return nil
}

// CreateFileContainer requests a pre-signed upload target.
func (c *Client) CreateFileContainer(ctx context.Context) (*domain.FileContainer, error) {
	body, err := c.do(ctx, http.MethodPost, c.orgURL+"/files")
	if err != nil {
		return nil, fmt.Errorf("create file container: %w", err)
	}

	var container domain.FileContainer
	if err := json.Unmarshal(body, &container); err != nil {
		return nil, fmt.Errorf("decode file container: %w", err)
	}
	return &container, nil
}

// Upload writes the batch to the container. Only HTTP 200 counts as success.
func (c *Client) Upload(ctx context.Context, container *domain.FileContainer, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, container.UploadURI, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("x-amz-server-side-encryption", "AES256")

	logger.Debug("PUT %s (%d bytes)", redact(container.UploadURI), len(payload))
	resp, err := c.blob.Do(req)
	if err != nil {
		return fmt.Errorf("upload batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %w", domain.ErrUploadRejected, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
			URL:        redact(container.UploadURI),
		})
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// CommitBatch asks the source to ingest the uploaded file.
func (c *Client) CommitBatch(ctx context.Context, fileID string, orderingID int64) error {
	q := url.Values{
		"fileId":     {fileID},
		"orderingId": {strconv.FormatInt(orderingID, 10)},
	}
	if _, err := c.do(ctx, http.MethodPut, c.sourceURL("/documents/batch", q)); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// DeleteOlderThan removes documents whose ordering id is below threshold.
func (c *Client) DeleteOlderThan(ctx context.Context, threshold int64) error {
	q := url.Values{"orderingId": {strconv.FormatInt(threshold, 10)}}
	if _, err := c.do(ctx, http.MethodDelete, c.sourceURL("/documents/olderthan", q)); err != nil {
		return fmt.Errorf("delete stale documents: %w", err)
	}
	return nil
}

func (c *Client) sourceURL(path string, q url.Values) string {
	return c.orgURL + "/sources/" + c.source + path + "?" + q.Encode()
}

// do sends a body-less Push API request and returns the response body.
func (c *Client) do(ctx context.Context, method, target string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("%s %s", method, target)
	resp, err := c.api.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.rateLimiter.CheckRateLimit(resp); err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(msg)),
			URL:        target,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func baseURL(platform string) string {
	platform = strings.TrimRight(platform, "/")
	if strings.HasPrefix(platform, "http://") || strings.HasPrefix(platform, "https://") {
		return platform
	}
	return "https://" + platform
}

// redact drops the query string, which carries the pre-signed credentials.
func redact(uri string) string {
	if i := strings.IndexByte(uri, '?'); i >= 0 {
		return uri[:i]
	}
	return uri
}
