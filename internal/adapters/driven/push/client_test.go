package push

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/adpush/internal/core/domain"
)

type recordedRequest struct {
	Method      string
	Path        string
	Query       string
	Auth        string
	ContentType string
	Encryption  string
	Body        string
}

// fakePlatform serves the Push API and the blob store from one server.
type fakePlatform struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   map[string]int
	server   *httptest.Server
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()
	f := &fakePlatform{status: make(map[string]int)}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakePlatform) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.RawQuery,
		Auth:        r.Header.Get("Authorization"),
		ContentType: r.Header.Get("Content-Type"),
		Encryption:  r.Header.Get("x-amz-server-side-encryption"),
		Body:        string(body),
	})
	status, ok := f.status[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if ok {
		if status == http.StatusTooManyRequests {
			w.Header().Set("Retry-After", "1")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte("nope"))
		return
	}

	if r.URL.Path == "/v1/organizations/myorg/files" {
		_, _ = w.Write([]byte(`{"uploadUri":"` + f.server.URL + `/blob/abc?X-Amz-Signature=s","fileId":"file-1"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (f *fakePlatform) client() *Client {
	return NewClient(context.Background(), Config{
		Platform:          f.server.URL,
		Org:               "myorg",
		Source:            "src-1",
		APIKey:            "xx-key",
		RequestsPerSecond: 1000,
	})
}

func TestClient_FullProtocol(t *testing.T) {
	f := newFakePlatform(t)
	c := f.client()
	ctx := context.Background()

	require.NoError(t, c.SetStatus(ctx, domain.StatusRebuild))
	container, err := c.CreateFileContainer(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Upload(ctx, container, []byte(`{"AddOrUpdate":[]}`)))
	require.NoError(t, c.CommitBatch(ctx, container.FileID, 1700000000000))
	require.NoError(t, c.SetStatus(ctx, domain.StatusIdle))
	require.NoError(t, c.DeleteOlderThan(ctx, 1700000000000-190080000))

	assert.Equal(t, "file-1", container.FileID)
	require.Len(t, f.requests, 6)

	rebuild := f.requests[0]
	assert.Equal(t, http.MethodPost, rebuild.Method)
	assert.Equal(t, "/v1/organizations/myorg/sources/src-1/status", rebuild.Path)
	assert.Equal(t, "statusType=REBUILD", rebuild.Query)
	assert.Equal(t, "Bearer xx-key", rebuild.Auth)
	assert.Equal(t, "application/json", rebuild.ContentType)

	files := f.requests[1]
	assert.Equal(t, http.MethodPost, files.Method)
	assert.Equal(t, "/v1/organizations/myorg/files", files.Path)

	upload := f.requests[2]
	assert.Equal(t, http.MethodPut, upload.Method)
	assert.Equal(t, "/blob/abc", upload.Path)
	assert.Empty(t, upload.Auth, "blob upload must not carry the API key")
	assert.Equal(t, "application/octet-stream", upload.ContentType)
	assert.Equal(t, "AES256", upload.Encryption)
	assert.Equal(t, `{"AddOrUpdate":[]}`, upload.Body)

	commit := f.requests[3]
	assert.Equal(t, http.MethodPut, commit.Method)
	assert.Equal(t, "/v1/organizations/myorg/sources/src-1/documents/batch", commit.Path)
	assert.Equal(t, "fileId=file-1&orderingId=1700000000000", commit.Query)

	assert.Equal(t, "statusType=IDLE", f.requests[4].Query)

	prune := f.requests[5]
	assert.Equal(t, http.MethodDelete, prune.Method)
	assert.Equal(t, "/v1/organizations/myorg/sources/src-1/documents/olderthan", prune.Path)
	assert.Equal(t, "orderingId=1699809920000", prune.Query)
}

func TestClient_APIError(t *testing.T) {
	f := newFakePlatform(t)
	f.status["POST /v1/organizations/myorg/sources/src-1/status"] = http.StatusUnauthorized

	err := f.client().SetStatus(context.Background(), domain.StatusRebuild)

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsNotFound(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "nope", apiErr.Message)
}

func TestClient_UploadRequires200(t *testing.T) {
	f := newFakePlatform(t)
	f.status["PUT /blob/abc"] = http.StatusNoContent
	c := f.client()

	container, err := c.CreateFileContainer(context.Background())
	require.NoError(t, err)
	err = c.Upload(context.Background(), container, []byte("{}"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUploadRejected)
	assert.NotContains(t, err.Error(), "X-Amz-Signature")
}

func TestClient_RateLimited(t *testing.T) {
	f := newFakePlatform(t)
	f.status["DELETE /v1/organizations/myorg/sources/src-1/documents/olderthan"] = http.StatusTooManyRequests
	c := f.client()

	err := c.DeleteOlderThan(context.Background(), 1)

	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.False(t, c.RateLimiter().RetryAt().IsZero())
}

func TestClient_BadContainerResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := NewClient(context.Background(), Config{Platform: server.URL, Org: "o", Source: "s", APIKey: "k"})
	_, err := c.CreateFileContainer(context.Background())

	assert.Error(t, err)
}

func TestClient_CancelledContext(t *testing.T) {
	f := newFakePlatform(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.client().SetStatus(ctx, domain.StatusIdle)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.requests)
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://push.cloud.coveo.com", baseURL("push.cloud.coveo.com"))
	assert.Equal(t, "https://push.cloud.coveo.com", baseURL("push.cloud.coveo.com/"))
	assert.Equal(t, "http://127.0.0.1:8080", baseURL("http://127.0.0.1:8080"))
}

func TestClient_EscapesPathSegments(t *testing.T) {
	c := NewClient(context.Background(), Config{Platform: "h", Org: "my org", Source: "a/b"})

	assert.Equal(t, "https://h/v1/organizations/my%20org/sources/a%2Fb/status?statusType=IDLE",
		c.sourceURL("/status", map[string][]string{"statusType": {"IDLE"}}))
}
