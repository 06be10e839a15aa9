package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/facultymis/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        string
}

// fakeS3 answers path-style S3 calls and records them
type fakeS3 struct {
	mu       sync.Mutex
	requests []recordedRequest
	headCode int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		Body:        string(body),
	})
	headCode := f.headCode
	f.mu.Unlock()

	switch r.Method {
	case http.MethodHead:
		w.WriteHeader(headCode)
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}
}

func (f *fakeS3) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestArchive(t *testing.T, fake *fakeS3) *S3ExportArchive {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	a, err := NewS3ExportArchive(context.Background(), config.StorageConfig{
		Endpoint:        srv.URL,
		Region:          "us-east-1",
		Bucket:          "fmis-exports",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
		KeyPrefix:       "exports",
	}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	a.now = func() time.Time { return time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC) }
	return a
}

func TestNewS3ExportArchive_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("bucket required", func(t *testing.T) {
		_, err := NewS3ExportArchive(ctx, config.StorageConfig{Region: "us-east-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket is required")
	})

	t.Run("half a credential pair rejected", func(t *testing.T) {
		_, err := NewS3ExportArchive(ctx, config.StorageConfig{Region: "us-east-1", Bucket: "b", AccessKeyID: "k"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be set together")
	})

	t.Run("relative endpoint rejected", func(t *testing.T) {
		_, err := NewS3ExportArchive(ctx, config.StorageConfig{Region: "us-east-1", Bucket: "b", Endpoint: "not a url"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid storage endpoint")
	})

	t.Run("valid config", func(t *testing.T) {
		a, err := NewS3ExportArchive(ctx, config.StorageConfig{
			Region: "us-east-1", Bucket: "b", Endpoint: "http://localhost:9000",
			AccessKeyID: "k", SecretAccessKey: "s", UsePathStyle: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "b", a.Bucket())
	})
}

func TestS3ExportArchive_Store(t *testing.T) {
	fake := &fakeS3{}
	a := newTestArchive(t, fake)

	obj, err := a.Store(context.Background(), "fac_teach_data_CS.csv", []byte("\"Sl. No\"\n"), "text/csv; charset=utf-8")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(obj.Key, "exports/2026/03/09/"), obj.Key)
	assert.True(t, strings.HasSuffix(obj.Key, "/fac_teach_data_CS.csv"), obj.Key)
	assert.Equal(t, 9, obj.Size)

	req := fake.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/fmis-exports/"+obj.Key, req.Path)
	assert.Equal(t, "text/csv; charset=utf-8", req.ContentType)
	assert.Equal(t, "\"Sl. No\"\n", req.Body)

	_, err = a.Store(context.Background(), " ", nil, "text/csv")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestS3ExportArchive_DownloadURL(t *testing.T) {
	a := newTestArchive(t, &fakeS3{})

	link, expiresAt, err := a.DownloadURL(context.Background(), "exports/2026/03/09/x/report.csv", 10*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, link, "/fmis-exports/exports/2026/03/09/x/report.csv")
	assert.Contains(t, link, "X-Amz-Expires=600")
	assert.Equal(t, time.Date(2026, 3, 9, 10, 10, 0, 0, time.UTC), expiresAt)

	link, _, err = a.DownloadURL(context.Background(), "k", 0)
	require.NoError(t, err)
	assert.Contains(t, link, "X-Amz-Expires=900")

	_, _, err = a.DownloadURL(context.Background(), "", time.Minute)
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestS3ExportArchive_EnsureBucket(t *testing.T) {
	t.Run("existing bucket", func(t *testing.T) {
		fake := &fakeS3{headCode: http.StatusOK}
		a := newTestArchive(t, fake)
		require.NoError(t, a.EnsureBucket(context.Background()))
		assert.Len(t, fake.requests, 1)
	})

	t.Run("missing bucket is created", func(t *testing.T) {
		fake := &fakeS3{headCode: http.StatusNotFound}
		a := newTestArchive(t, fake)
		require.NoError(t, a.EnsureBucket(context.Background()))
		last := fake.last()
		assert.Equal(t, http.MethodPut, last.Method)
		assert.Equal(t, "/fmis-exports", strings.TrimSuffix(last.Path, "/"))
	})
}

func TestS3ExportArchive_Delete(t *testing.T) {
	fake := &fakeS3{}
	a := newTestArchive(t, fake)
	require.NoError(t, a.Delete(context.Background(), "exports/a.csv"))
	assert.Equal(t, http.MethodDelete, fake.last().Method)
	assert.ErrorIs(t, a.Delete(context.Background(), ""), ErrEmptyKey)
}

func TestArchiveKey(t *testing.T) {
	now := time.Date(2026, 1, 2, 23, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))

	key := ArchiveKey("/exports/", "../../etc/fac_awards_data_all.csv", now)
	parts := strings.Split(key, "/")
	require.Len(t, parts, 6)
	assert.Equal(t, []string{"exports", "2026", "01", "02"}, parts[:4])
	assert.Len(t, parts[4], 36)
	assert.Equal(t, "fac_awards_data_all.csv", parts[5])

	assert.NotEqual(t, ArchiveKey("", "a.csv", now), ArchiveKey("", "a.csv", now))
	assert.True(t, strings.HasPrefix(ArchiveKey("", "a.csv", now), "2026/"))
}

func TestMemoryExportArchive(t *testing.T) {
	m := NewMemoryExportArchive("http://localhost:8080/archive/")
	ctx := context.Background()

	content := []byte("a,b\n")
	obj, err := m.Store(ctx, "x.csv", content, "text/csv")
	require.NoError(t, err)
	content[0] = 'z'

	got, ct, ok := m.Get(obj.Key)
	require.True(t, ok)
	assert.Equal(t, "a,b\n", string(got))
	assert.Equal(t, "text/csv", ct)

	link, _, err := m.DownloadURL(ctx, obj.Key, time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "http://localhost:8080/archive/"+obj.Key+"?expires="))

	require.NoError(t, m.Delete(ctx, obj.Key))
	assert.Equal(t, 0, m.Len())
	_, err = m.Store(ctx, "", nil, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}
