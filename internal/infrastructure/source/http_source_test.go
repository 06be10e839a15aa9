package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/domain/shared"
	"github.com/facultymis/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func teachSchema(t *testing.T) *report.EntitySchema {
	t.Helper()
	s, err := report.DefaultRegistry().GetSchema("fac_teach")
	require.NoError(t, err)
	return s
}

func newTestSource(t *testing.T, baseURL string, retries int) *HTTPSource {
	t.Helper()
	s, err := NewHTTPSource(config.SourceConfig{
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		MaxRetries:  retries,
		RetryDelay:  time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		BearerToken: "svc-token",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

type recordedRequest struct {
	path     string
	rawQuery string
	branches []string
	hasParam bool
	auth     string
}

func recordingServer(t *testing.T, status int, body string) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		_, has := r.URL.Query()[branchesKey]
		reqs = append(reqs, recordedRequest{
			path:     r.URL.Path,
			rawQuery: r.URL.RawQuery,
			branches: r.URL.Query()[branchesKey],
			hasParam: has,
			auth:     r.Header.Get("Authorization"),
		})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func TestHTTPSource_Routing(t *testing.T) {
	schema := teachSchema(t)
	ctx := context.Background()

	t.Run("all units hits the unscoped endpoint without branches", func(t *testing.T) {
		srv, reqs := recordingServer(t, http.StatusOK, `{"data":[]}`)
		s := newTestSource(t, srv.URL, 0)

		res, err := s.FetchRows(ctx, schema, report.AllUnits())
		require.NoError(t, err)
		assert.Empty(t, res.Rows)

		got := reqs()
		require.Len(t, got, 1)
		assert.Equal(t, "/api/principal/fac_teach", got[0].path)
		assert.False(t, got[0].hasParam)
		assert.Equal(t, "Bearer svc-token", got[0].auth)
	})

	t.Run("unit set hits the scoped endpoint with comma-joined codes", func(t *testing.T) {
		srv, reqs := recordingServer(t, http.StatusOK, `{"data":[]}`)
		s := newTestSource(t, srv.URL, 0)

		_, err := s.FetchRows(ctx, schema, report.UnitSet("CS", "EC"))
		require.NoError(t, err)

		got := reqs()
		require.Len(t, got, 1)
		assert.Equal(t, "/api/hod/fac_teach", got[0].path)
		assert.Equal(t, "branches=CS,EC", got[0].rawQuery)
		assert.Equal(t, []string{"CS,EC"}, got[0].branches)
	})

	t.Run("empty scope never reaches the API", func(t *testing.T) {
		srv, reqs := recordingServer(t, http.StatusOK, `{"data":[]}`)
		s := newTestSource(t, srv.URL, 0)

		_, err := s.FetchRows(ctx, schema, report.UnitScope{})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Empty(t, reqs())
	})

	t.Run("endpoint shapes differ", func(t *testing.T) {
		s := newTestSource(t, "http://records.local/", 0)
		all, err := s.EndpointFor("fac_edu", report.AllUnits())
		require.NoError(t, err)
		one, err := s.EndpointFor("fac_edu", report.UnitSet("CS"))
		require.NoError(t, err)
		assert.Equal(t, "http://records.local/api/principal/fac_edu", all)
		assert.Equal(t, "http://records.local/api/hod/fac_edu?branches=CS", one)
	})
}

func TestHTTPSource_FetchRows(t *testing.T) {
	schema := teachSchema(t)
	ctx := context.Background()

	t.Run("normalises rows and reports diagnostics", func(t *testing.T) {
		body := `{"data":[
			{"faculty_name":"Asha","instituteName":"DRAIT","fromDate":"2020-06-01","toDate":null,"Designation":"Professor","departmentName":"CSE","_id":"x1"},
			{"faculty_name":"Ravi","instituteName":{"n":1},"fromDate":"2021-01-01","Designation":"Lecturer","departmentName":"ECE","_id":"x2"}
		]}`
		srv, _ := recordingServer(t, http.StatusOK, body)
		s := newTestSource(t, srv.URL, 0)

		res, err := s.FetchRows(ctx, schema, report.AllUnits())
		require.NoError(t, err)
		require.Len(t, res.Rows, 2)
		assert.Equal(t, "Asha", res.Rows[0].Value("faculty_name"))
		v, ok := res.Rows[0].Get("toDate")
		assert.True(t, ok)
		assert.Nil(t, v)
		_, ok = res.Rows[1].Get("instituteName")
		assert.False(t, ok)
		_, ok = res.Rows[0].Get("_id")
		assert.False(t, ok)

		kinds := map[report.DiagnosticKind]string{}
		for _, d := range res.Diagnostics {
			kinds[d.Kind] = d.Key
		}
		assert.Equal(t, "_id", kinds[report.DiagExtra])
		assert.Equal(t, "instituteName", kinds[report.DiagUnsupported])
		assert.Equal(t, "toDate", kinds[report.DiagMissing])
	})

	t.Run("numbers decode as json.Number", func(t *testing.T) {
		edu, err := report.DefaultRegistry().GetSchema("fac_edu")
		require.NoError(t, err)
		srv, _ := recordingServer(t, http.StatusOK, `{"data":[{"faculty_name":"A","yearOfAward":2019}]}`)
		s := newTestSource(t, srv.URL, 0)

		res, err := s.FetchRows(ctx, edu, report.AllUnits())
		require.NoError(t, err)
		assert.Equal(t, json.Number("2019"), res.Rows[0].Value("yearOfAward"))
	})

	t.Run("missing data array is an empty result", func(t *testing.T) {
		srv, _ := recordingServer(t, http.StatusOK, `{}`)
		s := newTestSource(t, srv.URL, 0)
		res, err := s.FetchRows(ctx, schema, report.UnitSet("ME"))
		require.NoError(t, err)
		assert.Empty(t, res.Rows)
	})

	t.Run("malformed body is source unavailable", func(t *testing.T) {
		srv, _ := recordingServer(t, http.StatusOK, `{"data":`)
		s := newTestSource(t, srv.URL, 0)
		_, err := s.FetchRows(ctx, schema, report.AllUnits())
		assert.ErrorIs(t, err, shared.ErrSourceUnavailable)
	})
}

func TestHTTPSource_Retries(t *testing.T) {
	schema := teachSchema(t)

	t.Run("retries 5xx then succeeds", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"data":[{"faculty_name":"A"}]}`))
		}))
		defer srv.Close()

		s := newTestSource(t, srv.URL, 3)
		res, err := s.FetchRows(context.Background(), schema, report.AllUnits())
		require.NoError(t, err)
		assert.Len(t, res.Rows, 1)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		s := newTestSource(t, srv.URL, 2)
		_, err := s.FetchRows(context.Background(), schema, report.AllUnits())
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrSourceUnavailable)
		var se *statusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusTooManyRequests, se.status)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("does not retry 4xx", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "no such entity", http.StatusNotFound)
		}))
		defer srv.Close()

		s := newTestSource(t, srv.URL, 3)
		_, err := s.FetchRows(context.Background(), schema, report.AllUnits())
		assert.ErrorIs(t, err, shared.ErrSourceUnavailable)
		assert.Contains(t, err.Error(), "no such entity")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("transport errors are retried and reported", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		s := newTestSource(t, url, 1)
		_, err := s.FetchRows(context.Background(), schema, report.AllUnits())
		assert.ErrorIs(t, err, shared.ErrSourceUnavailable)
	})

	t.Run("cancellation stops retrying", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		s, err := NewHTTPSource(config.SourceConfig{BaseURL: srv.URL, MaxRetries: 5}, nil,
			WithRetryConfig(RetryConfig{MaxRetries: 5, RetryDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1}))
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err = s.FetchRows(ctx, schema, report.AllUnits())
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestHTTPSource_ListUnits(t *testing.T) {
	srv, reqs := recordingServer(t, http.StatusOK,
		`{"data":[{"brcode":"CS","brcode_title":"Computer Science"},{"brcode":" ","brcode_title":"blank"},{"brcode":"EC","brcode_title":"Electronics"}]}`)
	s := newTestSource(t, srv.URL, 0)

	units, err := s.ListUnits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []report.Unit{{Code: "CS", Title: "Computer Science"}, {Code: "EC", Title: "Electronics"}}, units)
	assert.Equal(t, "/api/hod/branches", reqs()[0].path)
}

func TestNewHTTPSource(t *testing.T) {
	_, err := NewHTTPSource(config.SourceConfig{BaseURL: "records.local"}, nil)
	assert.Error(t, err)
}

func TestBackoff(t *testing.T) {
	rc := RetryConfig{RetryDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, Multiplier: 2}
	for attempt, want := range map[int]time.Duration{1: 100 * time.Millisecond, 2: 200 * time.Millisecond, 5: 300 * time.Millisecond} {
		got := rc.backoff(attempt)
		assert.GreaterOrEqual(t, got, want*3/4, "attempt %d", attempt)
		assert.LessOrEqual(t, got, want*5/4, "attempt %d", attempt)
	}
}
