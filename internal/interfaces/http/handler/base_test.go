package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/domain/shared"
	"github.com/facultymis/backend/internal/infrastructure/auth"
	"github.com/facultymis/backend/internal/interfaces/http/dto"
	"github.com/facultymis/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var (
	admin   = report.Caller{UserID: "u-admin", Role: report.RoleAdmin}
	hodCS   = report.Caller{UserID: "u-hod", Role: report.RoleHOD, Department: "CS"}
	faculty = report.Caller{UserID: "u-fac", Role: report.RoleFaculty, Department: "EC"}
)

// setCaller stores claims for caller the way the JWT middleware does
func setCaller(c *gin.Context, caller report.Caller) {
	c.Set(middleware.JWTClaimsKey, &auth.Claims{
		UserID:     caller.UserID,
		Role:       string(caller.Role),
		Department: caller.Department,
		TokenType:  auth.TokenTypeAccess,
	})
}

// asCaller authenticates every request of a test engine as caller; the X-Test-User
// header switches to hodCS or faculty
func asCaller(caller report.Caller) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.GetHeader("X-Test-User") {
		case hodCS.UserID:
			setCaller(c, hodCS)
		case faculty.UserID:
			setCaller(c, faculty)
		case "anonymous":
		default:
			setCaller(c, caller)
		}
		c.Next()
	}
}

func doRequest(t *testing.T, engine http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	resp := decodeResponse(t, w)
	require.True(t, resp.Success, w.Body.String())
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return data
}

// memorySource serves in-memory records keyed by entity, each tagged with a brcode
type memorySource struct {
	mu      sync.Mutex
	records map[string][]map[string]any
	failing map[string]bool
}

func newMemorySource() *memorySource {
	return &memorySource{records: make(map[string][]map[string]any), failing: make(map[string]bool)}
}

func (s *memorySource) add(entity, unit string, row map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := map[string]any{"brcode": unit}
	for k, v := range row {
		rec[k] = v
	}
	s.records[entity] = append(s.records[entity], rec)
}

func (s *memorySource) QueryRecords(_ context.Context, schema *report.EntitySchema, scope report.UnitScope) ([]map[string]any, error) {
	if scope.IsEmpty() {
		return nil, shared.ErrInvalidInput.WithMessage("no unit scope selected")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing[schema.ID] {
		return nil, shared.ErrSourceUnavailable.Wrap(errors.New("connection refused"))
	}
	out := []map[string]any{}
	for _, rec := range s.records[schema.ID] {
		if code, _ := rec["brcode"].(string); scope.IsAll() || slices.Contains(scope.Units(), code) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *memorySource) FetchRows(ctx context.Context, schema *report.EntitySchema, scope report.UnitScope) (*report.FetchResult, error) {
	recs, err := s.QueryRecords(ctx, schema, scope)
	if err != nil {
		return nil, err
	}
	raw := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		m := make(map[string]any, len(rec))
		for k, v := range rec {
			if k != "brcode" {
				m[k] = v
			}
		}
		raw = append(raw, m)
	}
	rows, diags := report.NormalizeRows(schema, raw)
	return &report.FetchResult{Rows: rows, Diagnostics: diags}, nil
}

func (s *memorySource) ListUnits(context.Context) ([]report.Unit, error) {
	return []report.Unit{
		{Code: "CS", Title: "Computer Science"},
		{Code: "EC", Title: "Electronics"},
	}, nil
}

// seedTeaching adds one fac_teach row per year from 2019 to 2022, alternating CS and EC
func seedTeaching(src *memorySource) {
	for i, from := range []string{"2019-06-01", "2020-07-15", "2021-12-31", "2022-01-01"} {
		unit := "CS"
		if i%2 == 1 {
			unit = "EC"
		}
		src.add("fac_teach", unit, map[string]any{
			"faculty_name":   fmt.Sprintf("Faculty %d", i+1),
			"instituteName":  "DRAIT",
			"fromDate":       from,
			"Designation":    []string{"Assistant Professor", "Professor", "Lecturer", "Associate Professor"}[i],
			"departmentName": unit,
		})
	}
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name: "from context",
			setup: func(c *gin.Context) {
				c.Set("request_id", "ctx-request-id")
			},
			expectedID: "ctx-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(c)

			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestBaseHandlerCreated(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Created(c, map[string]string{"id": "123"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestBaseHandlerGetCaller(t *testing.T) {
	h := &BaseHandler{}

	t.Run("claims present", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		setCaller(c, hodCS)

		caller, ok := h.getCaller(c)
		require.True(t, ok)
		assert.Equal(t, hodCS, caller)
	})

	t.Run("missing claims answer 401", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		_, ok := h.getCaller(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, decodeResponse(t, w).Error.Code)
	})
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		retryable      bool
	}{
		{"unknown entity", shared.ErrUnknownEntity.WithMessage("unknown entity \"x\""), http.StatusNotFound, dto.ErrCodeUnknownEntity, false},
		{"view not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound, false},
		{"invalid input", shared.ErrInvalidInput, http.StatusBadRequest, dto.ErrCodeInvalidInput, false},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden, dto.ErrCodeForbidden, false},
		{"nothing to export", shared.ErrNothingToExport, http.StatusUnprocessableEntity, dto.ErrCodeNothingToExport, false},
		{"source unavailable", shared.ErrSourceUnavailable.Wrap(errors.New("timeout")), http.StatusServiceUnavailable, dto.ErrCodeSourceUnavailable, true},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
			assert.Equal(t, tt.retryable, resp.Error.Retryable)
		})
	}

	t.Run("internal errors stay opaque", func(t *testing.T) {
		h := &BaseHandler{}
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		h.HandleError(c, errors.New("pq: password authentication failed"))
		assert.NotContains(t, w.Body.String(), "password")
	})
}
