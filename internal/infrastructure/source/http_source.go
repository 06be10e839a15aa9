// Package source adapts the faculty records backend to the report engine's Source port.
package source

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

	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/domain/shared"
	"github.com/facultymis/backend/internal/infrastructure/config"
	"github.com/facultymis/backend/internal/infrastructure/logger"
	"github.com/facultymis/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Records API routes
const (
	unscopedPath = "/api/principal/"
	scopedPath   = "/api/hod/"
	branchesPath = "/api/hod/branches"
	branchesKey  = "branches"
)

const maxBodyBytes = 64 << 20

// HTTPSource fetches entity rows from the records API.
// AllUnits goes to the principal endpoint, a unit set to the HOD endpoint with a
// comma-joined branches parameter.
type HTTPSource struct {
	client  *http.Client
	baseURL *url.URL
	bearer  string
	retry   RetryConfig
	logger  *zap.Logger
}

// Option configures an HTTPSource
type Option func(*HTTPSource)

// WithHTTPClient replaces the underlying client
func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPSource) { s.client = c }
}

// WithRetryConfig replaces the retry policy
func WithRetryConfig(rc RetryConfig) Option {
	return func(s *HTTPSource) { s.retry = rc }
}

// NewHTTPSource creates a source for cfg.BaseURL
func NewHTTPSource(cfg config.SourceConfig, log *zap.Logger, opts ...Option) (*HTTPSource, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid source base URL %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	retry := DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries
	if cfg.RetryDelay > 0 {
		retry.RetryDelay = cfg.RetryDelay
	}
	if cfg.MaxDelay > 0 {
		retry.MaxDelay = cfg.MaxDelay
	}

	s := &HTTPSource{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: base,
		bearer:  cfg.BearerToken,
		retry:   retry,
		logger:  log.Named("source"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.retry.ShouldRetry == nil {
		s.retry.ShouldRetry = retryable
	}
	return s, nil
}

// EndpointFor returns the URL an entity is fetched from under scope.
// The empty scope has no endpoint.
func (s *HTTPSource) EndpointFor(entityID string, scope report.UnitScope) (string, error) {
	if scope.IsEmpty() {
		return "", shared.ErrInvalidInput.WithMessage("no unit scope selected")
	}
	u := *s.baseURL
	if scope.IsAll() {
		u.Path += unscopedPath + entityID
		return u.String(), nil
	}
	u.Path += scopedPath + entityID
	codes := scope.Units()
	for i, c := range codes {
		codes[i] = url.QueryEscape(c)
	}
	u.RawQuery = branchesKey + "=" + strings.Join(codes, ",")
	return u.String(), nil
}

type dataEnvelope[T any] struct {
	Data []T `json:"data"`
}

// FetchRows implements report.Source
func (s *HTTPSource) FetchRows(ctx context.Context, schema *report.EntitySchema, scope report.UnitScope) (*report.FetchResult, error) {
	endpoint, err := s.EndpointFor(schema.ID, scope)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "source.fetch_rows",
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrEntity, schema.ID),
		telemetry.WithAttribute(telemetry.SpanAttrScope, scope.Key()),
		telemetry.WithAttribute(telemetry.SpanAttrEndpoint, endpoint),
	)
	defer span.End()

	body, err := s.get(ctx, endpoint)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var env dataEnvelope[map[string]any]
	if err := decodeJSON(body, &env); err != nil {
		err = shared.ErrSourceUnavailable.Wrap(fmt.Errorf("decode %s rows: %w", schema.ID, err))
		telemetry.RecordError(span, err)
		return nil, err
	}

	rows, diags := report.NormalizeRows(schema, env.Data)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRowCount, len(rows),
		telemetry.SpanAttrDiagCount, len(diags),
	)
	if len(diags) > 0 {
		logger.WithLogger(ctx, s.logger).Debug("rows normalised with diagnostics",
			zap.String("entity", schema.ID),
			zap.Int("diagnostics", len(diags)),
		)
	}
	return &report.FetchResult{Rows: rows, Diagnostics: diags}, nil
}

// ListUnits implements report.UnitDirectory
func (s *HTTPSource) ListUnits(ctx context.Context) ([]report.Unit, error) {
	u := *s.baseURL
	u.Path += branchesPath

	ctx, span := telemetry.StartSpan(ctx, "source.list_units", telemetry.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	body, err := s.get(ctx, u.String())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	var env dataEnvelope[report.Unit]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, shared.ErrSourceUnavailable.Wrap(fmt.Errorf("decode units: %w", err))
	}
	units := make([]report.Unit, 0, len(env.Data))
	for _, unit := range env.Data {
		unit.Code = strings.TrimSpace(unit.Code)
		if unit.Code != "" {
			units = append(units, unit)
		}
	}
	return units, nil
}

// statusError is a non-2xx response
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return "records API answered " + strconv.Itoa(e.status)
	}
	return fmt.Sprintf("records API answered %d: %s", e.status, e.body)
}

// get performs a GET with retries and returns the body of a 2xx response.
// Every failure is ErrSourceUnavailable wrapping the last cause, except context cancellation.
func (s *HTTPSource) get(ctx context.Context, endpoint string) ([]byte, error) {
	log := logger.WithLogger(ctx, s.logger)
	var lastErr error

	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.retry.backoff(attempt)
			log.Debug("retrying records API",
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "facultymis-backend")
		if s.bearer != "" {
			req.Header.Set("Authorization", "Bearer "+s.bearer)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if attempt < s.retry.MaxRetries && s.retry.ShouldRetry(nil, err) {
				continue
			}
			break
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			lastErr = &statusError{status: resp.StatusCode, body: snippet(body)}
			if attempt < s.retry.MaxRetries && s.retry.ShouldRetry(resp, nil) {
				continue
			}
			break
		}
		if readErr != nil {
			lastErr = fmt.Errorf("reading response body: %w", readErr)
			if attempt < s.retry.MaxRetries && s.retry.ShouldRetry(nil, readErr) {
				continue
			}
			break
		}
		return body, nil
	}

	log.Warn("records API unavailable", zap.String("endpoint", endpoint), zap.Error(lastErr))
	return nil, shared.ErrSourceUnavailable.Wrap(lastErr)
}

func decodeJSON(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

var (
	_ report.Source        = (*HTTPSource)(nil)
	_ report.UnitDirectory = (*HTTPSource)(nil)
)
