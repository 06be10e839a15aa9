package report

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/domain/shared"
	"github.com/facultymis/backend/internal/infrastructure/printing"
	"github.com/facultymis/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/mock"
)

type fetchCall struct {
	Entity string
	Scope  string
	Fresh  bool
}

// fakeSource serves in-memory rows tagged with a brcode. Gates block fetches of a scope
// until released; failures make every fetch of an entity fail.
type fakeSource struct {
	mu       sync.Mutex
	data     map[string][]map[string]any
	failures map[string]error
	gates    map[string]chan struct{}
	calls    []fetchCall
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		data:     make(map[string][]map[string]any),
		failures: make(map[string]error),
		gates:    make(map[string]chan struct{}),
	}
}

func (f *fakeSource) add(entity, unit string, row map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := map[string]any{"brcode": unit}
	for k, v := range row {
		rec[k] = v
	}
	f.data[entity] = append(f.data[entity], rec)
}

func (f *fakeSource) fail(entity string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, entity)
		return
	}
	f.failures[entity] = err
}

// gate blocks fetches of scopeKey until the returned func is called
func (f *fakeSource) gate(scopeKey string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[scopeKey] = ch
	f.mu.Unlock()
	return func() { close(ch) }
}

func (f *fakeSource) Calls() []fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *fakeSource) FetchRows(ctx context.Context, schema *report.EntitySchema, scope report.UnitScope) (*report.FetchResult, error) {
	if scope.IsEmpty() {
		return nil, shared.ErrInvalidInput.WithMessage("no unit scope selected")
	}
	call := fetchCall{Entity: schema.ID, Scope: scope.Key(), Fresh: report.FreshRowsRequested(ctx)}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	gate := f.gates[scope.Key()]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[schema.ID]; err != nil {
		return nil, err
	}
	units := scope.Units()
	var raw []map[string]any
	for _, rec := range f.data[schema.ID] {
		code, _ := rec["brcode"].(string)
		if !scope.IsAll() && !slices.Contains(units, code) {
			continue
		}
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

func (f *fakeSource) ListUnits(context.Context) ([]report.Unit, error) {
	return []report.Unit{
		{Code: "CS", Title: "Computer Science"},
		{Code: "EC", Title: "Electronics"},
		{Code: "ME", Title: "Mechanical"},
	}, nil
}

// MockPDFRenderer is a mock implementation of printing.PDFRenderer
type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Render(ctx context.Context, req *printing.RenderRequest) (*printing.RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printing.RenderResult), args.Error(1)
}

func (m *MockPDFRenderer) Close() error {
	return m.Called().Error(0)
}

// MockExportArchive is a mock implementation of ExportArchive
type MockExportArchive struct {
	mock.Mock
}

func (m *MockExportArchive) Store(ctx context.Context, filename string, content []byte, contentType string) (*storage.ArchivedObject, error) {
	args := m.Called(ctx, filename, content, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ArchivedObject), args.Error(1)
}

func (m *MockExportArchive) DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func testViewDeps(src report.Source) ViewDeps {
	return ViewDeps{
		Registry: report.DefaultRegistry(),
		Source:   src,
		Now:      func() time.Time { return fixedNow },
	}
}

var (
	admin   = report.Caller{UserID: "u-admin", Role: report.RoleAdmin}
	hodCS   = report.Caller{UserID: "u-hod", Role: report.RoleHOD, Department: "CS"}
	faculty = report.Caller{UserID: "u-fac", Role: report.RoleFaculty, Department: "EC"}
)

// seedTeaching adds one fac_teach row per year from 2019 to 2022, alternating CS and EC
func seedTeaching(src *fakeSource) {
	for i, from := range []string{"2019-06-01", "2020-07-15", "2021-12-31", "2022-01-01"} {
		unit := "CS"
		if i%2 == 1 {
			unit = "EC"
		}
		src.add("fac_teach", unit, map[string]any{
			"faculty_name":   []string{"Asha Rao", "Professor Iyer", "Kiran Shetty", "Meera Nair"}[i],
			"instituteName":  "DRAIT",
			"fromDate":       from,
			"toDate":         nil,
			"Designation":    []string{"Assistant Professor", "Professor", "Lecturer", "Associate Professor"}[i],
			"departmentName": unit,
		})
	}
}
