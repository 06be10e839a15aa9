package report

import "context"

// FetchResult is the normalised outcome of one fetch. Zero rows is a valid, empty result.
type FetchResult struct {
	Rows        []Row
	Diagnostics []Diagnostic
}

// Source fetches the rows of an entity under a scope.
// Implementations route AllUnits to the unscoped backend and a unit set to the scoped one,
// and must reject the empty scope with ErrInvalidInput. Backend failures are ErrSourceUnavailable.
type Source interface {
	FetchRows(ctx context.Context, schema *EntitySchema, scope UnitScope) (*FetchResult, error)
}

// Unit is an organisational unit (branch or department)
type Unit struct {
	Code  string `json:"brcode"`
	Title string `json:"brcode_title"`
}

// UnitDirectory lists the units a scope can be chosen from
type UnitDirectory interface {
	ListUnits(ctx context.Context) ([]Unit, error)
}

type freshRowsKey struct{}

// WithFreshRows marks ctx so cache-backed sources skip cached rows and store what they fetch
func WithFreshRows(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshRowsKey{}, true)
}

// FreshRowsRequested reports whether ctx was marked by WithFreshRows
func FreshRowsRequested(ctx context.Context) bool {
	v, _ := ctx.Value(freshRowsKey{}).(bool)
	return v
}
