package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Row is a read-only record keyed by column key.
// Values are scalars: string, json.Number, bool, nil or a Go number.
type Row struct {
	values map[string]any
}

// NewRow wraps a copy of values
func NewRow(values map[string]any) Row {
	cp := make(map[string]any, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Row{values: cp}
}

// Get returns the raw value under key and whether the key is present
func (r Row) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the raw value under key, nil when absent
func (r Row) Value(key string) any {
	return r.values[key]
}

// Len returns the number of present keys
func (r Row) Len() int { return len(r.values) }

// Map returns a copy of the row values
func (r Row) Map() map[string]any {
	cp := make(map[string]any, len(r.values))
	for k, v := range r.values {
		cp[k] = v
	}
	return cp
}

// MarshalJSON encodes the row as a flat object
func (r Row) MarshalJSON() ([]byte, error) {
	if r.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.values)
}

// DiagnosticKind classifies a shape problem found while normalising rows
type DiagnosticKind string

const (
	// DiagMissing: a declared column was absent from a row
	DiagMissing DiagnosticKind = "missing"
	// DiagUnsupported: a declared column held a nested object or array, which was dropped
	DiagUnsupported DiagnosticKind = "unsupported"
	// DiagExtra: a row carried a key the schema does not declare, which was ignored
	DiagExtra DiagnosticKind = "extra"
)

// Diagnostic reports one kind of shape problem for one key, aggregated over all rows
type Diagnostic struct {
	Kind     DiagnosticKind `json:"kind"`
	Key      string         `json:"key"`
	Count    int            `json:"count"`
	FirstRow int            `json:"first_row"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %q in %d row(s), first at %d", d.Kind, d.Key, d.Count, d.FirstRow)
}

// NormalizeRows validates raw records against the schema. Only declared keys are kept and
// values are reduced to scalars; every deviation is reported once per (kind, key).
func NormalizeRows(schema *EntitySchema, raw []map[string]any) ([]Row, []Diagnostic) {
	rows := make([]Row, 0, len(raw))
	diags := make(map[string]*Diagnostic)
	var order []string
	note := func(kind DiagnosticKind, key string, idx int) {
		id := string(kind) + "\x00" + key
		if d, ok := diags[id]; ok {
			d.Count++
			return
		}
		diags[id] = &Diagnostic{Kind: kind, Key: key, Count: 1, FirstRow: idx}
		order = append(order, id)
	}

	declared := schema.DataKeys()
	for i, rec := range raw {
		values := make(map[string]any, len(declared))
		for _, key := range declared {
			v, ok := rec[key]
			if !ok {
				note(DiagMissing, key, i)
				continue
			}
			sv, ok := scalar(v)
			if !ok {
				note(DiagUnsupported, key, i)
				continue
			}
			values[key] = sv
		}
		for key := range rec {
			if key != SlnoKey && !schema.HasColumn(key) {
				note(DiagExtra, key, i)
			}
		}
		rows = append(rows, Row{values: values})
	}

	out := make([]Diagnostic, 0, len(order))
	for _, id := range order {
		out = append(out, *diags[id])
	}
	// extra keys come from map iteration, so order them for stable output
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].FirstRow != out[b].FirstRow {
			return out[a].FirstRow < out[b].FirstRow
		}
		if out[a].Kind != out[b].Kind {
			return out[a].Kind < out[b].Kind
		}
		return out[a].Key < out[b].Key
	})
	return rows, out
}

// scalar reduces a decoded value to a supported scalar
func scalar(v any) (any, bool) {
	switch t := v.(type) {
	case nil, string, json.Number, bool:
		return t, true
	case float64:
		return json.Number(strconv.FormatFloat(t, 'f', -1, 64)), true
	case float32:
		return json.Number(strconv.FormatFloat(float64(t), 'f', -1, 32)), true
	case int:
		return json.Number(strconv.Itoa(t)), true
	case int16:
		return json.Number(strconv.FormatInt(int64(t), 10)), true
	case int32:
		return json.Number(strconv.FormatInt(int64(t), 10)), true
	case int64:
		return json.Number(strconv.FormatInt(t, 10)), true
	case uint8:
		return json.Number(strconv.FormatUint(uint64(t), 10)), true
	case []byte:
		return string(t), true
	case time.Time:
		if t.IsZero() {
			return nil, true
		}
		return t.Format(time.RFC3339), true
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil, true
		}
		return t.Format(time.RFC3339), true
	default:
		return nil, false
	}
}
