package report

import (
	"fmt"

	"github.com/facultymis/backend/internal/domain/shared"
)

// Registry is the immutable set of reportable entities
type Registry struct {
	schemas map[string]*EntitySchema
	order   []string
}

// NewRegistry builds a registry, rejecting duplicate entity ids, duplicate column keys
// and unknown column kinds.
func NewRegistry(schemas ...*EntitySchema) (*Registry, error) {
	r := &Registry{
		schemas: make(map[string]*EntitySchema, len(schemas)),
		order:   make([]string, 0, len(schemas)),
	}
	for _, s := range schemas {
		if s == nil || s.ID == "" {
			return nil, fmt.Errorf("entity schema without id")
		}
		if _, dup := r.schemas[s.ID]; dup {
			return nil, fmt.Errorf("duplicate entity id %q", s.ID)
		}
		if err := validateSchema(s); err != nil {
			return nil, fmt.Errorf("entity %q: %w", s.ID, err)
		}
		r.schemas[s.ID] = s
		r.order = append(r.order, s.ID)
	}
	return r, nil
}

func validateSchema(s *EntitySchema) error {
	seen := make(map[string]struct{}, len(s.Columns))
	for _, c := range s.Columns {
		if c.Key == "" {
			return fmt.Errorf("column without key")
		}
		if !c.Kind.IsValid() {
			return fmt.Errorf("column %q has unknown kind %q", c.Key, c.Kind)
		}
		if _, dup := seen[c.Key]; dup {
			return fmt.Errorf("duplicate column key %q", c.Key)
		}
		seen[c.Key] = struct{}{}
	}
	for _, key := range append([]string{s.IdentityKey, s.FacetKey}, s.DefaultColumns...) {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; !ok {
			return fmt.Errorf("column %q is referenced but not declared", key)
		}
	}
	return nil
}

// GetSchema returns the schema registered under entityID
func (r *Registry) GetSchema(entityID string) (*EntitySchema, error) {
	s, ok := r.schemas[entityID]
	if !ok {
		return nil, shared.ErrUnknownEntity.WithMessage(fmt.Sprintf("unknown entity %q", entityID))
	}
	return s, nil
}

// Has reports whether entityID is registered
func (r *Registry) Has(entityID string) bool {
	_, ok := r.schemas[entityID]
	return ok
}

// List returns every schema in registration order
func (r *Registry) List() []*EntitySchema {
	out := make([]*EntitySchema, len(r.order))
	for i, id := range r.order {
		out[i] = r.schemas[id]
	}
	return out
}
