package report

import (
	"fmt"
	"strings"

	"github.com/facultymis/backend/internal/domain/shared"
)

// AllUnitsSentinel is the selection value that stands for every unit
const AllUnitsSentinel = "ALL"

// UnitScope restricts a fetch to a set of organisational units, or to none.
// The zero value means no scope has been chosen yet.
type UnitScope struct {
	all   bool
	units []string
}

// AllUnits returns the scope covering every unit
func AllUnits() UnitScope {
	return UnitScope{all: true}
}

// UnitSet returns a scope over the given codes, de-duplicated in first-seen order.
// Blank codes are dropped.
func UnitSet(codes ...string) UnitScope {
	seen := make(map[string]struct{}, len(codes))
	units := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		units = append(units, c)
	}
	if len(units) == 0 {
		return UnitScope{}
	}
	return UnitScope{units: units}
}

// IsAll reports whether the scope covers every unit
func (s UnitScope) IsAll() bool { return s.all }

// IsEmpty reports whether no scope has been chosen
func (s UnitScope) IsEmpty() bool { return !s.all && len(s.units) == 0 }

// Units returns a copy of the unit codes; nil for AllUnits and the empty scope
func (s UnitScope) Units() []string {
	if len(s.units) == 0 {
		return nil
	}
	out := make([]string, len(s.units))
	copy(out, s.units)
	return out
}

// Equal reports whether both scopes select the same units in the same order
func (s UnitScope) Equal(o UnitScope) bool {
	if s.all != o.all || len(s.units) != len(o.units) {
		return false
	}
	for i := range s.units {
		if s.units[i] != o.units[i] {
			return false
		}
	}
	return true
}

// Key is a stable textual form of the scope, usable as a cache key component
func (s UnitScope) Key() string {
	switch {
	case s.all:
		return "all"
	case len(s.units) == 0:
		return ""
	default:
		return strings.Join(s.units, ",")
	}
}

// Label is the filename fragment for the scope: unit codes joined by "_", or "all"
func (s UnitScope) Label() string {
	if s.all {
		return "all"
	}
	return strings.Join(s.units, "_")
}

func (s UnitScope) String() string {
	if s.IsEmpty() {
		return "<none>"
	}
	return s.Key()
}

// ResolveScope turns a unit selection into a scope. The ALL sentinel anywhere in the
// selection wins and discards co-selected codes.
func ResolveScope(selected []string) UnitScope {
	for _, s := range selected {
		if strings.EqualFold(strings.TrimSpace(s), AllUnitsSentinel) {
			return AllUnits()
		}
	}
	return UnitSet(selected...)
}

// Role is a caller role
type Role string

const (
	RoleAdmin     Role = "admin"
	RolePrincipal Role = "principal"
	RoleHOD       Role = "hod"
	RoleFaculty   Role = "faculty"
)

// ParseRole normalises a role claim
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// IsKnown reports whether r is one of the defined roles
func (r Role) IsKnown() bool {
	switch r {
	case RoleAdmin, RolePrincipal, RoleHOD, RoleFaculty:
		return true
	}
	return false
}

// CanChooseUnits reports whether the role may pick arbitrary units
func (r Role) CanChooseUnits() bool {
	return r == RoleAdmin || r == RolePrincipal
}

// Caller is the authenticated party a scope is resolved for
type Caller struct {
	UserID     string
	Role       Role
	Department string
}

// ScopeForCaller resolves the scope a caller is allowed to fetch with.
// Department-bound roles are pinned to their own department whatever they selected.
func ScopeForCaller(caller Caller, selected []string) (UnitScope, error) {
	switch caller.Role {
	case RoleAdmin, RolePrincipal:
		return ResolveScope(selected), nil
	case RoleHOD, RoleFaculty:
		dept := strings.TrimSpace(caller.Department)
		if dept == "" {
			return UnitScope{}, shared.ErrInvalidInput.WithMessage("caller has no department")
		}
		return UnitSet(dept), nil
	default:
		return UnitScope{}, shared.ErrForbidden.WithMessage(fmt.Sprintf("role %q cannot view reports", caller.Role))
	}
}
