package report

import (
	"errors"
	"testing"

	"github.com/facultymis/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnSelection(t *testing.T) {
	personal := mustSchema(t, "fac_personal")

	t.Run("identity column is forced first", func(t *testing.T) {
		sel, err := NewColumnSelection(personal, []string{"department", "faculty_name"})
		require.NoError(t, err)
		assert.Equal(t, []string{"faculty_name", "department"}, sel.Keys())

		sel, err = NewColumnSelection(personal, []string{"department"})
		require.NoError(t, err)
		assert.Equal(t, []string{"faculty_name", "department"}, sel.Keys())
	})

	t.Run("keeps declared order", func(t *testing.T) {
		sel, err := NewColumnSelection(personal, []string{"aided", "emailId", "dob"})
		require.NoError(t, err)
		assert.Equal(t, []string{"faculty_name", "emailId", "dob", "aided"}, sel.Keys())
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		_, err := NewColumnSelection(personal, []string{"salary"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Contains(t, err.Error(), "salary")
	})

	t.Run("empty selection falls back to defaults", func(t *testing.T) {
		sel, err := NewColumnSelection(personal, nil)
		require.NoError(t, err)
		assert.Equal(t, personal.DefaultColumns, sel.Keys())
	})

	t.Run("entity without defaults selects every column", func(t *testing.T) {
		awards := mustSchema(t, "fac_awards")
		assert.Equal(t, awards.DataKeys(), DefaultSelection(awards).Keys())
	})

	t.Run("row index key is ignored", func(t *testing.T) {
		sel, err := NewColumnSelection(personal, []string{SlnoKey, "gender"})
		require.NoError(t, err)
		assert.Equal(t, []string{"faculty_name", "gender"}, sel.Keys())
	})
}
