package report

import (
	"errors"
	"testing"

	"github.com/facultymis/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetSchema(t *testing.T) {
	reg := DefaultRegistry()

	t.Run("returns registered schema", func(t *testing.T) {
		s, err := reg.GetSchema("fac_teach")
		require.NoError(t, err)
		assert.Equal(t, "Teaching Experience", s.Label())
		assert.Equal(t, IdentityColumn, s.Columns[0].Key)
	})

	t.Run("unknown entity fails with UnknownEntity", func(t *testing.T) {
		_, err := reg.GetSchema("fac_missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrUnknownEntity))

		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "UNKNOWN_ENTITY", de.Code)
		assert.Contains(t, de.Message, "fac_missing")
	})

	t.Run("lists entities in registration order", func(t *testing.T) {
		list := reg.List()
		require.Len(t, list, 15)
		assert.Equal(t, "fac_outreach", list[0].ID)
		assert.Equal(t, "fac_edu", list[len(list)-1].ID)
	})
}

func TestNewRegistry_Validation(t *testing.T) {
	t.Run("rejects duplicate entity ids", func(t *testing.T) {
		a := &EntitySchema{ID: "x", Columns: []ColumnSpec{plainCol("a", "A")}}
		b := &EntitySchema{ID: "x", Columns: []ColumnSpec{plainCol("b", "B")}}
		_, err := NewRegistry(a, b)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate entity id")
	})

	t.Run("rejects duplicate column keys", func(t *testing.T) {
		s := &EntitySchema{ID: "x", Columns: []ColumnSpec{plainCol("a", "A"), dateCol("a", "A2")}}
		_, err := NewRegistry(s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate column key")
	})

	t.Run("rejects unknown column kind", func(t *testing.T) {
		s := &EntitySchema{ID: "x", Columns: []ColumnSpec{{Key: "a", Label: "A", Kind: "money"}}}
		_, err := NewRegistry(s)
		require.Error(t, err)
	})

	t.Run("rejects undeclared default column", func(t *testing.T) {
		s := &EntitySchema{ID: "x", Columns: []ColumnSpec{plainCol("a", "A")}, DefaultColumns: []string{"b"}}
		_, err := NewRegistry(s)
		require.Error(t, err)
	})
}

func TestCatalog_FilterColumns(t *testing.T) {
	reg := DefaultRegistry()

	t.Run("no entity has both a date and a year filter column", func(t *testing.T) {
		for _, s := range reg.List() {
			_, hasDate := s.DateFilterColumn()
			_, hasYear := s.YearFilterColumn()
			assert.False(t, hasDate && hasYear, s.ID)
		}
	})

	cases := map[string]struct {
		date string
		year string
	}{
		"fac_teach":                {date: "fromDate"},
		"fac_awards":               {date: "recognitionorawardDate"},
		"fac_consultancy":          {date: "sanctionedDate"},
		"fac_personal":             {date: "dob"},
		"fac_bookPublication":      {year: "yearOfPublish"},
		"fac_conferenceAndJournal": {year: "yearOfPublication"},
		"fac_patent":               {year: "grantedYear"},
		"fac_edu":                  {year: "yearOfAward"},
		"fac_research":             {},
	}
	for id, want := range cases {
		t.Run(id, func(t *testing.T) {
			s, err := reg.GetSchema(id)
			require.NoError(t, err)
			d, _ := s.DateFilterColumn()
			y, _ := s.YearFilterColumn()
			assert.Equal(t, want.date, d.Key)
			assert.Equal(t, want.year, y.Key)
		})
	}
}

func TestDisplayNameFromID(t *testing.T) {
	assert.Equal(t, "Event Organized", DisplayNameFromID("fac_eventOrganized"))
	assert.Equal(t, "Book Publication", DisplayNameFromID("fac_bookPublication"))
	assert.Equal(t, "Research", DisplayNameFromID("fac_research"))

	s, err := DefaultRegistry().GetSchema("fac_patent")
	require.NoError(t, err)
	assert.Equal(t, "Patent", s.Label())
}
