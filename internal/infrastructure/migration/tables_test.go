package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/facultymis/backend/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTableSQL(t *testing.T) {
	reg := report.DefaultRegistry()

	t.Run("postgres types and quoting", func(t *testing.T) {
		schema, err := reg.GetSchema("fac_bookPublication")
		require.NoError(t, err)

		ddl := CreateTableSQL(schema, DialectPostgres)
		assert.True(t, strings.HasPrefix(ddl, `CREATE TABLE IF NOT EXISTS "fac_bookPublication" (`))
		assert.Contains(t, ddl, "id SERIAL PRIMARY KEY,")
		assert.Contains(t, ddl, "brcode TEXT NOT NULL")
		assert.Contains(t, ddl, `"faculty_name" TEXT`)
		assert.Contains(t, ddl, `"impactFactor" DOUBLE PRECISION`)
		assert.Contains(t, ddl, `"yearOfPublish" SMALLINT`)
		assert.Contains(t, ddl, `CREATE INDEX IF NOT EXISTS "idx_fac_bookPublication_brcode" ON "fac_bookPublication" (brcode);`)
	})

	t.Run("sqlite types", func(t *testing.T) {
		schema, err := reg.GetSchema("fac_personal")
		require.NoError(t, err)

		ddl := CreateTableSQL(schema, DialectSQLite)
		assert.Contains(t, ddl, "id INTEGER PRIMARY KEY AUTOINCREMENT,")
		assert.Contains(t, ddl, `"aided" INTEGER`)
		assert.Contains(t, ddl, `"dob" DATE`)
	})

	t.Run("every data column is declared once", func(t *testing.T) {
		schema, err := reg.GetSchema("fac_teach")
		require.NoError(t, err)
		ddl := CreateTableSQL(schema, DialectPostgres)
		for _, key := range schema.DataKeys() {
			assert.Equal(t, 1, strings.Count(ddl, `"`+key+`" `), key)
		}
	})
}

func TestInitSQL(t *testing.T) {
	reg := report.DefaultRegistry()
	up, down := InitSQL(reg, DialectPostgres)

	assert.True(t, strings.HasPrefix(up, "CREATE TABLE IF NOT EXISTS branches ("))
	assert.Equal(t, len(reg.List())+1, strings.Count(up, "CREATE TABLE"))
	assert.Equal(t, len(reg.List())+1, strings.Count(down, "DROP TABLE"))
	assert.True(t, strings.HasSuffix(down, "DROP TABLE IF EXISTS branches;\n"))
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"init records", "init_records"},
		{"Add-Entity-Tables", "add_entity_tables"},
		{"add__units__index", "add_units_index"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("numbers after the newest existing migration", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_init_records.up.sql"), []byte("--"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_init_records.down.sql"), []byte("--"), 0o644))

		mf, err := CreateMigration(dir, "add award index", "CREATE INDEX x;\n", "DROP INDEX x;\n")
		require.NoError(t, err)
		assert.Equal(t, "000002", mf.Version)
		assert.Equal(t, filepath.Join(dir, "000002_add_award_index.up.sql"), mf.UpPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "-- Migration: add award index")
		assert.True(t, strings.HasSuffix(string(up), "CREATE INDEX x;\n"))

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(string(down), "DROP INDEX x;\n"))
	})

	t.Run("creates a missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "migrations")
		mf, err := CreateMigration(dir, "init", "", "")
		require.NoError(t, err)
		assert.Equal(t, "000001", mf.Version)
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("lists up files only", func(t *testing.T) {
		dir := t.TempDir()
		for _, f := range []string{
			"000001_init.up.sql", "000001_init.down.sql",
			"000002_more.up.sql", "000002_more.down.sql",
			"README.md", ".gitkeep",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("--"), 0o644))
		}
		require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.up.sql"), 0o755))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_init", "000002_more"}, migrations)
	})

	t.Run("missing directory is empty", func(t *testing.T) {
		migrations, err := ListMigrations("/nonexistent/path/to/migrations")
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}
