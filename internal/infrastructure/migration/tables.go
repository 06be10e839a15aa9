package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/facultymis/backend/internal/domain/report"
)

// Dialect selects the column types of generated DDL
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// UnitColumn and BranchesTable mirror the layout the record store reads
const (
	UnitColumn    = "brcode"
	BranchesTable = "branches"
)

func columnType(kind report.ColumnKind, d Dialect) string {
	switch kind {
	case report.KindDate:
		return "DATE"
	case report.KindYear, report.KindBoolean:
		if d == DialectSQLite {
			return "INTEGER"
		}
		return "SMALLINT"
	case report.KindNumeric:
		if d == DialectSQLite {
			return "REAL"
		}
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// CreateTableSQL renders the table holding one entity's rows, plus its unit index.
// Column names keep the catalogue's mixed case and are always quoted.
func CreateTableSQL(schema *report.EntitySchema, d Dialect) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", quoteIdent(schema.ID))
	if d == DialectSQLite {
		b.WriteString("    id INTEGER PRIMARY KEY AUTOINCREMENT,\n")
	} else {
		b.WriteString("    id SERIAL PRIMARY KEY,\n")
	}
	fmt.Fprintf(&b, "    %s TEXT NOT NULL", UnitColumn)
	for _, c := range schema.DataColumns() {
		fmt.Fprintf(&b, ",\n    %s %s", quoteIdent(c.Key), columnType(c.Kind, d))
	}
	b.WriteString("\n);\n")
	fmt.Fprintf(&b, "CREATE INDEX IF NOT EXISTS %s ON %s (%s);\n",
		quoteIdent("idx_"+schema.ID+"_"+UnitColumn), quoteIdent(schema.ID), UnitColumn)
	return b.String()
}

// DropTableSQL renders the reverse of CreateTableSQL
func DropTableSQL(schema *report.EntitySchema) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;\n", quoteIdent(schema.ID))
}

// BranchesSQL renders the unit directory table
func BranchesSQL() string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s TEXT PRIMARY KEY,\n    brcode_title TEXT NOT NULL\n);\n",
		BranchesTable, UnitColumn)
}

// InitSQL renders the up and down scripts creating the branches table and one table per entity
func InitSQL(reg *report.Registry, d Dialect) (up, down string) {
	var u, w strings.Builder
	u.WriteString(BranchesSQL())
	schemas := reg.List()
	for _, s := range schemas {
		u.WriteString("\n")
		u.WriteString(CreateTableSQL(s, d))
	}
	for i := len(schemas) - 1; i >= 0; i-- {
		w.WriteString(DropTableSQL(schemas[i]))
	}
	fmt.Fprintf(&w, "DROP TABLE IF EXISTS %s;\n", BranchesTable)
	return u.String(), w.String()
}

// MigrationFile is a written up/down pair
type MigrationFile struct {
	Version  string
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration writes an up/down pair numbered after the newest migration in dir
func CreateMigration(migrationsDir, name, up, down string) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}
	existing, err := ListMigrations(migrationsDir)
	if err != nil {
		return nil, err
	}
	version := fmt.Sprintf("%06d", nextVersion(existing))
	base := version + "_" + sanitizeName(name)

	mf := &MigrationFile{
		Version:  version,
		Name:     name,
		UpPath:   filepath.Join(migrationsDir, base+".up.sql"),
		DownPath: filepath.Join(migrationsDir, base+".down.sql"),
	}
	header := fmt.Sprintf("-- Migration: %s\n-- Created: %s\n\n", name, time.Now().UTC().Format(time.RFC3339))
	if err := os.WriteFile(mf.UpPath, []byte(header+up), 0o644); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := os.WriteFile(mf.DownPath, []byte(header+down), 0o644); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}
	return mf, nil
}

func nextVersion(existing []string) int {
	highest := 0
	for _, m := range existing {
		var v int
		if _, err := fmt.Sscanf(m, "%d_", &v); err == nil && v > highest {
			highest = v
		}
	}
	return highest + 1
}

// sanitizeName lowercases name and keeps [a-z0-9], folding separators into single underscores
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the base names of the up migrations in dir, in file name order
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	migrations := make([]string, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			migrations = append(migrations, base)
		}
	}
	return migrations, nil
}
