// Package integration runs the records store, migrations and report service against a real
// PostgreSQL started with testcontainers.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/facultymis/backend/internal/infrastructure/config"
	"github.com/facultymis/backend/internal/infrastructure/migration"
	"github.com/facultymis/backend/internal/infrastructure/persistence"
	"github.com/facultymis/backend/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// TestDB is a migrated records database in its own container
type TestDB struct {
	Database  *persistence.Database
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	t         *testing.T
}

// NewTestDB starts a fresh PostgreSQL container and applies the embedded migrations.
// The container is terminated when the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("fmis_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	database, err := persistence.NewDatabase(&config.DatabaseConfig{
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 1,
	}, persistence.Options{
		Logger:    zap.NewNop(),
		LogLevel:  "silent",
		Dialector: gormpostgres.Open(dsn),
	})
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := database.DB.DB()
	require.NoError(t, err)

	tdb := &TestDB{
		Database:  database,
		DB:        database.DB,
		SqlDB:     sqlDB,
		Container: container,
		DSN:       dsn,
		t:         t,
	}
	t.Cleanup(tdb.Close)

	m := tdb.Migrator()
	require.NoError(t, m.Up(), "Failed to run migrations")
	return tdb
}

// Migrator returns a migrator over the embedded migrations. It holds one connection and
// is never closed: closing it would close the shared sql.DB.
func (tdb *TestDB) Migrator() *migration.Migrator {
	tdb.t.Helper()
	m, err := migration.NewFromFS(tdb.SqlDB, migrations.FS, zap.NewNop())
	require.NoError(tdb.t, err, "Failed to create migrator")
	return m
}

// Close closes the connection and terminates the container
func (tdb *TestDB) Close() {
	if tdb.Database != nil {
		_ = tdb.Database.Close()
	}
	if tdb.Container != nil {
		if err := tdb.Container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}
}

// InsertRows adds records to an entity table; every row needs a brcode
func (tdb *TestDB) InsertRows(table string, rows ...map[string]any) {
	tdb.t.Helper()
	for _, r := range rows {
		require.NoError(tdb.t, tdb.DB.Table(table).Create(r).Error, "Failed to insert into %s", table)
	}
}

// InsertBranches registers units in the branches table
func (tdb *TestDB) InsertBranches(codes map[string]string) {
	tdb.t.Helper()
	for code, title := range codes {
		err := tdb.DB.Exec(fmt.Sprintf("INSERT INTO %s (brcode, brcode_title) VALUES (?, ?)", persistence.BranchesTable), code, title).Error
		require.NoError(tdb.t, err, "Failed to insert branch %s", code)
	}
}
