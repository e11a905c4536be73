package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gr.db")
	require.NoError(t, NewMigrationService(testLogger(), MigrationConfig{}).Migrate(DriverSQLite, path))

	db, err := Open(ctx, DriverSQLite, path, PoolOptions{MaxOpenConns: 1}, testLogger())
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, sqlbuilder.SQLite, db.Flavor())

	var n int
	require.NoError(t, db.GetContext(ctx, &n, "SELECT COUNT(*) FROM golden_records"))
	assert.Equal(t, 0, n)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "", PoolOptions{}, testLogger())
	assert.Error(t, err)
}
