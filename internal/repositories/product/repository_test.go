package product_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/internal/repositories/product"
	"github.com/Ramsey-B/fern/pkg/database"
)

func getTestLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func getTestRepo(t *testing.T) *product.Repository {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gr.db")
	require.NoError(t, database.NewMigrationService(getTestLogger(), database.MigrationConfig{}).Migrate(database.DriverSQLite, path))
	db, err := database.Open(ctx, database.DriverSQLite, path, database.PoolOptions{MaxOpenConns: 1}, getTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, row := range [][]any{
		{"GS-B", "p1", "3M", "14NV4123414111", "31201504", "", "connector", ""},
		{"GS-A", "p1", "3M Company", "AGM-14NV4123414111-EA", "31201504", "", "connector", "blue"},
	} {
		_, err := db.ExecContext(ctx, `INSERT INTO pers_product_staging (contract_number, product_id, manufacturer, part_number, unspsc, gtin, title, description) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, row...)
		require.NoError(t, err)
	}
	return product.NewRepository(db, getTestLogger())
}

func TestRepository_Get(t *testing.T) {
	repo := getTestRepo(t)

	p, err := repo.Get(context.Background(), "GS-B", "p1")
	require.NoError(t, err)
	assert.Equal(t, "GS-B", p.Vendor)
	assert.Equal(t, "p1", p.SourceID)
	assert.Equal(t, "14NV4123414111", p.PartNumber)
	assert.Equal(t, "31201504", p.CategoryCode)

	_, err = repo.Get(context.Background(), "GS-C", "p1")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}

func TestRepository_GetByProductID(t *testing.T) {
	repo := getTestRepo(t)

	p, err := repo.GetByProductID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "GS-A", p.Vendor)
	assert.Equal(t, "blue", p.Description)

	_, err = repo.GetByProductID(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}
