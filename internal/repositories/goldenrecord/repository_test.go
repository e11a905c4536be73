package goldenrecord_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/internal/repositories/goldenrecord"
	"github.com/Ramsey-B/fern/pkg/database"
)

func getTestLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func getTestDB(t *testing.T) database.DB {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gr.db")
	require.NoError(t, database.NewMigrationService(getTestLogger(), database.MigrationConfig{}).Migrate(database.DriverSQLite, path))
	db, err := database.Open(ctx, database.DriverSQLite, path, database.PoolOptions{MaxOpenConns: 1}, getTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	stmts := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO golden_records (guid, id_method, unspsc, manufacturer, part_number, gtin_primary, title, description) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			[]any{"QBI-1", "gtin", "31201504", "3M", "14NV4123414111", "00012345678905", "connector", "blue connector"}},
		{`INSERT INTO golden_records (guid, id_method, unspsc, manufacturer, part_number, gtin_primary, title, description) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			[]any{"QBI-2", "mfr_pn", "39121000", "EATON", "12345", "", "breaker", ""}},
		{`INSERT INTO golden_records (guid, id_method, unspsc, manufacturer, part_number, gtin_primary, title, description) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			[]any{"QBI-3", "mfr_pn", "00000000", "3M", "XYZ", "", "tape", ""}},
		{`INSERT INTO golden_record_products (guid, contract_number, product_id, link_confidence, created_at) VALUES (?, ?, ?, ?, ?)`,
			[]any{"QBI-1", "GS-A", "p1", 0.97, now}},
		{`INSERT INTO golden_record_products (guid, contract_number, product_id, link_confidence, created_at) VALUES (?, ?, ?, ?, ?)`,
			[]any{"QBI-1", "GS-B", "p9", 0.99, now}},
		{`INSERT INTO golden_record_products (guid, contract_number, product_id, link_confidence, created_at) VALUES (?, ?, ?, ?, ?)`,
			[]any{"QBI-2", "GS-A", "p2", 1.0, now}},
	}
	for _, s := range stmts {
		_, err := db.ExecContext(ctx, s.query, s.args...)
		require.NoError(t, err)
	}
	return db
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, httperror.IsHTTPError(err), "expected HTTP error, got: %v", err)
	assert.Equal(t, status, httperror.GetStatusCode(err))
}

func TestRepository_LookupLink(t *testing.T) {
	repo := goldenrecord.NewRepository(getTestDB(t), getTestLogger())
	ctx := context.Background()

	link, err := repo.LookupLink(ctx, "GS-A", "p1")
	require.NoError(t, err)
	assert.Equal(t, "QBI-1", link.GUID)
	assert.Equal(t, 0.97, link.LinkConfidence)

	_, err = repo.LookupLink(ctx, "GS-A", "missing")
	assertStatus(t, err, http.StatusNotFound)

	link, err = repo.FindLinkByProductID(ctx, "p9")
	require.NoError(t, err)
	assert.Equal(t, "GS-B", link.ContractNumber)
}

func TestRepository_Get(t *testing.T) {
	repo := goldenrecord.NewRepository(getTestDB(t), getTestLogger())
	ctx := context.Background()

	record, err := repo.Get(ctx, "QBI-1")
	require.NoError(t, err)
	assert.Equal(t, "3M", record.Manufacturer)
	assert.Equal(t, "00012345678905", record.GTIN)
	assert.Equal(t, 2, record.LinkCount)

	record, err = repo.Get(ctx, "QBI-3")
	require.NoError(t, err)
	assert.Equal(t, 0, record.LinkCount)

	_, err = repo.Get(ctx, "QBI-404")
	assertStatus(t, err, http.StatusNotFound)
}

func TestRepository_ListLinks(t *testing.T) {
	repo := goldenrecord.NewRepository(getTestDB(t), getTestLogger())

	links, err := repo.ListLinks(context.Background(), "QBI-1")
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "p9", links[0].ProductID)
	assert.Equal(t, "p1", links[1].ProductID)

	links, err = repo.ListLinks(context.Background(), "QBI-3")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestRepository_ListVendorProducts(t *testing.T) {
	repo := goldenrecord.NewRepository(getTestDB(t), getTestLogger())

	products, err := repo.ListVendorProducts(context.Background(), "GS-A", 10)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0].ProductID)
	assert.Equal(t, 2, products[0].LinkCount)
	assert.Equal(t, "EATON", products[1].Manufacturer)

	products, err = repo.ListVendorProducts(context.Background(), "GS-A", 1)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestRepository_Search(t *testing.T) {
	repo := goldenrecord.NewRepository(getTestDB(t), getTestLogger())

	records, err := repo.Search(context.Background(), "3M", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "QBI-1", records[0].GUID)

	records, err = repo.Search(context.Background(), "breaker", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "QBI-2", records[0].GUID)
}

func TestRepository_ListMultiVendor(t *testing.T) {
	repo := goldenrecord.NewRepository(getTestDB(t), getTestLogger())

	records, err := repo.ListMultiVendor(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "QBI-1", records[0].GUID)
}

func TestRepository_ListVendors(t *testing.T) {
	repo := goldenrecord.NewRepository(getTestDB(t), getTestLogger())

	vendors, err := repo.ListVendors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"GS-A", "GS-B"}, vendors)
}

func TestRepository_Stats(t *testing.T) {
	repo := goldenrecord.NewRepository(getTestDB(t), getTestLogger())

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.GoldenRecords)
	assert.Equal(t, 3, stats.Links)
	assert.Equal(t, 2, stats.Vendors)
	assert.Equal(t, 1, stats.SingleLinkRecords)
	assert.Equal(t, 1, stats.MultiVendorRecords)
	require.Len(t, stats.LinkDistribution, 2)
	assert.Equal(t, "1", stats.LinkDistribution[0].Key)
	assert.Equal(t, "2", stats.LinkDistribution[1].Key)
	require.NotEmpty(t, stats.TopManufacturers)
	assert.Equal(t, "3M", stats.TopManufacturers[0].Key)
	assert.Equal(t, 2, stats.TopManufacturers[0].Count)
	assert.Len(t, stats.TopCategories, 2)
	assert.Equal(t, "mfr_pn", stats.ByIDMethod[0].Key)
}
