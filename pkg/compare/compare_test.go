package compare

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/cache"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/profile"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

var (
	productA = models.ProductRecord{SourceID: "a1", Manufacturer: "3M", PartNumber: "AGM-14NV4123414111-EA", CategoryCode: "31201504", Title: "connector"}
	productB = models.ProductRecord{SourceID: "b1", Manufacturer: "3M", PartNumber: "14NV4123414111", CategoryCode: "31201504"}
)

type countingSource struct {
	RecordSource
	calls int
}

func (s *countingSource) GetProduct(ctx context.Context, id string) (*models.ProductRecord, error) {
	s.calls++
	return s.RecordSource.GetProduct(ctx, id)
}

func TestCompare(t *testing.T) {
	svc := NewService(NewCatalogSource([]models.ProductRecord{productA}, []models.ProductRecord{productB}), profile.NewProfiler(nil, nil, true), nil, testLogger())

	c, err := svc.Compare(context.Background(), "a1", "b1")
	require.NoError(t, err)

	assert.True(t, c.PartNumber.ExactMatch)
	assert.Contains(t, c.PartNumber.Matching, "14NV4123414111")
	assert.True(t, c.Manufacturer.ExactMatch)
	assert.Equal(t, 1.0, c.Manufacturer.Similarity)
	assert.Equal(t, "commodity", c.Category.Level)
	assert.Nil(t, c.GTIN)
	assert.Equal(t, 0.30, c.Synergy)
	assert.Greater(t, c.OverallScore, 0.6)
	assert.Equal(t, c.Breakdown.Total, c.OverallScore)
	assert.Equal(t, 1.0, c.Features["pn_exact_any"])
}

func TestCompare_GTINShownOnlyWhenBothValid(t *testing.T) {
	svc := NewService(NewCatalogSource(), profile.NewProfiler(nil, nil, true), nil, testLogger())

	c := svc.ComparePair(models.ProductRecord{GTIN: "0001"}, models.ProductRecord{GTIN: "0002"})
	require.NotNil(t, c.GTIN)
	assert.True(t, c.GTIN.Mismatch)
	assert.False(t, c.GTIN.ExactMatch)

	c = svc.ComparePair(models.ProductRecord{GTIN: "0001"}, models.ProductRecord{GTIN: "NONE"})
	assert.Nil(t, c.GTIN)
}

func TestCompare_NotFound(t *testing.T) {
	svc := NewService(NewCatalogSource([]models.ProductRecord{productA}), profile.NewProfiler(nil, nil, true), nil, testLogger())

	_, err := svc.Compare(context.Background(), "a1", "zzz")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}

func TestCompare_Cached(t *testing.T) {
	local, err := cache.NewLocal(8)
	require.NoError(t, err)
	src := &countingSource{RecordSource: NewCatalogSource([]models.ProductRecord{productA, productB})}
	svc := NewService(src, profile.NewProfiler(nil, nil, true), local, testLogger())

	first, err := svc.Compare(context.Background(), "a1", "b1")
	require.NoError(t, err)
	second, err := svc.Compare(context.Background(), "a1", "b1")
	require.NoError(t, err)

	assert.Equal(t, 2, src.calls)
	assert.Equal(t, first.OverallScore, second.OverallScore)
	assert.Equal(t, first.PartNumber.Matching, second.PartNumber.Matching)
}

type fakeProducts map[string]models.ProductRecord

func (f fakeProducts) GetByProductID(_ context.Context, id string) (*models.ProductRecord, error) {
	if id == "boom" {
		return nil, errors.New("connection reset")
	}
	p, ok := f[id]
	if !ok {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "product not found")
	}
	return &p, nil
}

type fakeRecords struct{}

func (fakeRecords) FindLinkByProductID(_ context.Context, id string) (*models.GoldenRecordLink, error) {
	if id != "linked" {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "not linked")
	}
	return &models.GoldenRecordLink{GUID: "QBI-1", ContractNumber: "GS-A", ProductID: id}, nil
}

func (fakeRecords) Get(_ context.Context, guid string) (*models.GoldenRecord, error) {
	return &models.GoldenRecord{GUID: guid, Manufacturer: "3M", PartNumber: "14NV4123414111"}, nil
}

func TestStoreSource(t *testing.T) {
	src := NewStoreSource(fakeProducts{"staged": {SourceID: "staged", Manufacturer: "Eaton"}}, fakeRecords{})
	ctx := context.Background()

	p, err := src.GetProduct(ctx, "staged")
	require.NoError(t, err)
	assert.Equal(t, "Eaton", p.Manufacturer)

	p, err = src.GetProduct(ctx, "linked")
	require.NoError(t, err)
	assert.Equal(t, "GS-A", p.Vendor)
	assert.Equal(t, "14NV4123414111", p.PartNumber)

	_, err = src.GetProduct(ctx, "unknown")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))

	_, err = src.GetProduct(ctx, "boom")
	assert.EqualError(t, err, "connection reset")
}

func TestIntersect(t *testing.T) {
	assert.Equal(t, []string{"B", "D"}, intersect([]string{"A", "B", "D"}, []string{"B", "C", "D"}))
	assert.Empty(t, intersect(nil, []string{"A"}))
}
