package goldenrecord

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Stats summarises the store: totals, the distribution of links per record,
// and the most common id methods, manufacturers and categories
func (r *Repository) Stats(ctx context.Context) (*models.GoldenRecordStats, error) {
	ctx, span := tracing.StartSpan(ctx, "goldenrecord.Repository.Stats")
	defer span.End()

	var stats models.GoldenRecordStats
	flavor := r.db.Flavor()

	counts := []struct {
		dest  *int
		build func() *sqlbuilder.SelectBuilder
	}{
		{&stats.GoldenRecords, func() *sqlbuilder.SelectBuilder {
			return flavor.NewSelectBuilder().Select("COUNT(*)").From(recordsTable)
		}},
		{&stats.Links, func() *sqlbuilder.SelectBuilder {
			return flavor.NewSelectBuilder().Select("COUNT(*)").From(linksTable)
		}},
		{&stats.Vendors, func() *sqlbuilder.SelectBuilder {
			return flavor.NewSelectBuilder().Select("COUNT(DISTINCT contract_number)").From(linksTable)
		}},
	}
	for _, c := range counts {
		query, args := c.build().Build()
		if err := r.db.GetContext(ctx, c.dest, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to count golden record store")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to compute golden record statistics")
		}
	}

	perRecord := flavor.NewSelectBuilder()
	perRecord.Select("guid", "COUNT(*) AS link_count").From(linksTable).GroupBy("guid")
	dist := flavor.NewSelectBuilder()
	dist.Select("CAST(link_count AS TEXT) AS bucket_key", "COUNT(*) AS bucket_count").
		From(dist.BuilderAs(perRecord, "counts")).
		GroupBy("link_count").
		OrderBy("link_count")

	byMethod := flavor.NewSelectBuilder()
	byMethod.Select("id_method AS bucket_key", "COUNT(*) AS bucket_count").
		From(recordsTable).
		GroupBy("id_method").
		OrderBy("bucket_count DESC", "bucket_key")

	topMfr := flavor.NewSelectBuilder()
	topMfr.Select("manufacturer AS bucket_key", "COUNT(*) AS bucket_count").
		From(recordsTable).
		Where(topMfr.NotEqual("manufacturer", "")).
		GroupBy("manufacturer").
		OrderBy("bucket_count DESC", "bucket_key").
		Limit(topN)

	topCat := flavor.NewSelectBuilder()
	topCat.Select("unspsc AS bucket_key", "COUNT(*) AS bucket_count").
		From(recordsTable).
		Where(topCat.NotEqual("unspsc", ""), topCat.NotEqual("unspsc", "00000000")).
		GroupBy("unspsc").
		OrderBy("bucket_count DESC", "bucket_key").
		Limit(topN)

	buckets := []struct {
		dest *[]models.CountBucket
		sb   *sqlbuilder.SelectBuilder
	}{
		{&stats.LinkDistribution, dist},
		{&stats.ByIDMethod, byMethod},
		{&stats.TopManufacturers, topMfr},
		{&stats.TopCategories, topCat},
	}
	for _, b := range buckets {
		*b.dest = []models.CountBucket{}
		query, args := b.sb.Build()
		if err := r.db.SelectContext(ctx, b.dest, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to aggregate golden record store")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to compute golden record statistics")
		}
	}

	for _, b := range stats.LinkDistribution {
		if b.Key == "1" {
			stats.SingleLinkRecords = b.Count
		} else {
			stats.MultiVendorRecords += b.Count
		}
	}

	return &stats, nil
}
