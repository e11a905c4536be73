package goldenrecord

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const (
	recordsTable = "golden_records"
	linksTable   = "golden_record_products"
	topN         = 10
)

// Repository reads golden records and their vendor product links
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new golden record repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// linkCounts joins per-record link counts onto sb as "stats".
func (r *Repository) linkCounts(sb *sqlbuilder.SelectBuilder) {
	counts := r.db.Flavor().NewSelectBuilder()
	counts.Select("guid", "COUNT(*) AS link_count").From(linksTable).GroupBy("guid")
	sb.JoinWithOption(sqlbuilder.LeftJoin, sb.BuilderAs(counts, "stats"), "stats.guid = gr.guid")
}

func (r *Repository) selectRecords() *sqlbuilder.SelectBuilder {
	sb := r.db.Flavor().NewSelectBuilder()
	sb.Select(
		"gr.guid", "gr.id_method", "gr.unspsc", "gr.manufacturer", "gr.part_number",
		"gr.gtin_primary", "gr.title", "gr.description",
		"COALESCE(stats.link_count, 0) AS link_count",
	)
	sb.From(sb.As(recordsTable, "gr"))
	r.linkCounts(sb)
	return sb
}

// LookupLink finds the golden record link of a vendor product
func (r *Repository) LookupLink(ctx context.Context, contractNumber, productID string) (*models.GoldenRecordLink, error) {
	ctx, span := tracing.StartSpan(ctx, "goldenrecord.Repository.LookupLink")
	defer span.End()

	sb := r.db.Flavor().NewSelectBuilder()
	sb.Select("guid", "contract_number", "product_id", "link_confidence", "created_at")
	sb.From(linksTable)
	sb.Where(
		sb.Equal("contract_number", contractNumber),
		sb.Equal("product_id", productID),
	)

	query, args := sb.Build()
	var link models.GoldenRecordLink
	if err := r.db.GetContext(ctx, &link, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("product %s/%s is not linked to a golden record", contractNumber, productID))
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"contract_number": contractNumber,
			"product_id":      productID,
		}).Error("Failed to look up golden record link")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to look up golden record link")
	}
	return &link, nil
}

// FindLinkByProductID finds the first link of a product id in any vendor catalog
func (r *Repository) FindLinkByProductID(ctx context.Context, productID string) (*models.GoldenRecordLink, error) {
	ctx, span := tracing.StartSpan(ctx, "goldenrecord.Repository.FindLinkByProductID")
	defer span.End()

	sb := r.db.Flavor().NewSelectBuilder()
	sb.Select("guid", "contract_number", "product_id", "link_confidence", "created_at")
	sb.From(linksTable)
	sb.Where(sb.Equal("product_id", productID))
	sb.OrderBy("contract_number").Limit(1)

	query, args := sb.Build()
	var link models.GoldenRecordLink
	if err := r.db.GetContext(ctx, &link, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("product %s is not linked to a golden record", productID))
		}
		r.logger.WithContext(ctx).WithError(err).WithField("product_id", productID).Error("Failed to find golden record link")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to find golden record link")
	}
	return &link, nil
}

// Get retrieves a golden record with its link count
func (r *Repository) Get(ctx context.Context, guid string) (*models.GoldenRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "goldenrecord.Repository.Get")
	defer span.End()

	sb := r.selectRecords()
	sb.Where(sb.Equal("gr.guid", guid))

	query, args := sb.Build()
	var record models.GoldenRecord
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("golden record %s not found", guid))
		}
		r.logger.WithContext(ctx).WithError(err).WithField("guid", guid).Error("Failed to get golden record")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get golden record")
	}
	return &record, nil
}

// ListLinks lists the vendor products linked to a golden record, most confident first
func (r *Repository) ListLinks(ctx context.Context, guid string) ([]models.GoldenRecordLink, error) {
	ctx, span := tracing.StartSpan(ctx, "goldenrecord.Repository.ListLinks")
	defer span.End()

	sb := r.db.Flavor().NewSelectBuilder()
	sb.Select("guid", "contract_number", "product_id", "link_confidence", "created_at")
	sb.From(linksTable)
	sb.Where(sb.Equal("guid", guid))
	sb.OrderBy("link_confidence DESC", "contract_number", "product_id")

	query, args := sb.Build()
	links := []models.GoldenRecordLink{}
	if err := r.db.SelectContext(ctx, &links, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("guid", guid).Error("Failed to list golden record links")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list golden record links")
	}
	return links, nil
}

// ListVendorProducts lists a vendor's linked products with their golden records
func (r *Repository) ListVendorProducts(ctx context.Context, contractNumber string, limit int) ([]models.VendorProduct, error) {
	ctx, span := tracing.StartSpan(ctx, "goldenrecord.Repository.ListVendorProducts")
	defer span.End()

	sb := r.db.Flavor().NewSelectBuilder()
	sb.Select(
		"vl.contract_number", "vl.product_id", "vl.guid", "vl.link_confidence",
		"gr.manufacturer", "gr.part_number", "gr.title",
		"COALESCE(stats.link_count, 0) AS link_count",
	)
	sb.From(sb.As(linksTable, "vl"))
	sb.Join(sb.As(recordsTable, "gr"), "vl.guid = gr.guid")
	r.linkCounts(sb)
	sb.Where(sb.Equal("vl.contract_number", contractNumber))
	sb.OrderBy("vl.product_id")
	sb.Limit(limit)

	query, args := sb.Build()
	products := []models.VendorProduct{}
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("contract_number", contractNumber).Error("Failed to list vendor products")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list vendor products")
	}
	return products, nil
}

// Search finds golden records whose category, manufacturer, part number,
// title, description or GTIN contains query
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]models.GoldenRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "goldenrecord.Repository.Search")
	defer span.End()

	pattern := "%" + query + "%"
	sb := r.selectRecords()
	sb.Where(sb.Or(
		sb.Like("gr.unspsc", pattern),
		sb.Like("gr.manufacturer", pattern),
		sb.Like("gr.part_number", pattern),
		sb.Like("gr.title", pattern),
		sb.Like("gr.description", pattern),
		sb.Like("gr.gtin_primary", pattern),
	))
	sb.OrderBy("link_count DESC", "gr.manufacturer", "gr.part_number")
	sb.Limit(limit)

	q, args := sb.Build()
	records := []models.GoldenRecord{}
	if err := r.db.SelectContext(ctx, &records, q, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("query", query).Error("Failed to search golden records")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to search golden records")
	}
	return records, nil
}

// ListMultiVendor lists golden records linked to at least minLinks vendor products
func (r *Repository) ListMultiVendor(ctx context.Context, minLinks, limit int) ([]models.GoldenRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "goldenrecord.Repository.ListMultiVendor")
	defer span.End()

	sb := r.selectRecords()
	sb.Where(sb.GreaterEqualThan("COALESCE(stats.link_count, 0)", minLinks))
	sb.OrderBy("link_count DESC", "gr.manufacturer", "gr.part_number")
	sb.Limit(limit)

	query, args := sb.Build()
	records := []models.GoldenRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list multi-vendor golden records")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list multi-vendor golden records")
	}
	return records, nil
}

// ListVendors lists the distinct contract numbers with linked products
func (r *Repository) ListVendors(ctx context.Context) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "goldenrecord.Repository.ListVendors")
	defer span.End()

	sb := r.db.Flavor().NewSelectBuilder()
	sb.Select("contract_number").Distinct().From(linksTable).OrderBy("contract_number")

	query, args := sb.Build()
	vendors := []string{}
	if err := r.db.SelectContext(ctx, &vendors, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list vendors")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list vendors")
	}
	return vendors, nil
}
