package product

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

const stagingTable = "pers_product_staging"

var productColumns = []string{
	"contract_number", "product_id", "manufacturer", "part_number", "unspsc", "gtin", "title", "description",
}

// Repository reads staged vendor products
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new staged product repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) get(ctx context.Context, sb *sqlbuilder.SelectBuilder, notFound string, fields map[string]any) (*models.ProductRecord, error) {
	query, args := sb.Build()
	var p models.ProductRecord
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, notFound)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(fields).Error("Failed to get staged product")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get staged product")
	}
	return &p, nil
}

// Get retrieves a staged product by vendor and product id
func (r *Repository) Get(ctx context.Context, contractNumber, productID string) (*models.ProductRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "product.Repository.Get")
	defer span.End()

	sb := r.db.Flavor().NewSelectBuilder()
	sb.Select(productColumns...).From(stagingTable)
	sb.Where(
		sb.Equal("contract_number", contractNumber),
		sb.Equal("product_id", productID),
	)

	return r.get(ctx, sb, fmt.Sprintf("product %s/%s not found", contractNumber, productID), map[string]any{
		"contract_number": contractNumber,
		"product_id":      productID,
	})
}

// GetByProductID retrieves a staged product by product id. When several
// vendors carry the id, the lowest contract number wins.
func (r *Repository) GetByProductID(ctx context.Context, productID string) (*models.ProductRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "product.Repository.GetByProductID")
	defer span.End()

	sb := r.db.Flavor().NewSelectBuilder()
	sb.Select(productColumns...).From(stagingTable)
	sb.Where(sb.Equal("product_id", productID))
	sb.OrderBy("contract_number").Limit(1)

	return r.get(ctx, sb, fmt.Sprintf("product %s not found", productID), map[string]any{
		"product_id": productID,
	})
}
