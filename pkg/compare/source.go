package compare

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"

	"github.com/Ramsey-B/fern/pkg/models"
)

// RecordSource resolves product ids to records. Unknown ids return a 404
// httperror.
type RecordSource interface {
	GetProduct(ctx context.Context, id string) (*models.ProductRecord, error)
}

// ProductStore reads staged vendor products.
type ProductStore interface {
	GetByProductID(ctx context.Context, productID string) (*models.ProductRecord, error)
}

// GoldenRecordStore reads golden records and their links.
type GoldenRecordStore interface {
	FindLinkByProductID(ctx context.Context, productID string) (*models.GoldenRecordLink, error)
	Get(ctx context.Context, guid string) (*models.GoldenRecord, error)
}

// StoreSource reads products from the staging table and falls back to the
// golden record a product is linked to when it is not staged.
type StoreSource struct {
	products ProductStore
	records  GoldenRecordStore
}

// NewStoreSource creates a StoreSource. records may be nil to disable the fallback.
func NewStoreSource(products ProductStore, records GoldenRecordStore) *StoreSource {
	return &StoreSource{products: products, records: records}
}

func (s *StoreSource) GetProduct(ctx context.Context, id string) (*models.ProductRecord, error) {
	p, err := s.products.GetByProductID(ctx, id)
	if err == nil || s.records == nil || httperror.GetStatusCode(err) != http.StatusNotFound {
		return p, err
	}

	link, lerr := s.records.FindLinkByProductID(ctx, id)
	if lerr != nil {
		if httperror.GetStatusCode(lerr) == http.StatusNotFound {
			return nil, err
		}
		return nil, lerr
	}
	record, rerr := s.records.Get(ctx, link.GUID)
	if rerr != nil {
		return nil, rerr
	}
	r := record.Record(link.ContractNumber, link.ProductID)
	return &r, nil
}

// CatalogSource serves products from in-memory catalogs. When an id appears
// more than once, the first record wins.
type CatalogSource struct {
	byID map[string]models.ProductRecord
}

// NewCatalogSource indexes the given catalogs by source id.
func NewCatalogSource(catalogs ...[]models.ProductRecord) *CatalogSource {
	byID := map[string]models.ProductRecord{}
	for _, catalog := range catalogs {
		for _, r := range catalog {
			if _, ok := byID[r.SourceID]; !ok {
				byID[r.SourceID] = r
			}
		}
	}
	return &CatalogSource{byID: byID}
}

func (s *CatalogSource) GetProduct(_ context.Context, id string) (*models.ProductRecord, error) {
	r, ok := s.byID[id]
	if !ok {
		return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("product %s not found", id))
	}
	return &r, nil
}
