package goldenrecord

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/models"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Store is satisfied by the golden record repository.
type Store interface {
	LookupLink(ctx context.Context, contractNumber, productID string) (*models.GoldenRecordLink, error)
	Get(ctx context.Context, guid string) (*models.GoldenRecord, error)
	ListLinks(ctx context.Context, guid string) ([]models.GoldenRecordLink, error)
	ListVendorProducts(ctx context.Context, contractNumber string, limit int) ([]models.VendorProduct, error)
	Search(ctx context.Context, query string, limit int) ([]models.GoldenRecord, error)
	ListMultiVendor(ctx context.Context, minLinks, limit int) ([]models.GoldenRecord, error)
	ListVendors(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (*models.GoldenRecordStats, error)
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Register registers golden record routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("/stats", h.Stats)
	g.GET("/search", h.Search)
	g.GET("/lookup", h.Lookup)
	g.GET("/multi-vendor", h.ListMultiVendor)
	g.GET("/vendors", h.ListVendors)
	g.GET("/vendors/:contract/products", h.ListVendorProducts)
	g.GET("/:guid", h.Get)
}

// RecordWithLinks is a golden record with its vendor product links.
type RecordWithLinks struct {
	models.GoldenRecord
	Links []models.GoldenRecordLink `json:"links"`
}

func intParam(c echo.Context, name string, def, max int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, httperror.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	if max > 0 && v > max {
		v = max
	}
	return v, nil
}

// Get returns a golden record and its links
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	guid := c.Param("guid")

	record, err := h.store.Get(ctx, guid)
	if err != nil {
		return err
	}

	links, err := h.store.ListLinks(ctx, guid)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, RecordWithLinks{GoldenRecord: *record, Links: links})
}

// Lookup finds the golden record a vendor product is linked to
func (h *Handler) Lookup(c echo.Context) error {
	ctx := c.Request().Context()

	contract := c.QueryParam("contract_number")
	productID := c.QueryParam("product_id")
	if contract == "" || productID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "contract_number and product_id query parameters are required")
	}

	link, err := h.store.LookupLink(ctx, contract, productID)
	if err != nil {
		return err
	}

	record, err := h.store.Get(ctx, link.GUID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"link":          link,
		"golden_record": record,
	})
}

// Search searches golden records by text
func (h *Handler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	query := c.QueryParam("q")
	if query == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "q query parameter is required")
	}
	limit, err := intParam(c, "limit", defaultLimit, maxLimit)
	if err != nil {
		return err
	}

	records, err := h.store.Search(ctx, query, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, records)
}

// ListMultiVendor lists golden records linked from several vendor products
func (h *Handler) ListMultiVendor(c echo.Context) error {
	ctx := c.Request().Context()

	minLinks, err := intParam(c, "min_links", 2, 0)
	if err != nil {
		return err
	}
	limit, err := intParam(c, "limit", defaultLimit, maxLimit)
	if err != nil {
		return err
	}

	records, err := h.store.ListMultiVendor(ctx, minLinks, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, records)
}

// ListVendors lists the vendors (contract numbers) with links
func (h *Handler) ListVendors(c echo.Context) error {
	vendors, err := h.store.ListVendors(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, vendors)
}

// ListVendorProducts lists one vendor's linked products
func (h *Handler) ListVendorProducts(c echo.Context) error {
	ctx := c.Request().Context()

	limit, err := intParam(c, "limit", defaultLimit, maxLimit)
	if err != nil {
		return err
	}

	products, err := h.store.ListVendorProducts(ctx, c.Param("contract"), limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

// Stats returns golden record statistics
func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.store.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
