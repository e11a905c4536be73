package models

import "time"

// ProductRecord is a single vendor catalog row. The engine never mutates it.
type ProductRecord struct {
	SourceID     string `json:"source_id" db:"product_id"`
	Vendor       string `json:"vendor,omitempty" db:"contract_number"`
	Manufacturer string `json:"manufacturer" db:"manufacturer"`
	PartNumber   string `json:"part_number" db:"part_number"`
	CategoryCode string `json:"category_code" db:"unspsc"`
	GTIN         string `json:"gtin" db:"gtin"`
	Title        string `json:"title" db:"title"`
	Description  string `json:"description" db:"description"`
}

// CanonicalManufacturer is a group of manufacturer names that refer to one entity.
type CanonicalManufacturer struct {
	CanonicalKey string   `json:"canonical_key"`
	DisplayName  string   `json:"display_name"`
	Aliases      []string `json:"aliases"`
}

// GoldenRecord is a cluster of vendor records describing one real-world product.
type GoldenRecord struct {
	GUID         string `json:"guid" db:"guid"`
	IDMethod     string `json:"id_method" db:"id_method"`
	CategoryCode string `json:"category_code" db:"unspsc"`
	Manufacturer string `json:"manufacturer" db:"manufacturer"`
	PartNumber   string `json:"part_number" db:"part_number"`
	GTIN         string `json:"gtin" db:"gtin_primary"`
	Title        string `json:"title" db:"title"`
	Description  string `json:"description,omitempty" db:"description"`
	LinkCount    int    `json:"link_count" db:"link_count"`
}

// Record returns the golden record as a product record attributed to a vendor product.
func (g GoldenRecord) Record(contractNumber, productID string) ProductRecord {
	return ProductRecord{
		SourceID:     productID,
		Vendor:       contractNumber,
		Manufacturer: g.Manufacturer,
		PartNumber:   g.PartNumber,
		CategoryCode: g.CategoryCode,
		GTIN:         g.GTIN,
		Title:        g.Title,
		Description:  g.Description,
	}
}

// GoldenRecordLink links a vendor product to a golden record.
type GoldenRecordLink struct {
	GUID           string    `json:"guid" db:"guid"`
	ContractNumber string    `json:"contract_number" db:"contract_number"`
	ProductID      string    `json:"product_id" db:"product_id"`
	LinkConfidence float64   `json:"link_confidence" db:"link_confidence"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// VendorProduct is a vendor product link joined with its golden record.
type VendorProduct struct {
	ContractNumber string  `json:"contract_number" db:"contract_number"`
	ProductID      string  `json:"product_id" db:"product_id"`
	GUID           string  `json:"guid" db:"guid"`
	LinkConfidence float64 `json:"link_confidence" db:"link_confidence"`
	Manufacturer   string  `json:"manufacturer" db:"manufacturer"`
	PartNumber     string  `json:"part_number" db:"part_number"`
	Title          string  `json:"title" db:"title"`
	LinkCount      int     `json:"link_count" db:"link_count"`
}

// CountBucket is a labelled count used by the statistics queries.
type CountBucket struct {
	Key   string `json:"key" db:"bucket_key"`
	Count int    `json:"count" db:"bucket_count"`
}

// GoldenRecordStats summarises the golden-record store.
type GoldenRecordStats struct {
	GoldenRecords      int           `json:"golden_records"`
	Links              int           `json:"links"`
	Vendors            int           `json:"vendors"`
	SingleLinkRecords  int           `json:"single_link_records"`
	MultiVendorRecords int           `json:"multi_vendor_records"`
	ByIDMethod         []CountBucket `json:"by_id_method"`
	LinkDistribution   []CountBucket `json:"link_distribution"`
	TopManufacturers   []CountBucket `json:"top_manufacturers"`
	TopCategories      []CountBucket `json:"top_categories"`
}
