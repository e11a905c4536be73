// Package catalog reads vendor product catalogs and writes engine results as CSV.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// column names accepted for each record field, in preference order
var columnNames = map[string][]string{
	"source_id":     {"source_id", "product_id", "id"},
	"vendor":        {"vendor", "contract_number"},
	"manufacturer":  {"manufacturer", "manufacturer_name", "mfr"},
	"part_number":   {"part_number", "mfr_part_number", "pn"},
	"category_code": {"category_code", "unspsc"},
	"gtin":          {"gtin", "gtin_primary", "upc", "ean"},
	"title":         {"title", "name", "product_name"},
	"description":   {"description", "desc"},
}

// rowNamespace seeds the ids generated for rows without a source id.
var rowNamespace = uuid.MustParse("5d3c2a51-8a57-4b8f-9c31-6f1c0b7e2f10")

// ReadFile reads a catalog CSV file.
func ReadFile(ctx context.Context, path string, logger ectologger.Logger) ([]models.ProductRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	records, err := Read(ctx, f, logger)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return records, nil
}

// Read parses catalog rows from CSV. Missing columns and "nan" cells read as
// empty strings. Rows without a source id get an id derived from their
// contents and position, which is stable across reads of the same file.
func Read(ctx context.Context, src io.Reader, logger ectologger.Logger) ([]models.ProductRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.Read")
	defer span.End()

	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	cols := resolveColumns(header)

	cell := func(rec []string, field string) string {
		i, ok := cols[field]
		if !ok || i >= len(rec) {
			return ""
		}
		v := strings.TrimSpace(rec[i])
		if strings.EqualFold(v, "nan") {
			return ""
		}
		return v
	}

	var (
		records   []models.ProductRecord
		generated int
	)
	for line := 1; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row %d: %w", line, err)
		}

		r := models.ProductRecord{
			SourceID:     cell(rec, "source_id"),
			Vendor:       cell(rec, "vendor"),
			Manufacturer: cell(rec, "manufacturer"),
			PartNumber:   cell(rec, "part_number"),
			CategoryCode: cell(rec, "category_code"),
			GTIN:         cell(rec, "gtin"),
			Title:        cell(rec, "title"),
			Description:  cell(rec, "description"),
		}
		if r.SourceID == "" {
			r.SourceID = generatedID(line, rec)
			generated++
		}
		records = append(records, r)
	}

	log := logger.WithContext(ctx).WithFields(map[string]any{
		"records":       len(records),
		"generated_ids": generated,
	})
	for field := range columnNames {
		if _, ok := cols[field]; !ok {
			log = log.WithField("missing_"+field, true)
		}
	}
	log.Debug("read catalog")

	return records, nil
}

func resolveColumns(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}

	cols := make(map[string]int, len(columnNames))
	for field, names := range columnNames {
		for _, n := range names {
			if i, ok := index[n]; ok {
				cols[field] = i
				break
			}
		}
	}
	return cols
}

func generatedID(line int, rec []string) string {
	key := fmt.Sprintf("%d\x00%s", line, strings.Join(rec, "\x00"))
	return "row-" + uuid.NewSHA1(rowNamespace, []byte(key)).String()
}
