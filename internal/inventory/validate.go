package inventory

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medipos/apotek-backend/internal/catalog"
	"github.com/medipos/apotek-backend/pkg/database"
)

// ImportRow is one loosely-typed row from a parsed upload. Numeric fields
// accept either JSON numbers or strings, matching what spreadsheet parsers
// tend to emit.
type ImportRow struct {
	RowNumber     int         `json:"row_number"`
	MedicineName  string      `json:"medicine_name"`
	BatchNumber   string      `json:"batch_number"`
	Quantity      interface{} `json:"quantity"`
	MRP           interface{} `json:"mrp"`
	PurchasePrice interface{} `json:"purchase_price"`
	ExpiryDate    string      `json:"expiry_date"`
}

// RowError carries the diagnostics for one rejected row
type RowError struct {
	RowNumber int       `json:"row_number"`
	Error     string    `json:"error"`
	RowData   ImportRow `json:"row_data"`
}

// expiry dates accept ISO first, then the formats store owners actually type.
// Dates are stricter than prices: a silently-null expiry is a stock-safety
// risk, a null price is just missing data.
var expiryFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	time.RFC3339,
}

// validateRow turns one import row into an insert candidate, or fails with a
// row-level error message. It never mutates anything.
func validateRow(resolver *catalog.Resolver, storeID uuid.UUID, row ImportRow) (*database.InventoryBatch, error) {
	name := strings.TrimSpace(row.MedicineName)
	if name == "" {
		return nil, fmt.Errorf("missing or invalid medicine name")
	}

	qty, ok := parseNumber(row.Quantity)
	if !ok {
		return nil, fmt.Errorf("missing or invalid quantity")
	}
	quantity := int(qty) // fractional quantities truncate toward zero
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be a positive number")
	}

	medicine, err := resolver.Resolve(name)
	if err != nil {
		switch {
		case err == catalog.ErrNotFound:
			return nil, fmt.Errorf("medicine %q not found in master list", name)
		case err == catalog.ErrAmbiguous:
			return nil, fmt.Errorf("ambiguous name %q, be more specific", name)
		default:
			return nil, err
		}
	}

	batch := &database.InventoryBatch{
		StoreID:       storeID,
		MedicineID:    medicine.ID,
		BatchNumber:   strings.TrimSpace(row.BatchNumber),
		Quantity:      quantity,
		MRP:           parseOptionalNumber(row.MRP),
		PurchasePrice: parseOptionalNumber(row.PurchasePrice),
	}

	if expiry := strings.TrimSpace(row.ExpiryDate); expiry != "" {
		parsed, err := parseExpiryDate(expiry)
		if err != nil {
			return nil, fmt.Errorf("invalid expiry date %q", expiry)
		}
		batch.ExpiryDate = parsed
	}

	return batch, nil
}

// parseNumber accepts the value shapes JSON decoding can produce for a
// numeric cell: float64, json.Number, or a numeric string.
func parseNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// parseOptionalNumber returns nil instead of failing on unparseable input.
// Price fields are permissive; only dates and quantities fail a row.
func parseOptionalNumber(v interface{}) *float64 {
	f, ok := parseNumber(v)
	if !ok {
		return nil
	}
	return &f
}

func parseExpiryDate(s string) (*time.Time, error) {
	for _, format := range expiryFormats {
		if t, err := time.Parse(format, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date format")
}
