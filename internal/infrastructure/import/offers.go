package csvimport

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/integration"
)

// Column names of the Bol.com offer export. Alternatives are tried in order.
var (
	offerIDColumns   = []string{"offerId", "offer_id"}
	eanColumns       = []string{"ean", "EAN"}
	referenceColumns = []string{"referenceCode", "reference"}
	priceColumns     = []string{"bundlePricesPrice", "price"}
	stockColumns     = []string{"correctedStock", "stockAmount", "stock"}
)

// DecodeOffers decodes an offer export into records, in artifact order.
// Values that do not parse are reported as RowErrors and left at their zero value.
func DecodeOffers(data []byte, opts ...DecoderOption) ([]integration.ExternalOfferRecord, []RowError, error) {
	_, rows, err := NewDecoder(opts...).Decode(data)
	if err != nil {
		return nil, nil, err
	}

	records := make([]integration.ExternalOfferRecord, 0, len(rows))
	var rowErrors []RowError
	for _, row := range rows {
		rec := integration.ExternalOfferRecord{
			OfferID:       row.GetOrDefault("", offerIDColumns...),
			EAN:           row.GetOrDefault("", eanColumns...),
			ReferenceCode: row.GetOrDefault("", referenceColumns...),
			Price:         decimal.Zero,
			Attributes:    row.Data,
		}

		if raw := row.GetOrDefault("", priceColumns...); raw != "" {
			price, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
			if err != nil {
				rowErrors = append(rowErrors, NewTypeError(row.LineNumber, priceColumns[0], "decimal", raw))
			} else {
				rec.Price = price
			}
		}

		if raw := row.GetOrDefault("", stockColumns...); raw != "" {
			stock, err := strconv.Atoi(raw)
			if err != nil {
				rowErrors = append(rowErrors, NewTypeError(row.LineNumber, stockColumns[0], "integer", raw))
			} else {
				rec.Stock = stock
			}
		}

		records = append(records, rec)
	}

	return records, rowErrors, nil
}
