package ecommerce

import "encoding/json"

// ---------------------------------------------------------------------------
// WooCommerce REST API payloads
// ---------------------------------------------------------------------------

// WooProduct is a product as returned by /products
type WooProduct struct {
	ID               int64          `json:"id"`
	Name             string         `json:"name"`
	Type             string         `json:"type"`
	Status           string         `json:"status"`
	SKU              string         `json:"sku"`
	Description      string         `json:"description"`
	ShortDescription string         `json:"short_description"`
	Price            string         `json:"price"`
	RegularPrice     string         `json:"regular_price"`
	ManageStock      wooManageStock `json:"manage_stock"`
	StockQuantity    *int           `json:"stock_quantity"`
	Weight           string         `json:"weight"`
	Dimensions       WooDimensions  `json:"dimensions"`
	Images           []WooImage     `json:"images"`
	Variations       []int64        `json:"variations"`
}

// WooVariation is a variation as returned by /products/{id}/variations
type WooVariation struct {
	ID            int64                   `json:"id"`
	SKU           string                  `json:"sku"`
	Price         string                  `json:"price"`
	RegularPrice  string                  `json:"regular_price"`
	ManageStock   wooManageStock          `json:"manage_stock"`
	StockQuantity *int                    `json:"stock_quantity"`
	Weight        string                  `json:"weight"`
	Dimensions    WooDimensions           `json:"dimensions"`
	Image         *WooImage               `json:"image"`
	Attributes    []WooVariationAttribute `json:"attributes"`
}

// WooDimensions are the package dimensions in the store's unit
type WooDimensions struct {
	Length string `json:"length"`
	Width  string `json:"width"`
	Height string `json:"height"`
}

// WooImage is a product image
type WooImage struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

// WooVariationAttribute is the chosen option of one variation attribute
type WooVariationAttribute struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Option string `json:"option"`
}

// wooManageStock decodes manage_stock, which variations report as true,
// false or "parent". Only an explicit true counts as managed.
type wooManageStock bool

func (m *wooManageStock) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*m = wooManageStock(b)
		return nil
	}
	*m = false
	return nil
}
