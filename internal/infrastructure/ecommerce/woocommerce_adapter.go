package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wms/backend/internal/domain/integration"
)

// WooCommerceAdapter implements integration.ProductCatalogClient for the WooCommerce REST API
type WooCommerceAdapter struct {
	config     *WooCommerceConfig
	httpClient HTTPDoer
}

// NewWooCommerceAdapter creates a new WooCommerce adapter. A nil client gets
// a default one with the configured timeout.
func NewWooCommerceAdapter(config *WooCommerceConfig, client HTTPDoer) (*WooCommerceAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: time.Duration(config.TimeoutSeconds) * time.Second}
	}
	return &WooCommerceAdapter{config: config, httpClient: client}, nil
}

// PlatformCode returns the platform this adapter speaks to
func (a *WooCommerceAdapter) PlatformCode() integration.PlatformCode {
	return integration.PlatformCodeWooCommerce
}

// ListProducts fetches one page of the shop's products
func (a *WooCommerceAdapter) ListProducts(ctx context.Context, page int) (integration.ProductPage, error) {
	if page < 1 {
		page = 1
	}

	var products []WooProduct
	if err := a.getJSON(ctx, "/products", page, &products); err != nil {
		return integration.ProductPage{}, err
	}

	out := integration.ProductPage{
		Page:     page,
		PerPage:  a.config.PerPage,
		Products: make([]integration.StoreProduct, 0, len(products)),
	}
	for i := range products {
		out.Products = append(out.Products, a.convertProduct(&products[i]))
	}
	return out, nil
}

// ListVariations fetches all variations of a variable product
func (a *WooCommerceAdapter) ListVariations(ctx context.Context, productID string) ([]integration.StoreVariation, error) {
	if _, err := strconv.ParseInt(productID, 10, 64); err != nil {
		return nil, fmt.Errorf("woocommerce: invalid product ID %q", productID)
	}

	var out []integration.StoreVariation
	for page := 1; ; page++ {
		var variations []WooVariation
		if err := a.getJSON(ctx, "/products/"+url.PathEscape(productID)+"/variations", page, &variations); err != nil {
			return nil, err
		}
		for i := range variations {
			out = append(out, a.convertVariation(&variations[i]))
		}
		if len(variations) < a.config.PerPage {
			return out, nil
		}
	}
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// getJSON performs a paginated GET and decodes the JSON answer into v
func (a *WooCommerceAdapter) getJSON(ctx context.Context, resource string, page int, v any) error {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(a.config.PerPage))
	q.Set("page", strconv.Itoa(page))

	req, err := newRequest(ctx, http.MethodGet, a.config.endpoint(resource)+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(a.config.ConsumerKey, a.config.ConsumerSecret)
	req.Header.Set("Accept", "application/json")

	body, err := send(a.httpClient, req, maxResponseSize)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResp, err)
	}
	return nil
}

func (a *WooCommerceAdapter) convertProduct(p *WooProduct) integration.StoreProduct {
	kind := integration.StoreProductSimple
	if p.Type == "variable" {
		kind = integration.StoreProductVariable
	}

	description := p.ShortDescription
	if description == "" {
		description = p.Description
	}

	out := integration.StoreProduct{
		ID:          strconv.FormatInt(p.ID, 10),
		Name:        p.Name,
		Kind:        kind,
		SKU:         p.SKU,
		Description: stripTags(description),
		Price:       parsePrice(p.Price, p.RegularPrice),
		ManageStock: bool(p.ManageStock),
		Weight:      a.weight(p.Weight),
		Dimensions:  a.dimensions(p.Dimensions),
	}
	if p.StockQuantity != nil {
		out.StockQuantity = *p.StockQuantity
	}
	if len(p.Images) > 0 {
		out.ImageURL = p.Images[0].Src
	}
	return out
}

func (a *WooCommerceAdapter) convertVariation(v *WooVariation) integration.StoreVariation {
	out := integration.StoreVariation{
		ID:          strconv.FormatInt(v.ID, 10),
		SKU:         v.SKU,
		Price:       parsePrice(v.Price, v.RegularPrice),
		ManageStock: bool(v.ManageStock),
		Weight:      a.weight(v.Weight),
		Dimensions:  a.dimensions(v.Dimensions),
	}
	if v.StockQuantity != nil {
		out.StockQuantity = *v.StockQuantity
	}
	if v.Image != nil {
		out.ImageURL = v.Image.Src
	}
	for _, attr := range v.Attributes {
		out.Options = append(out.Options, attr.Option)
	}
	return out
}

func (a *WooCommerceAdapter) weight(w string) string {
	w = strings.TrimSpace(w)
	if w == "" {
		return ""
	}
	return w + " " + a.config.WeightUnit
}

func (a *WooCommerceAdapter) dimensions(d WooDimensions) integration.Dimensions {
	out := integration.Dimensions{Length: d.Length, Width: d.Width, Height: d.Height}
	if !out.IsZero() {
		out.Unit = a.config.DimensionUnit
	}
	return out
}

// parsePrice returns the first candidate that parses as a decimal
func parsePrice(candidates ...string) decimal.Decimal {
	for _, c := range candidates {
		if d, err := decimal.NewFromString(strings.TrimSpace(c)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// stripTags returns the text content of a WooCommerce rich-text field
func stripTags(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body})
	if err != nil {
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Ensure WooCommerceAdapter implements ProductCatalogClient
var _ integration.ProductCatalogClient = (*WooCommerceAdapter)(nil)
