package ecommerce

// ---------------------------------------------------------------------------
// Bol.com Retailer API payloads
// ---------------------------------------------------------------------------

// BolExportRequest is the body of the offer export request
type BolExportRequest struct {
	Format string `json:"format"`
}

// BolProcessStatus is returned by the export request and the status endpoint
type BolProcessStatus struct {
	ProcessStatusID string `json:"processStatusId"`
	EntityID        string `json:"entityId,omitempty"`
	EventType       string `json:"eventType,omitempty"`
	Description     string `json:"description,omitempty"`
	Status          string `json:"status"`
	ErrorMessage    string `json:"errorMessage,omitempty"`
	CreateTimestamp string `json:"createTimestamp,omitempty"`
}

// Process statuses reported by Bol.com
const (
	BolStatusPending = "PENDING"
	BolStatusSuccess = "SUCCESS"
	BolStatusFailure = "FAILURE"
	BolStatusTimeout = "TIMEOUT"
)

// BolCatalogProduct is the content record of one EAN
type BolCatalogProduct struct {
	GTIN       string                `json:"gtin"`
	Published  bool                  `json:"published"`
	Attributes []BolCatalogAttribute `json:"attributes"`
	Assets     []BolAsset            `json:"assets"`
}

// BolCatalogAttribute is one attribute of a catalog product
type BolCatalogAttribute struct {
	ID     string                     `json:"id"`
	Values []BolCatalogAttributeValue `json:"values"`
}

// BolCatalogAttributeValue is one value of a catalog attribute
type BolCatalogAttributeValue struct {
	Value  string `json:"value"`
	UnitID string `json:"unitId,omitempty"`
}

// BolAsset is an image of a catalog product in several sizes
type BolAsset struct {
	Usage    string            `json:"usage"`
	Order    int               `json:"order"`
	Variants []BolAssetVariant `json:"variants"`
}

// BolAssetVariant is one rendition of an asset
type BolAssetVariant struct {
	Size   string `json:"size"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URL    string `json:"url"`
}
