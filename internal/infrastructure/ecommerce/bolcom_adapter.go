package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/wms/backend/internal/domain/integration"
)

// BolComAdapter implements integration.OfferExportClient for the Bol.com Retailer API
type BolComAdapter struct {
	config     *BolComConfig
	httpClient HTTPDoer
	tokens     oauth2.TokenSource
}

// BolComOption configures a BolComAdapter
type BolComOption func(*BolComAdapter)

// WithBolComHTTPClient replaces the HTTP client used for API calls
func WithBolComHTTPClient(client HTTPDoer) BolComOption {
	return func(a *BolComAdapter) {
		a.httpClient = client
	}
}

// WithBolComTokenSource replaces the OAuth2 client-credentials token source
func WithBolComTokenSource(ts oauth2.TokenSource) BolComOption {
	return func(a *BolComAdapter) {
		a.tokens = ts
	}
}

// NewBolComAdapter creates a new Bol.com adapter with the given configuration
func NewBolComAdapter(config *BolComConfig, opts ...BolComOption) (*BolComAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	a := &BolComAdapter{config: config}
	for _, opt := range opts {
		opt(a)
	}

	if a.httpClient == nil {
		a.httpClient = &http.Client{Timeout: time.Duration(config.TimeoutSeconds) * time.Second}
	}
	if a.tokens == nil {
		tokenCtx := context.Background()
		if hc, ok := a.httpClient.(*http.Client); ok {
			tokenCtx = context.WithValue(tokenCtx, oauth2.HTTPClient, hc)
		}
		cc := &clientcredentials.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			TokenURL:     config.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		a.tokens = cc.TokenSource(tokenCtx)
	}

	return a, nil
}

// PlatformCode returns the platform this adapter speaks to
func (a *BolComAdapter) PlatformCode() integration.PlatformCode {
	return integration.PlatformCodeBolCom
}

// RequestOfferExport submits an offer export job in CSV format
func (a *BolComAdapter) RequestOfferExport(ctx context.Context) (string, error) {
	payload, err := json.Marshal(BolExportRequest{Format: "CSV"})
	if err != nil {
		return "", fmt.Errorf("bolcom: failed to encode export request: %w", err)
	}

	body, err := a.doRequest(ctx, http.MethodPost, "/retailer/offers/export", payload, a.config.JSONMediaType())
	if err != nil {
		return "", err
	}

	var status BolProcessStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return "", fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResp, err)
	}
	if status.ProcessStatusID == "" {
		return "", fmt.Errorf("%w: missing processStatusId", integration.ErrPlatformInvalidResp)
	}
	return status.ProcessStatusID, nil
}

// GetProcessStatus performs one status poll of an asynchronous job
func (a *BolComAdapter) GetProcessStatus(ctx context.Context, processStatusID string) (integration.ProcessStatus, error) {
	body, err := a.doRequest(ctx, http.MethodGet, "/shared/process-status/"+url.PathEscape(processStatusID), nil, a.config.JSONMediaType())
	if err != nil {
		return integration.ProcessStatus{}, err
	}

	var status BolProcessStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return integration.ProcessStatus{}, fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResp, err)
	}
	return mapBolProcessStatus(status), nil
}

// DownloadOfferExport downloads the CSV produced by a finished export job
// and fails when it is larger than MaxExportBytes
func (a *BolComAdapter) DownloadOfferExport(ctx context.Context, entityID string) ([]byte, error) {
	return a.doRequestLimited(ctx, http.MethodGet, "/retailer/offers/export/"+url.PathEscape(entityID), nil, a.config.CSVMediaType(), a.config.MaxExportBytes)
}

// GetCatalogProduct fetches the catalog content of one EAN
func (a *BolComAdapter) GetCatalogProduct(ctx context.Context, ean string) (*integration.CatalogProduct, error) {
	body, err := a.doRequest(ctx, http.MethodGet, "/retailer/content/catalog-products/"+url.PathEscape(ean), nil, a.config.JSONMediaType())
	if err != nil {
		var perr *integration.PlatformError
		if errors.As(err, &perr) && perr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: ean %s", integration.ErrCatalogItemNotFound, ean)
		}
		return nil, err
	}

	var product BolCatalogProduct
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResp, err)
	}
	return convertBolCatalogProduct(ean, &product), nil
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// doRequest performs an authenticated call to the Retailer API
func (a *BolComAdapter) doRequest(ctx context.Context, method, path string, payload []byte, accept string) ([]byte, error) {
	return a.doRequestLimited(ctx, method, path, payload, accept, maxResponseSize)
}

func (a *BolComAdapter) doRequestLimited(ctx context.Context, method, path string, payload []byte, accept string, limit int64) ([]byte, error) {
	token, err := a.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: obtaining access token: %v", integration.ErrPlatformAuthFailed, err)
	}

	req, err := newRequest(ctx, method, a.config.APIBaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	token.SetAuthHeader(req)
	req.Header.Set("Accept", accept)
	if payload != nil {
		req.Header.Set("Content-Type", a.config.JSONMediaType())
	}

	return send(a.httpClient, req, limit)
}

func mapBolProcessStatus(s BolProcessStatus) integration.ProcessStatus {
	switch s.Status {
	case BolStatusSuccess:
		return integration.ProcessStatus{State: integration.ProcessStateSucceeded, EntityID: s.EntityID}
	case BolStatusFailure, BolStatusTimeout:
		reason := s.ErrorMessage
		if reason == "" {
			reason = "export ended with status " + s.Status
		}
		return integration.ProcessStatus{State: integration.ProcessStateFailed, Reason: reason}
	default:
		return integration.ProcessStatus{State: integration.ProcessStatePending}
	}
}

// convertBolCatalogProduct maps the API payload onto the domain model.
// Primary images come first; of each asset the widest variant is used.
func convertBolCatalogProduct(ean string, p *BolCatalogProduct) *integration.CatalogProduct {
	out := &integration.CatalogProduct{EAN: ean}

	for _, attr := range p.Attributes {
		ca := integration.CatalogAttribute{ID: attr.ID}
		for _, v := range attr.Values {
			ca.Values = append(ca.Values, integration.CatalogAttributeValue{Value: v.Value, Unit: v.UnitID})
		}
		out.Attributes = append(out.Attributes, ca)
	}

	assets := append([]BolAsset(nil), p.Assets...)
	sort.SliceStable(assets, func(i, j int) bool {
		pi, pj := assets[i].Usage == "PRIMARY", assets[j].Usage == "PRIMARY"
		if pi != pj {
			return pi
		}
		return assets[i].Order < assets[j].Order
	})
	for _, asset := range assets {
		best := -1
		for i, v := range asset.Variants {
			if v.URL == "" {
				continue
			}
			if best < 0 || v.Width > asset.Variants[best].Width {
				best = i
			}
		}
		if best >= 0 {
			out.ImageURLs = append(out.ImageURLs, asset.Variants[best].URL)
		}
	}

	return out
}

// Ensure BolComAdapter implements OfferExportClient
var _ integration.OfferExportClient = (*BolComAdapter)(nil)
