package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/integration"
	"github.com/wms/backend/internal/infrastructure/retry"
)

func newTestEnricher(sleeper *sleepRecorder) *CatalogEnricher {
	return NewCatalogEnricher(zap.NewNop(),
		WithItemDelay(0),
		WithRetryPolicy(retry.Policy{MaxAttempts: 2, DefaultDelay: 5 * time.Second, Sleep: sleeper.Sleep}),
	)
}

func TestCatalogEnricher_Enrich_CatalogDetails(t *testing.T) {
	client := new(MockOfferExportClient)
	client.On("GetCatalogProduct", mock.Anything, "8712345678901").Return(&integration.CatalogProduct{
		EAN:       "8712345678901",
		ImageURLs: []string{"https://img/large.jpg", "https://img/other.jpg"},
		Attributes: []integration.CatalogAttribute{
			{ID: "Title", Values: []integration.CatalogAttributeValue{{Value: " Desk lamp "}}},
			{ID: "Description", Values: []integration.CatalogAttributeValue{{Value: "A lamp"}}},
			{ID: "Net Weight", Values: []integration.CatalogAttributeValue{{Value: "1.5", Unit: "KGM"}}},
			{ID: "Length", Values: []integration.CatalogAttributeValue{{Value: "30", Unit: "CMT"}}},
			{ID: "Breedte", Values: []integration.CatalogAttributeValue{{Value: "20"}}},
			{ID: "Height", Values: []integration.CatalogAttributeValue{{Value: "45", Unit: "CMT"}}},
		},
	}, nil)

	rows := []integration.ExternalOfferRecord{{
		OfferID:       "A1",
		EAN:           "8712345678901",
		ReferenceCode: "LAMP-1",
		Price:         decimal.RequireFromString("19.95"),
		Stock:         4,
	}}

	products, err := newTestEnricher(&sleepRecorder{}).Enrich(context.Background(), client, rows)

	require.NoError(t, err)
	require.Len(t, products, 1)
	p := products[0]
	assert.Equal(t, integration.PlatformCodeBolCom, p.Platform)
	assert.Equal(t, "A1", p.ExternalID)
	assert.Equal(t, "LAMP-1", p.SKU)
	assert.Equal(t, "Desk lamp", p.Name)
	assert.Equal(t, "A lamp", p.Description)
	assert.Equal(t, "https://img/large.jpg", p.ImageURL)
	assert.Equal(t, "1.5 KGM", p.Weight)
	assert.Equal(t, integration.Dimensions{Length: "30", Width: "20", Height: "45", Unit: "cm"}, p.Dimensions)
	assert.True(t, decimal.RequireFromString("19.95").Equal(p.Price))
	assert.Equal(t, 4, p.Stock)
	assert.Equal(t, "BOLCOM:A1", p.Key())
}

func TestCatalogEnricher_Enrich_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not found", integration.ErrCatalogItemNotFound},
		{"platform error", &integration.PlatformError{StatusCode: 500, Body: "boom"}},
		{"still rate limited", &integration.RateLimitedError{RetryAfter: time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockOfferExportClient)
			client.On("GetCatalogProduct", mock.Anything, "111").Return(nil, tt.err)

			rows := []integration.ExternalOfferRecord{{OfferID: "A1", EAN: "111"}}
			products, err := newTestEnricher(&sleepRecorder{}).Enrich(context.Background(), client, rows)

			require.NoError(t, err)
			require.Len(t, products, 1)
			assert.Equal(t, "Product 111", products[0].Name)
			assert.Equal(t, "111", products[0].SKU)
			assert.Empty(t, products[0].ImageURL)
			assert.Empty(t, products[0].Weight)
		})
	}
}

func TestCatalogEnricher_Enrich_RateLimitWaitsRetryAfter(t *testing.T) {
	client := new(MockOfferExportClient)
	client.On("GetCatalogProduct", mock.Anything, "111").
		Return(nil, &integration.RateLimitedError{RetryAfter: 2 * time.Second}).Once()
	client.On("GetCatalogProduct", mock.Anything, "111").
		Return(&integration.CatalogProduct{EAN: "111"}, nil).Once()

	sleeper := &sleepRecorder{}
	rows := []integration.ExternalOfferRecord{{OfferID: "A1", EAN: "111"}}

	products, err := newTestEnricher(sleeper).Enrich(context.Background(), client, rows)

	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Len(t, sleeper.waits, 1)
	assert.GreaterOrEqual(t, sleeper.waits[0], 2*time.Second)
	client.AssertNumberOfCalls(t, "GetCatalogProduct", 2)
}

func TestCatalogEnricher_Enrich_RateLimitWithoutHintWaitsDefault(t *testing.T) {
	client := new(MockOfferExportClient)
	client.On("GetCatalogProduct", mock.Anything, "111").
		Return(nil, &integration.RateLimitedError{}).Twice()

	sleeper := &sleepRecorder{}
	rows := []integration.ExternalOfferRecord{{OfferID: "A1", EAN: "111"}}

	products, err := newTestEnricher(sleeper).Enrich(context.Background(), client, rows)

	require.NoError(t, err)
	assert.Equal(t, "Product 111", products[0].Name)
	assert.Equal(t, []time.Duration{5 * time.Second}, sleeper.waits)
	client.AssertNumberOfCalls(t, "GetCatalogProduct", 2)
}

func TestCatalogEnricher_Enrich_AuthFailureAborts(t *testing.T) {
	client := new(MockOfferExportClient)
	client.On("GetCatalogProduct", mock.Anything, "111").Return(&integration.CatalogProduct{EAN: "111"}, nil)
	client.On("GetCatalogProduct", mock.Anything, "222").Return(nil, integration.ErrPlatformAuthFailed)

	rows := []integration.ExternalOfferRecord{
		{OfferID: "A1", EAN: "111"},
		{OfferID: "A2", EAN: "222"},
		{OfferID: "A3", EAN: "333"},
	}

	products, err := newTestEnricher(&sleepRecorder{}).Enrich(context.Background(), client, rows)

	assert.ErrorIs(t, err, integration.ErrPlatformAuthFailed)
	assert.Nil(t, products)
	client.AssertNotCalled(t, "GetCatalogProduct", mock.Anything, "333")
}

func TestCatalogEnricher_Enrich_PreservesOrderAndSkipsMissingEAN(t *testing.T) {
	client := new(MockOfferExportClient)
	client.On("GetCatalogProduct", mock.Anything, mock.Anything).Return(nil, integration.ErrCatalogItemNotFound)

	rows := []integration.ExternalOfferRecord{
		{OfferID: "A3", EAN: "333"},
		{OfferID: "A1"},
		{OfferID: "A2", EAN: "222"},
	}

	products, err := newTestEnricher(&sleepRecorder{}).Enrich(context.Background(), client, rows)

	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "A3", products[0].ExternalID)
	assert.Equal(t, "A1", products[1].ExternalID)
	assert.Equal(t, "Product A1", products[1].Name)
	assert.Equal(t, "A2", products[2].ExternalID)
	client.AssertNumberOfCalls(t, "GetCatalogProduct", 2)
}

func TestCatalogEnricher_Enrich_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := new(MockOfferExportClient)
	client.On("GetCatalogProduct", mock.Anything, "111").
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, errors.New("connection reset"))

	rows := []integration.ExternalOfferRecord{{OfferID: "A1", EAN: "111"}, {OfferID: "A2", EAN: "222"}}

	_, err := newTestEnricher(&sleepRecorder{}).Enrich(ctx, client, rows)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCatalogEnricher_ItemDelay(t *testing.T) {
	client := new(MockOfferExportClient)
	client.On("GetCatalogProduct", mock.Anything, mock.Anything).Return(nil, integration.ErrCatalogItemNotFound)

	enricher := NewCatalogEnricher(zap.NewNop(), WithItemDelay(20*time.Millisecond))
	rows := []integration.ExternalOfferRecord{
		{OfferID: "A1", EAN: "111"},
		{OfferID: "A2", EAN: "222"},
		{OfferID: "A3", EAN: "333"},
	}

	start := time.Now()
	_, err := enricher.Enrich(context.Background(), client, rows)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}
