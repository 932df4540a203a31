package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/integration"
)

func TestGormIntegrationRepository_FindActive(t *testing.T) {
	ctx := context.Background()
	repo := NewGormIntegrationRepository(newSQLiteDB(t))
	tenantID, clientID := uuid.New(), uuid.New()

	older := &integration.PlatformIntegration{
		TenantID: tenantID, ClientID: clientID, Platform: integration.PlatformCodeWooCommerce,
		Name: "old shop", BaseURL: "https://old.example.com", APIKey: "ck_old", APISecret: "cs_old", IsActive: true,
		CreatedAt: time.Now().Add(-time.Hour),
	}
	newer := &integration.PlatformIntegration{
		TenantID: tenantID, ClientID: clientID, Platform: integration.PlatformCodeWooCommerce,
		Name: "new shop", BaseURL: "https://new.example.com", APIKey: "ck_new", APISecret: "cs_new", IsActive: true,
	}
	inactive := &integration.PlatformIntegration{
		TenantID: tenantID, ClientID: clientID, Platform: integration.PlatformCodeBolCom,
		APIKey: "id", APISecret: "secret", IsActive: false,
	}
	for _, i := range []*integration.PlatformIntegration{older, newer, inactive} {
		require.NoError(t, repo.Save(ctx, i))
		require.NotEqual(t, uuid.Nil, i.ID)
	}

	t.Run("most recent active integration", func(t *testing.T) {
		got, err := repo.FindActive(ctx, tenantID, clientID, integration.PlatformCodeWooCommerce, nil)
		require.NoError(t, err)
		assert.Equal(t, newer.ID, got.ID)
		assert.Equal(t, "ck_new", got.APIKey)
		assert.True(t, got.HasCredentials())
	})

	t.Run("explicit integration id", func(t *testing.T) {
		got, err := repo.FindActive(ctx, tenantID, clientID, integration.PlatformCodeWooCommerce, &older.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://old.example.com", got.BaseURL)
	})

	t.Run("inactive integration is ignored", func(t *testing.T) {
		_, err := repo.FindActive(ctx, tenantID, clientID, integration.PlatformCodeBolCom, nil)
		assert.ErrorIs(t, err, integration.ErrIntegrationNotFound)
	})

	t.Run("other client", func(t *testing.T) {
		_, err := repo.FindActive(ctx, tenantID, uuid.New(), integration.PlatformCodeWooCommerce, nil)
		assert.ErrorIs(t, err, integration.ErrIntegrationNotFound)
	})

	t.Run("id of another platform", func(t *testing.T) {
		_, err := repo.FindActive(ctx, tenantID, clientID, integration.PlatformCodeBolCom, &newer.ID)
		assert.ErrorIs(t, err, integration.ErrIntegrationNotFound)
	})
}

func TestGormIntegrationRepository_Save(t *testing.T) {
	ctx := context.Background()
	repo := NewGormIntegrationRepository(newSQLiteDB(t))

	t.Run("rejects unknown platform", func(t *testing.T) {
		err := repo.Save(ctx, &integration.PlatformIntegration{TenantID: uuid.New(), ClientID: uuid.New(), Platform: "AMAZON"})
		assert.ErrorIs(t, err, integration.ErrInvalidPlatformCode)
	})

	t.Run("updates an existing row", func(t *testing.T) {
		i := &integration.PlatformIntegration{
			TenantID: uuid.New(), ClientID: uuid.New(), Platform: integration.PlatformCodeBolCom,
			APIKey: "id", APISecret: "secret", IsActive: true,
		}
		require.NoError(t, repo.Save(ctx, i))

		i.IsActive = false
		require.NoError(t, repo.Save(ctx, i))

		_, err := repo.FindActive(ctx, i.TenantID, i.ClientID, integration.PlatformCodeBolCom, nil)
		assert.ErrorIs(t, err, integration.ErrIntegrationNotFound)
	})
}
