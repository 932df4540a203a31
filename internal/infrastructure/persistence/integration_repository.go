package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/integration"
	"github.com/wms/backend/internal/infrastructure/persistence/models"
	"github.com/wms/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormIntegrationRepository implements integration.IntegrationRepository using GORM
type GormIntegrationRepository struct {
	db *gorm.DB
}

// NewGormIntegrationRepository creates a new GormIntegrationRepository
func NewGormIntegrationRepository(db *gorm.DB) *GormIntegrationRepository {
	return &GormIntegrationRepository{db: db}
}

// FindActive returns the active integration of the client for the platform.
// Without integrationID the most recently created one wins.
func (r *GormIntegrationRepository) FindActive(ctx context.Context, tenantID, clientID uuid.UUID, platform integration.PlatformCode, integrationID *uuid.UUID) (*integration.PlatformIntegration, error) {
	query := tenant.ForClient(ctx, r.db, tenantID, clientID).
		Where("platform = ? AND is_active = ?", platform, true)
	if integrationID != nil {
		query = query.Where("id = ?", *integrationID)
	}

	var model models.PlatformIntegrationModel
	if err := query.Order("created_at DESC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrIntegrationNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates an integration
func (r *GormIntegrationRepository) Save(ctx context.Context, i *integration.PlatformIntegration) error {
	if !i.Platform.IsValid() {
		return integration.ErrInvalidPlatformCode
	}
	now := time.Now()
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = now
	}
	i.UpdatedAt = now

	return r.db.WithContext(ctx).Save(models.PlatformIntegrationModelFromDomain(i)).Error
}

// Ensure GormIntegrationRepository implements integration.IntegrationRepository
var _ integration.IntegrationRepository = (*GormIntegrationRepository)(nil)
