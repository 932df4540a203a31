package models

import (
	"github.com/wms/backend/internal/domain/integration"
)

// PlatformIntegrationModel is the persistence model for stored platform credentials.
type PlatformIntegrationModel struct {
	ClientScopedModel
	Platform  integration.PlatformCode `gorm:"type:varchar(30);not null"`
	Name      string                   `gorm:"type:varchar(200);not null;default:''"`
	BaseURL   string                   `gorm:"type:text;not null;default:''"`
	APIKey    string                   `gorm:"type:text;not null;default:''"`
	APISecret string                   `gorm:"type:text;not null;default:''"`
	IsActive  bool                     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PlatformIntegrationModel) TableName() string {
	return "platform_integrations"
}

// ToDomain converts the persistence model to a domain PlatformIntegration.
func (m *PlatformIntegrationModel) ToDomain() *integration.PlatformIntegration {
	return &integration.PlatformIntegration{
		ID:        m.ID,
		TenantID:  m.TenantID,
		ClientID:  m.ClientID,
		Platform:  m.Platform,
		Name:      m.Name,
		BaseURL:   m.BaseURL,
		APIKey:    m.APIKey,
		APISecret: m.APISecret,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain PlatformIntegration.
func (m *PlatformIntegrationModel) FromDomain(i *integration.PlatformIntegration) {
	m.ID = i.ID
	m.TenantID = i.TenantID
	m.ClientID = i.ClientID
	m.Platform = i.Platform
	m.Name = i.Name
	m.BaseURL = i.BaseURL
	m.APIKey = i.APIKey
	m.APISecret = i.APISecret
	m.IsActive = i.IsActive
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// PlatformIntegrationModelFromDomain creates a new persistence model from a domain PlatformIntegration.
func PlatformIntegrationModelFromDomain(i *integration.PlatformIntegration) *PlatformIntegrationModel {
	m := &PlatformIntegrationModel{}
	m.FromDomain(i)
	return m
}
