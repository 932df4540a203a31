// Package tenant scopes GORM statements to one tenant and client.
//
// Every synchronization table carries tenant_id and client_id. Repositories
// build their statements from ForClient, so no query can leave the scope of
// the request:
//
//	tenant.ForClient(ctx, db, tenantID, clientID).Where("sku IN ?", skus).Find(&products)
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Column names of the scope keys.
const (
	TenantColumn = "tenant_id"
	ClientColumn = "client_id"
)

// ErrTenantIDRequired is returned when a statement is scoped to the nil tenant
var ErrTenantIDRequired = errors.New("tenant_id is required")

// ErrClientIDRequired is returned when a statement is scoped to the nil client
var ErrClientIDRequired = errors.New("client_id is required")

// TenantScope filters on tenant_id. A nil tenant fails the statement.
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where(TenantColumn+" = ?", tenantID)
	}
}

// ClientScope filters on tenant_id and client_id. A nil ID fails the statement.
func ClientScope(tenantID, clientID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = TenantScope(tenantID)(db)
		if clientID == uuid.Nil {
			_ = db.AddError(ErrClientIDRequired)
			return db
		}
		return db.Where(ClientColumn+" = ?", clientID)
	}
}

// ForClient returns db bound to ctx and scoped to the tenant's client
func ForClient(ctx context.Context, db *gorm.DB, tenantID, clientID uuid.UUID) *gorm.DB {
	return db.WithContext(ctx).Scopes(ClientScope(tenantID, clientID))
}
