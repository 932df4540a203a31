// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: shared columns (BaseModel, ClientScopedModel)
//   - catalog.go: products and their platform link slots
//   - integration.go: stored platform credentials
package models
