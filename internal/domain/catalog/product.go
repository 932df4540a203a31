package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxPlatformLinks is the number of platform bindings a product can carry.
// Slot 1 is the primary binding, slots 2..MaxPlatformLinks are additional.
const MaxPlatformLinks = 6

// PrimarySlot is the slot populated when a product is created from a platform.
const PrimarySlot = 1

var (
	ErrInvalidTenantID   = errors.New("catalog: invalid tenant ID")
	ErrInvalidClientID   = errors.New("catalog: invalid client ID")
	ErrInvalidSKU        = errors.New("catalog: SKU is required")
	ErrInvalidName       = errors.New("catalog: product name is required")
	ErrInvalidSlot       = errors.New("catalog: platform link slot out of range")
	ErrInvalidLink       = errors.New("catalog: platform and external ID are required")
	ErrProductNotFound   = errors.New("catalog: product not found")
	ErrDuplicateSKU      = errors.New("catalog: product with this SKU already exists")
	ErrLinkConflict      = errors.New("catalog: platform link conflicts with an existing link")
	ErrSlotOccupied      = errors.New("catalog: platform link slot already occupied")
	ErrNoFreeLinkSlot    = errors.New("catalog: all platform link slots are taken")
	ErrLinkAlreadyExists = errors.New("catalog: product already linked to this platform item")
)

// ---------------------------------------------------------------------------
// PlatformLink Value Object
// ---------------------------------------------------------------------------

// PlatformLink binds a product to one item on an external platform.
type PlatformLink struct {
	Slot       int
	Platform   string
	ExternalID string
	LinkedAt   time.Time
}

// NormalizePlatform is the stored form of a platform code. Every link is
// written and compared in this form, so the domain check and the unique
// index on the platform item agree.
func NormalizePlatform(platform string) string {
	return strings.ToUpper(strings.TrimSpace(platform))
}

// Matches reports whether the link points at the given platform item.
func (l PlatformLink) Matches(platform, externalID string) bool {
	return NormalizePlatform(l.Platform) == NormalizePlatform(platform) && l.ExternalID == externalID
}

// Ref returns the platform item the link points at.
func (l PlatformLink) Ref() LinkRef {
	return NewLinkRef(l.Platform, l.ExternalID)
}

// LinkRef identifies one item on an external platform. A LinkRef sits on at
// most one product of a client.
type LinkRef struct {
	Platform   string
	ExternalID string
}

// NewLinkRef builds a LinkRef with a normalized platform code.
func NewLinkRef(platform, externalID string) LinkRef {
	return LinkRef{Platform: NormalizePlatform(platform), ExternalID: externalID}
}

// ---------------------------------------------------------------------------
// Product Entity
// ---------------------------------------------------------------------------

// Product is the internal product record a client's stock is kept against.
// SKU is unique within a (tenant, client) pair.
type Product struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	ClientID    uuid.UUID
	SKU         string
	Name        string
	Description string
	EAN         string
	Price       decimal.Decimal
	// WeightGrams is nil when the weight is unknown
	WeightGrams *int64
	Dimensions  string
	Stock       int
	ImageURL    string
	Links       []PlatformLink
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct creates a product bound to the given platform item through the primary slot.
func NewProduct(tenantID, clientID uuid.UUID, sku, name, platform, externalID string) (*Product, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if clientID == uuid.Nil {
		return nil, ErrInvalidClientID
	}
	if strings.TrimSpace(sku) == "" {
		return nil, ErrInvalidSKU
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	platform = NormalizePlatform(platform)
	if platform == "" || externalID == "" {
		return nil, ErrInvalidLink
	}

	now := time.Now()
	return &Product{
		ID:       uuid.New(),
		TenantID: tenantID,
		ClientID: clientID,
		SKU:      sku,
		Name:     name,
		Price:    decimal.Zero,
		Links: []PlatformLink{{
			Slot:       PrimarySlot,
			Platform:   platform,
			ExternalID: externalID,
			LinkedAt:   now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// HasLink reports whether any slot of the product references the platform item.
func (p *Product) HasLink(platform, externalID string) bool {
	for _, l := range p.Links {
		if l.Matches(platform, externalID) {
			return true
		}
	}
	return false
}

// LinkAt returns the link stored in slot, if any.
func (p *Product) LinkAt(slot int) (PlatformLink, bool) {
	for _, l := range p.Links {
		if l.Slot == slot {
			return l, true
		}
	}
	return PlatformLink{}, false
}

// FreeSlot returns the lowest empty additional slot (2..MaxPlatformLinks).
// The primary slot is never offered.
func (p *Product) FreeSlot() (int, bool) {
	for slot := PrimarySlot + 1; slot <= MaxPlatformLinks; slot++ {
		if _, taken := p.LinkAt(slot); !taken {
			return slot, true
		}
	}
	return 0, false
}

// AddLink stores a new platform link in the given additional slot.
func (p *Product) AddLink(slot int, platform, externalID string) error {
	if slot <= PrimarySlot || slot > MaxPlatformLinks {
		return ErrInvalidSlot
	}
	platform = NormalizePlatform(platform)
	if platform == "" || externalID == "" {
		return ErrInvalidLink
	}
	if p.HasLink(platform, externalID) {
		return ErrLinkAlreadyExists
	}
	if _, taken := p.LinkAt(slot); taken {
		return ErrSlotOccupied
	}

	now := time.Now()
	p.Links = append(p.Links, PlatformLink{
		Slot:       slot,
		Platform:   platform,
		ExternalID: externalID,
		LinkedAt:   now,
	})
	p.UpdatedAt = now
	return nil
}

// SetWeightGrams records the weight; a nil value clears it.
func (p *Product) SetWeightGrams(grams *int64) {
	p.WeightGrams = grams
}
