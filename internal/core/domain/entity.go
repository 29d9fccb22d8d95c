package domain

import (
	"fmt"
	"strings"
)

// EntityType identifies the economic entity that owns a set of books.
type EntityType string

const (
	EntityAdmin  EntityType = "ADMIN"
	EntityVendor EntityType = "VENDOR"
)

// EntityRef identifies one set of books. The platform operator (ADMIN) has an empty ID;
// every vendor has its own VENDOR ref.
type EntityRef struct {
	Type EntityType `json:"entityType"`
	ID   string     `json:"entityId,omitempty"`
}

// AdminEntity returns the platform operator's entity ref.
func AdminEntity() EntityRef {
	return EntityRef{Type: EntityAdmin}
}

// VendorEntity returns the entity ref for a vendor.
func VendorEntity(vendorID string) EntityRef {
	return EntityRef{Type: EntityVendor, ID: vendorID}
}

// IsAdmin reports whether the ref is the platform operator.
func (e EntityRef) IsAdmin() bool {
	return e.Type == EntityAdmin
}

// Validate checks the ref is well formed.
func (e EntityRef) Validate() error {
	switch e.Type {
	case EntityAdmin:
		if e.ID != "" {
			return fmt.Errorf("admin entity must not carry an id")
		}
	case EntityVendor:
		if strings.TrimSpace(e.ID) == "" {
			return fmt.Errorf("vendor entity requires an id")
		}
	default:
		return fmt.Errorf("unknown entity type %q", e.Type)
	}
	return nil
}

// ScopeKey returns a compact string used to scope sequences and caches.
func (e EntityRef) ScopeKey() string {
	if e.Type == EntityAdmin {
		return string(EntityAdmin)
	}
	return string(e.Type) + ":" + e.ID
}

func (e EntityRef) String() string {
	return e.ScopeKey()
}
