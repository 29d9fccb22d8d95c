package authz

import (
	"context"
	"fmt"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
)

// RoleAccessValidator grants access from the principal in the context:
// admins and system clients may act on every entity, vendors only on their own books.
type RoleAccessValidator struct{}

// NewRoleAccessValidator creates the validator.
func NewRoleAccessValidator() *RoleAccessValidator {
	return &RoleAccessValidator{}
}

var _ portssvc.EntityAccessValidator = (*RoleAccessValidator)(nil)

// ValidateEntityAccess implements portssvc.EntityAccessValidator.
func (v *RoleAccessValidator) ValidateEntityAccess(ctx context.Context, entity domain.EntityRef, actorID string) error {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: no authenticated principal", apperrors.ErrPermission)
	}
	if p.ActorID != actorID {
		return fmt.Errorf("%w: actor %s does not match principal", apperrors.ErrPermission, actorID)
	}
	switch p.Role {
	case domain.RoleAdmin, domain.RoleSystem:
		return nil
	case domain.RoleVendor:
		if entity.Type == domain.EntityVendor && entity.ID == p.VendorID && p.VendorID != "" {
			return nil
		}
		return fmt.Errorf("%w: vendor %s may not access %s", apperrors.ErrPermission, p.VendorID, entity)
	}
	return fmt.Errorf("%w: unknown role %q", apperrors.ErrPermission, p.Role)
}
