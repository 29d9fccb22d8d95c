package services

import (
	"context"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
)

// EntityAccessValidator decides whether an actor may act on an entity's books.
// It is a required collaborator of the account and voucher services; there is no
// permissive default.
type EntityAccessValidator interface {
	// ValidateEntityAccess returns nil when access is granted and an error matching
	// apperrors.ErrPermission otherwise.
	ValidateEntityAccess(ctx context.Context, entity domain.EntityRef, actorID string) error
}

// ActorDirectory resolves an actor id to a display name for audit entries.
type ActorDirectory interface {
	ActorName(ctx context.Context, actorID string) (string, error)
}
