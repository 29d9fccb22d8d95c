package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/SscSPs/marketplace_ledger/internal/utils"
	"github.com/google/uuid"
)

// integrationKeyPrefix marks the secret half of a plaintext key.
const integrationKeyPrefix = "mlk_"

// integrationActorPrefix marks actor ids issued to integration key holders.
const integrationActorPrefix = "integration:"

// integrationKeyService implements the IntegrationKeySvcFacade interface
type integrationKeyService struct {
	BaseService
	uow     portsrepo.UnitOfWork
	keyRepo portsrepo.IntegrationKeyRepositoryFacade
	access  portssvc.EntityAccessValidator
	audit   portssvc.AuditRecorderSvc
}

// NewIntegrationKeyService creates the integration key service.
func NewIntegrationKeyService(
	uow portsrepo.UnitOfWork,
	repo portsrepo.IntegrationKeyRepositoryFacade,
	access portssvc.EntityAccessValidator,
	audit portssvc.AuditRecorderSvc,
	opts ...Option,
) (portssvc.IntegrationKeySvcFacade, error) {
	if access == nil {
		return nil, errors.New("integration key service requires an entity access validator")
	}
	svc := &integrationKeyService{uow: uow, keyRepo: repo, access: access, audit: audit}
	svc.apply(opts)
	return svc, nil
}

// CreateKey generates a new key. The plaintext "<keyID>.<secret>" is returned once;
// only its bcrypt hash is stored.
func (s *integrationKeyService) CreateKey(ctx context.Context, name string, actorID string) (*domain.IntegrationKey, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", fmt.Errorf("%w: key name is required", apperrors.ErrValidation)
	}
	if err := s.access.ValidateEntityAccess(ctx, domain.AdminEntity(), actorID); err != nil {
		return nil, "", err
	}

	secret, err := utils.GenerateSecureRandomString(integrationKeyPrefix, 32)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate key: %w", err)
	}
	hash, err := utils.HashSecret(secret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash key: %w", err)
	}

	key := domain.IntegrationKey{
		KeyID:      uuid.NewString(),
		Name:       name,
		SecretHash: hash,
		CreatedBy:  actorID,
		CreatedAt:  s.now(),
	}
	err = s.uow.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		if err := tx.IntegrationKeys().SaveIntegrationKey(ctx, key); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, portssvc.AuditRecord{
			Action:     domain.AuditIntegrationKeyMade,
			EntityName: "integration_key",
			EntityID:   key.KeyID,
			ActorID:    actorID,
			After:      key,
		})
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to save key: %w", err)
	}

	s.LogInfo(ctx, "Integration key created", slog.String("key_id", key.KeyID))
	return &key, key.KeyID + "." + secret, nil
}

// ValidateKey checks a plaintext key and returns the system principal it acts as.
func (s *integrationKeyService) ValidateKey(ctx context.Context, raw string) (*domain.Principal, error) {
	keyID, secret, ok := strings.Cut(strings.TrimSpace(raw), ".")
	if !ok || keyID == "" || secret == "" {
		return nil, fmt.Errorf("%w: malformed integration key", apperrors.ErrUnauthorized)
	}

	key, err := s.keyRepo.FindIntegrationKeyByID(ctx, keyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown integration key", apperrors.ErrUnauthorized)
		}
		return nil, err
	}
	if key.IsRevoked() {
		return nil, fmt.Errorf("%w: integration key was revoked", apperrors.ErrUnauthorized)
	}
	if !utils.CheckSecretHash(secret, key.SecretHash) {
		return nil, fmt.Errorf("%w: invalid integration key", apperrors.ErrUnauthorized)
	}

	err = s.uow.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		return tx.IntegrationKeys().TouchIntegrationKey(ctx, keyID, s.now())
	})
	if err != nil {
		s.LogWarn(ctx, "Failed to record key usage", slog.String("key_id", keyID), slog.String("error", err.Error()))
	}

	p := domain.SystemPrincipal(integrationActorPrefix + keyID)
	return &p, nil
}

func (s *integrationKeyService) RevokeKey(ctx context.Context, keyID string, actorID string) error {
	if err := s.access.ValidateEntityAccess(ctx, domain.AdminEntity(), actorID); err != nil {
		return err
	}
	err := s.uow.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		key, err := tx.IntegrationKeys().FindIntegrationKeyByID(ctx, keyID)
		if err != nil {
			return err
		}
		if key.IsRevoked() {
			return fmt.Errorf("%w: key %s is already revoked", apperrors.ErrInvalidState, keyID)
		}
		if err := tx.IntegrationKeys().RevokeIntegrationKey(ctx, keyID, s.now()); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, portssvc.AuditRecord{
			Action:     domain.AuditIntegrationKeyGone,
			EntityName: "integration_key",
			EntityID:   keyID,
			ActorID:    actorID,
			Before:     key,
		})
	})
	if err != nil {
		return err
	}
	s.LogInfo(ctx, "Integration key revoked", slog.String("key_id", keyID))
	return nil
}

func (s *integrationKeyService) ListKeys(ctx context.Context) ([]domain.IntegrationKey, error) {
	keys, err := s.keyRepo.ListIntegrationKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	if keys == nil {
		keys = []domain.IntegrationKey{}
	}
	return keys, nil
}
