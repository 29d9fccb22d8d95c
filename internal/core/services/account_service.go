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
	"github.com/google/uuid"
)

// accountService manages the per-entity chart of accounts.
type accountService struct {
	BaseService
	uow         portsrepo.UnitOfWork
	accountRepo portsrepo.AccountReader
	access      portssvc.EntityAccessValidator
	audit       portssvc.AuditRecorderSvc
}

// NewAccountService creates the account service. The access validator is required.
func NewAccountService(
	uow portsrepo.UnitOfWork,
	repo portsrepo.AccountReader,
	access portssvc.EntityAccessValidator,
	audit portssvc.AuditRecorderSvc,
	opts ...Option,
) (portssvc.AccountSvcFacade, error) {
	if access == nil {
		return nil, errors.New("account service requires an entity access validator")
	}
	svc := &accountService{uow: uow, accountRepo: repo, access: access, audit: audit}
	svc.apply(opts)
	return svc, nil
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount creates a user-defined account. Access failures match both
// apperrors.ErrValidation and apperrors.ErrPermission.
func (s *accountService) CreateAccount(ctx context.Context, cmd portssvc.CreateAccountCmd, actorID string) (*domain.Account, error) {
	if err := cmd.Entity.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := s.access.ValidateEntityAccess(ctx, cmd.Entity, actorID); err != nil {
		s.LogWarn(ctx, "Account creation denied", slog.String("actor_id", actorID), slog.String("entity", cmd.Entity.String()))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	if !cmd.Class.IsValid() {
		return nil, fmt.Errorf("%w: unknown account class %q", apperrors.ErrValidation, cmd.Class)
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: account name is required", apperrors.ErrValidation)
	}
	if cmd.ParentAccountID != nil {
		parent, err := s.accountRepo.FindAccountByID(ctx, *cmd.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s does not exist", apperrors.ErrValidation, *cmd.ParentAccountID)
			}
			return nil, err
		}
		if parent.Entity != cmd.Entity || parent.Class != cmd.Class {
			return nil, fmt.Errorf("%w: parent account must belong to the same entity and class", apperrors.ErrValidation)
		}
	}

	var account domain.Account
	err := s.withSequenceRetry(ctx, "create_account", func() error {
		return s.uow.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
			seq, err := tx.Sequences().NextSequence(ctx, accountCodeScope(cmd.Entity, cmd.Class))
			if err != nil {
				return err
			}
			account = domain.Account{
				AccountID:       uuid.NewString(),
				Entity:          cmd.Entity,
				Code:            domain.FormatAccountCode(cmd.Class, seq),
				Name:            name,
				Class:           cmd.Class,
				Nature:          cmd.Class.Nature(),
				ParentAccountID: cmd.ParentAccountID,
				Description:     cmd.Description,
				CanDelete:       true,
				IsActive:        true,
				AuditFields:     domain.NewAuditFields(actorID, s.now()),
			}
			if err := tx.Accounts().SaveAccount(ctx, account); err != nil {
				return err
			}
			return s.audit.Record(ctx, tx, portssvc.AuditRecord{
				Action:     domain.AuditAccountCreated,
				EntityName: "account",
				EntityID:   account.AccountID,
				ActorID:    actorID,
				After:      account,
			})
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create account", slog.String("entity", cmd.Entity.String()))
		return nil, err
	}

	s.changed(ctx)
	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code))
	return &account, nil
}

func (s *accountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, params portssvc.ListAccountsParams) ([]domain.Account, int, error) {
	if err := params.Entity.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if params.Class != nil && !params.Class.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown account class %q", apperrors.ErrValidation, *params.Class)
	}
	accounts, total, err := s.accountRepo.ListAccounts(ctx, params.Entity, params.Class, params.ActiveOnly, params.Page.Limit, params.Page.Offset())
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("entity", params.Entity.String()))
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, total, nil
}

// ResolveAccount finds the active account registered under key for the entity.
func (s *accountService) ResolveAccount(ctx context.Context, entity domain.EntityRef, key domain.AccountKey, subject string) (*domain.Account, error) {
	return resolveAccount(ctx, s.accountRepo, entity, key, subject)
}

func resolveAccount(ctx context.Context, accounts portsrepo.AccountReader, entity domain.EntityRef, key domain.AccountKey, subject string) (*domain.Account, error) {
	account, err := accounts.FindAccountByKey(ctx, entity, key, subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no %s account for %s%s", apperrors.ErrAccountResolution, key, entity, subjectSuffix(subject))
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: %s account for %s%s is inactive", apperrors.ErrAccountResolution, key, entity, subjectSuffix(subject))
	}
	return account, nil
}

func subjectSuffix(subject string) string {
	if subject == "" {
		return ""
	}
	return " (" + subject + ")"
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, cmd portssvc.UpdateAccountCmd, actorID string) (*domain.Account, error) {
	var updated domain.Account
	err := s.uow.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		account, err := tx.Accounts().FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if err := s.access.ValidateEntityAccess(ctx, account.Entity, actorID); err != nil {
			return err
		}
		if account.IsProtected() {
			return fmt.Errorf("%w: account %s is a system account", apperrors.ErrImmutable, account.Code)
		}

		before := *account
		if cmd.Name != nil {
			name := strings.TrimSpace(*cmd.Name)
			if name == "" {
				return fmt.Errorf("%w: account name cannot be empty", apperrors.ErrValidation)
			}
			account.Name = name
		}
		if cmd.Description != nil {
			account.Description = *cmd.Description
		}
		if cmd.IsActive != nil {
			account.IsActive = *cmd.IsActive
		}
		account.Touch(actorID, s.now())

		if err := tx.Accounts().UpdateAccount(ctx, *account); err != nil {
			return err
		}
		updated = *account
		return s.audit.Record(ctx, tx, portssvc.AuditRecord{
			Action:     domain.AuditAccountUpdated,
			EntityName: "account",
			EntityID:   accountID,
			ActorID:    actorID,
			Before:     before,
			After:      updated,
		})
	})
	if err != nil {
		return nil, err
	}
	s.changed(ctx)
	s.LogInfo(ctx, "Account updated", slog.String("account_id", accountID))
	return &updated, nil
}

// DeleteAccount removes an account nothing refers to.
func (s *accountService) DeleteAccount(ctx context.Context, accountID string, actorID string) error {
	err := s.uow.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
		account, err := tx.Accounts().FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if err := s.access.ValidateEntityAccess(ctx, account.Entity, actorID); err != nil {
			return err
		}
		if account.IsProtected() {
			return fmt.Errorf("%w: account %s is a system account", apperrors.ErrImmutable, account.Code)
		}
		refs, err := tx.Accounts().CountAccountReferences(ctx, accountID)
		if err != nil {
			return err
		}
		if refs.Any() {
			return fmt.Errorf("%w: account %s has %d ledger entries, %d draft entries and %d child accounts",
				apperrors.ErrConflict, account.Code, refs.LedgerEntries, refs.DraftEntries, refs.Children)
		}
		if err := tx.Accounts().DeleteAccount(ctx, accountID); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, portssvc.AuditRecord{
			Action:     domain.AuditAccountDeleted,
			EntityName: "account",
			EntityID:   accountID,
			ActorID:    actorID,
			Before:     account,
		})
	})
	if err != nil {
		return err
	}
	s.changed(ctx)
	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID))
	return nil
}

// ProvisionEntity creates the entity's missing system accounts. A vendor also gets its
// payable account in the admin books, so the actor needs access to both. Calling it
// again is a no-op.
func (s *accountService) ProvisionEntity(ctx context.Context, entity domain.EntityRef, actorID string) ([]domain.Account, error) {
	if err := entity.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := s.access.ValidateEntityAccess(ctx, entity, actorID); err != nil {
		return nil, err
	}
	if !entity.IsAdmin() {
		if err := s.access.ValidateEntityAccess(ctx, domain.AdminEntity(), actorID); err != nil {
			return nil, err
		}
	}

	type wanted struct {
		entity  domain.EntityRef
		spec    domain.SystemAccount
		subject string
	}
	var plan []wanted
	if entity.IsAdmin() {
		for _, sa := range domain.AdminSystemAccounts {
			plan = append(plan, wanted{entity: entity, spec: sa})
		}
	} else {
		for _, sa := range domain.VendorSystemAccounts {
			plan = append(plan, wanted{entity: entity, spec: sa})
		}
		plan = append(plan, wanted{entity: domain.AdminEntity(), spec: domain.VendorPayableAccount(entity.ID), subject: entity.ID})
	}

	var created []domain.Account
	err := s.withSequenceRetry(ctx, "provision_entity", func() error {
		created = nil
		return s.uow.WithTx(ctx, func(ctx context.Context, tx portsrepo.TxRepositories) error {
			now := s.now()
			for _, w := range plan {
				_, err := tx.Accounts().FindAccountByKey(ctx, w.entity, w.spec.Key, w.subject)
				if err == nil {
					continue
				}
				if !errors.Is(err, apperrors.ErrNotFound) {
					return err
				}
				seq, err := tx.Sequences().NextSequence(ctx, accountCodeScope(w.entity, w.spec.Class))
				if err != nil {
					return err
				}
				key := w.spec.Key
				account := domain.Account{
					AccountID:   uuid.NewString(),
					Entity:      w.entity,
					Code:        domain.FormatAccountCode(w.spec.Class, seq),
					Name:        w.spec.Name,
					Class:       w.spec.Class,
					Nature:      w.spec.Class.Nature(),
					Key:         &key,
					KeySubject:  w.subject,
					IsSystem:    true,
					IsActive:    true,
					AuditFields: domain.NewAuditFields(actorID, now),
				}
				if err := tx.Accounts().SaveAccount(ctx, account); err != nil {
					return err
				}
				created = append(created, account)
			}
			if len(created) == 0 {
				return nil
			}
			return s.audit.Record(ctx, tx, portssvc.AuditRecord{
				Action:     domain.AuditEntityProvisioned,
				EntityName: "entity",
				EntityID:   entity.ScopeKey(),
				ActorID:    actorID,
				After:      created,
			})
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to provision entity", slog.String("entity", entity.String()))
		return nil, err
	}

	s.changed(ctx)
	s.LogInfo(ctx, "Entity provisioned", slog.String("entity", entity.String()), slog.Int("created", len(created)))
	if created == nil {
		created = []domain.Account{}
	}
	return created, nil
}
