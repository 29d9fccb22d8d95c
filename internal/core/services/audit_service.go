package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/marketplace_ledger/internal/core/ports/services"
	"github.com/google/uuid"
)

// auditService writes and reads the append-only audit log.
type auditService struct {
	BaseService
	auditRepo portsrepo.AuditRepositoryFacade
	actors    portssvc.ActorDirectory
}

// NewAuditService creates the audit service. actors may be nil, in which case only
// actor ids are recorded.
func NewAuditService(repo portsrepo.AuditRepositoryFacade, actors portssvc.ActorDirectory, opts ...Option) portssvc.AuditSvcFacade {
	svc := &auditService{auditRepo: repo, actors: actors}
	svc.apply(opts)
	return svc
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// Record implements portssvc.AuditRecorderSvc.
func (s *auditService) Record(ctx context.Context, tx portsrepo.TxRepositories, rec portssvc.AuditRecord) error {
	before, err := snapshot(rec.Before)
	if err != nil {
		return fmt.Errorf("audit %s: %w", rec.Action, err)
	}
	after, err := snapshot(rec.After)
	if err != nil {
		return fmt.Errorf("audit %s: %w", rec.Action, err)
	}

	entry := domain.AuditLogEntry{
		AuditID:    uuid.NewString(),
		Action:     rec.Action,
		EntityName: rec.EntityName,
		EntityID:   rec.EntityID,
		ActorID:    rec.ActorID,
		Before:     before,
		After:      after,
		CreatedAt:  s.now(),
	}
	name, err := s.actorName(ctx, tx, rec.ActorID)
	if err != nil {
		s.LogDebug(ctx, "Actor name lookup failed", slog.String("actor_id", rec.ActorID), slog.String("error", err.Error()))
	}
	entry.ActorName = name

	if err := tx.Audit().SaveAuditLog(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to save audit log", slog.String("action", string(rec.Action)))
		return err
	}
	return nil
}

// actorName names integration actors after their key and asks the directory for
// everyone else. An empty name means the actor is recorded by id only.
func (s *auditService) actorName(ctx context.Context, tx portsrepo.TxRepositories, actorID string) (string, error) {
	if keyID, ok := strings.CutPrefix(actorID, integrationActorPrefix); ok {
		key, err := tx.IntegrationKeys().FindIntegrationKeyByID(ctx, keyID)
		if err != nil {
			return "", err
		}
		return key.Name, nil
	}
	if s.actors == nil {
		return "", nil
	}
	return s.actors.ActorName(ctx, actorID)
}

// ListAuditLogs implements portssvc.AuditReaderSvc.
func (s *auditService) ListAuditLogs(ctx context.Context, filter domain.AuditFilter, page domain.PageRequest) ([]domain.AuditLogEntry, int, error) {
	return s.auditRepo.ListAuditLogs(ctx, filter, page.Limit, page.Offset())
}

func snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
