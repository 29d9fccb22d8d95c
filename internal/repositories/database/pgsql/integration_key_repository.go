package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/marketplace_ledger/internal/models"
	"github.com/SscSPs/marketplace_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxIntegrationKeyRepository struct {
	BaseRepository
}

func newPgxIntegrationKeyRepository(pool *pgxpool.Pool) *PgxIntegrationKeyRepository {
	return &PgxIntegrationKeyRepository{BaseRepository{db: pool}}
}

var _ portsrepo.IntegrationKeyRepositoryFacade = (*PgxIntegrationKeyRepository)(nil)

var integrationKeyColumns = []string{
	"key_id", "name", "secret_hash", "created_by", "created_at", "last_used_at", "revoked_at",
}

func scanIntegrationKey(row pgx.CollectableRow) (domain.IntegrationKey, error) {
	m, err := pgx.RowToStructByName[models.IntegrationKey](row)
	if err != nil {
		return domain.IntegrationKey{}, err
	}
	return mapping.ToDomainIntegrationKey(m), nil
}

func (r *PgxIntegrationKeyRepository) SaveIntegrationKey(ctx context.Context, key domain.IntegrationKey) error {
	m := mapping.ToModelIntegrationKey(key)
	query := fmt.Sprintf(`INSERT INTO integration_keys (%s) VALUES (%s)`,
		columns("", integrationKeyColumns...), placeholders(len(integrationKeyColumns)))
	_, err := r.db.Exec(ctx, query, m.KeyID, m.Name, m.SecretHash, m.CreatedBy, m.CreatedAt, m.LastUsedAt, m.RevokedAt)
	if err != nil {
		return mapWriteError(err, "integration key "+m.KeyID)
	}
	return nil
}

func (r *PgxIntegrationKeyRepository) FindIntegrationKeyByID(ctx context.Context, keyID string) (*domain.IntegrationKey, error) {
	query := fmt.Sprintf(`SELECT %s FROM integration_keys WHERE key_id = $1`, columns("", integrationKeyColumns...))
	rows, err := r.db.Query(ctx, query, keyID)
	if err != nil {
		return nil, mapReadError(err, "integration key "+keyID)
	}
	k, err := pgx.CollectExactlyOneRow(rows, scanIntegrationKey)
	if err != nil {
		return nil, mapReadError(err, "integration key "+keyID)
	}
	return &k, nil
}

func (r *PgxIntegrationKeyRepository) ListIntegrationKeys(ctx context.Context) ([]domain.IntegrationKey, error) {
	query := fmt.Sprintf(`SELECT %s FROM integration_keys ORDER BY created_at`, columns("", integrationKeyColumns...))
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, mapReadError(err, "integration keys")
	}
	keys, err := pgx.CollectRows(rows, scanIntegrationKey)
	if err != nil {
		return nil, mapReadError(err, "integration keys")
	}
	return keys, nil
}

// RevokeIntegrationKey stamps revoked_at once; revoking again keeps the first stamp.
func (r *PgxIntegrationKeyRepository) RevokeIntegrationKey(ctx context.Context, keyID string, at time.Time) error {
	return r.stamp(ctx, keyID, `UPDATE integration_keys SET revoked_at = COALESCE(revoked_at, $2) WHERE key_id = $1`, at)
}

func (r *PgxIntegrationKeyRepository) TouchIntegrationKey(ctx context.Context, keyID string, at time.Time) error {
	return r.stamp(ctx, keyID, `UPDATE integration_keys SET last_used_at = $2 WHERE key_id = $1`, at)
}

func (r *PgxIntegrationKeyRepository) stamp(ctx context.Context, keyID string, query string, at time.Time) error {
	tag, err := r.db.Exec(ctx, query, keyID, at)
	if err != nil {
		return mapWriteError(err, "integration key "+keyID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: integration key %s", apperrors.ErrNotFound, keyID)
	}
	return nil
}
