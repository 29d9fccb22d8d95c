package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/marketplace_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/marketplace_ledger/internal/models"
	"github.com/SscSPs/marketplace_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository{db: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

var accountColumns = append([]string{
	"account_id", "entity_type", "entity_id", "code", "name", "class", "nature",
	"parent_account_id", "description", "account_key", "key_subject",
	"is_system", "can_delete", "is_active",
}, auditColumns...)

func scanAccount(row pgx.CollectableRow) (domain.Account, error) {
	m, err := pgx.RowToStructByName[models.Account](row)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := fmt.Sprintf(`INSERT INTO accounts (%s) VALUES (%s)`, columns("", accountColumns...), placeholders(len(accountColumns)))

	_, err := r.db.Exec(ctx, query,
		m.AccountID, m.EntityType, m.EntityID, m.Code, m.Name, m.Class, m.Nature,
		m.ParentAccountID, m.Description, m.AccountKey, m.KeySubject,
		m.IsSystem, m.CanDelete, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "account "+m.Code)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE account_id = $1`, columns("", accountColumns...))
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, mapReadError(err, "account "+accountID)
	}
	acc, err := pgx.CollectExactlyOneRow(rows, scanAccount)
	if err != nil {
		return nil, mapReadError(err, "account "+accountID)
	}
	return &acc, nil
}

// FindAccountsByIDs retrieves the accounts that exist among accountIDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE account_id = ANY($1)`, columns("", accountColumns...))
	rows, err := r.db.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, mapReadError(err, "accounts")
	}
	accounts, err := pgx.CollectRows(rows, scanAccount)
	if err != nil {
		return nil, mapReadError(err, "accounts")
	}
	for _, acc := range accounts {
		out[acc.AccountID] = acc
	}
	return out, nil
}

// FindAccountByKey retrieves the system account registered under key for the entity.
func (r *PgxAccountRepository) FindAccountByKey(ctx context.Context, entity domain.EntityRef, key domain.AccountKey, subject string) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts
		WHERE entity_type = $1 AND entity_id = $2 AND account_key = $3 AND key_subject = $4`,
		columns("", accountColumns...))
	rows, err := r.db.Query(ctx, query, string(entity.Type), entity.ID, string(key), subject)
	if err != nil {
		return nil, mapReadError(err, "account key")
	}
	acc, err := pgx.CollectExactlyOneRow(rows, scanAccount)
	if err != nil {
		return nil, mapReadError(err, fmt.Sprintf("%s account %s/%s", entity, key, subject))
	}
	return &acc, nil
}

// ListAccounts retrieves a page of the entity's accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, entity domain.EntityRef, class *domain.AccountClass, activeOnly bool, limit int, offset int) ([]domain.Account, int, error) {
	where := &whereClause{}
	where.add("entity_type = $%d", string(entity.Type))
	where.add("entity_id = $%d", entity.ID)
	if class != nil {
		where.add("class = $%d", string(*class))
	}
	if activeOnly {
		where.add("is_active = $%d", true)
	}
	accounts, total, err := collectPage(ctx, r.db, columns("", accountColumns...), "accounts", where, "code", limit, offset, scanAccount)
	if err != nil {
		return nil, 0, mapReadError(err, "accounts")
	}
	return accounts, total, nil
}

// CountAccountReferences counts ledger lines, draft lines and children pointing at the account.
func (r *PgxAccountRepository) CountAccountReferences(ctx context.Context, accountID string) (portsrepo.AccountReferences, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM ledger_entries WHERE account_id = $1),
			(SELECT COUNT(*) FROM voucher_draft_entries WHERE account_id = $1),
			(SELECT COUNT(*) FROM accounts WHERE parent_account_id = $1)`
	var refs portsrepo.AccountReferences
	if err := r.db.QueryRow(ctx, query, accountID).Scan(&refs.LedgerEntries, &refs.DraftEntries, &refs.Children); err != nil {
		return refs, mapReadError(err, "account references")
	}
	return refs, nil
}

// UpdateAccount updates the mutable details of an account.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts
		SET name = $2, description = $3, parent_account_id = $4, is_active = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE account_id = $1`
	tag, err := r.db.Exec(ctx, query, m.AccountID, m.Name, m.Description, m.ParentAccountID, m.IsActive, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return mapWriteError(err, "account "+m.AccountID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, m.AccountID)
	}
	return nil
}

// DeleteAccount removes an account. Foreign keys from the ledger surface as ErrConflict.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE account_id = $1`, accountID)
	if err != nil {
		return mapWriteError(err, "account "+accountID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return nil
}
