package pgsql

import (
	"errors"
	"testing"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWhereClause(t *testing.T) {
	w := &whereClause{}
	assert.Equal(t, "", w.String())

	w.add("entity_type = $%d", "VENDOR")
	w.add("entity_id = $%d", "v1")
	w.add("status = ANY($%d)", []string{"POSTED"})

	assert.Equal(t, " WHERE entity_type = $1 AND entity_id = $2 AND status = ANY($3)", w.String())
	assert.Len(t, w.args, 3)
}

func TestColumnsAndPlaceholders(t *testing.T) {
	assert.Equal(t, "a, b", columns("", "a", "b"))
	assert.Equal(t, "v.a, v.b", columns("v", "a", "b"))
	assert.Equal(t, "$1, $2, $3", placeholders(3))
	assert.Nil(t, limitArg(0))
	assert.Equal(t, 20, limitArg(20))
}

func TestMapWriteError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "uq_accounts_code"}, apperrors.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: "23503"}, apperrors.ErrConflict},
		{"exclusion", &pgconn.PgError{Code: "23P01", ConstraintName: "accounting_periods_no_overlap"}, apperrors.ErrConflict},
		{"other", errors.New("connection reset"), apperrors.ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapWriteError(tt.err, "account 10001")
			if tt.want == apperrors.ErrInternal {
				var appErr *apperrors.AppError
				assert.ErrorAs(t, err, &appErr)
				assert.Equal(t, 500, appErr.Code)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPeriodLockKey(t *testing.T) {
	assert.Equal(t, "accounting_periods:VENDOR:v-1", periodLockKey(domain.VendorEntity("v-1")))
	assert.NotEqual(t, periodLockKey(domain.VendorEntity("v-1")), periodLockKey(domain.VendorEntity("v-2")))
	assert.NotEqual(t, periodLockKey(domain.AdminEntity()), periodLockKey(domain.VendorEntity("")))
}

func TestMapReadError(t *testing.T) {
	assert.ErrorIs(t, mapReadError(pgx.ErrNoRows, "voucher x"), apperrors.ErrNotFound)
	assert.NotErrorIs(t, mapReadError(errors.New("timeout"), "voucher x"), apperrors.ErrNotFound)
}
