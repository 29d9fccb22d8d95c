package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/SscSPs/marketplace_ledger/internal/apperrors"
	"github.com/SscSPs/marketplace_ledger/internal/authz"
	"github.com/SscSPs/marketplace_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrationKeyLifecycle(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)

	key, plaintext, err := f.svc.IntegrationKey.CreateKey(f.ctx, "order-service", adminActor)
	require.NoError(t, err)
	assert.Equal(t, "order-service", key.Name)
	assert.True(t, strings.HasPrefix(plaintext, key.KeyID+".mlk_"))
	assert.NotContains(t, key.SecretHash, "mlk_", "only the hash is stored")

	principal, err := f.svc.IntegrationKey.ValidateKey(f.ctx, plaintext)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSystem, principal.Role)
	assert.Equal(t, "integration:"+key.KeyID, principal.ActorID)

	keys, err := f.svc.IntegrationKey.ListKeys(f.ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.NotNil(t, keys[0].LastUsedAt)
	assert.Equal(t, testNow, *keys[0].LastUsedAt)

	require.NoError(t, f.svc.IntegrationKey.RevokeKey(f.ctx, key.KeyID, adminActor))
	_, err = f.svc.IntegrationKey.ValidateKey(f.ctx, plaintext)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	err = f.svc.IntegrationKey.RevokeKey(f.ctx, key.KeyID, adminActor)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestValidateKey_Rejections(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	key, plaintext, err := f.svc.IntegrationKey.CreateKey(f.ctx, "payments", adminActor)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no separator", "abc"},
		{"missing secret", key.KeyID + "."},
		{"unknown key", "00000000-0000-0000-0000-000000000000.mlk_x"},
		{"wrong secret", key.KeyID + ".mlk_wrong"},
		{"secret of another key", "other." + strings.SplitN(plaintext, ".", 2)[1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.IntegrationKey.ValidateKey(f.ctx, tt.raw)
			assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		})
	}
}

func TestIntegrationKeys_AdminOnly(t *testing.T) {
	f := newLedgerFixture(t, domain.ClosedPeriodReject)
	vendorCtx := authz.WithPrincipal(context.Background(), domain.Principal{ActorID: "vendor-user", Role: domain.RoleVendor, VendorID: vendorID})

	_, _, err := f.svc.IntegrationKey.CreateKey(vendorCtx, "sneaky", "vendor-user")
	assert.ErrorIs(t, err, apperrors.ErrPermission)

	_, _, err = f.svc.IntegrationKey.CreateKey(f.ctx, " ", adminActor)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
