package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureRandomString(t *testing.T) {
	a, err := GenerateSecureRandomString("mlk_", 32)
	require.NoError(t, err)
	b, err := GenerateSecureRandomString("mlk_", 32)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "mlk_"))
	assert.Len(t, a, len("mlk_")+43)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, ".", "the key id separator never appears in a secret")
}

func TestHashSecret(t *testing.T) {
	hash, err := HashSecret("mlk_secret")
	require.NoError(t, err)

	assert.NotEqual(t, "mlk_secret", hash)
	assert.True(t, CheckSecretHash("mlk_secret", hash))
	assert.False(t, CheckSecretHash("mlk_other", hash))
}
