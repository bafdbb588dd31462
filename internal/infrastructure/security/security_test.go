package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/procurement-api/internal/infrastructure/security"
)

func TestBcryptHasher_HashYCompare(t *testing.T) {
	h := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("secreto123")
	require.NoError(t, err)

	assert.NotEqual(t, "secreto123", hash, "nunca se guarda en claro")
	assert.True(t, h.Compare(hash, "secreto123"))
	assert.False(t, h.Compare(hash, "otro"))
}

func TestRandomTokenGenerator_TokensUnicos(t *testing.T) {
	g := security.NewRandomTokenGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := g.NewToken()
		require.NoError(t, err)
		assert.Len(t, tok, 43, "32 bytes en base64url sin relleno")
		assert.False(t, seen[tok])
		seen[tok] = true
	}
}
