package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/procurement-api/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u-1", "d-1", "admin", "procurement-test", 60)
	require.NoError(t, err)

	userID, deptID, role, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, "d-1", deptID)
	assert.Equal(t, "admin", role)
}

func TestParse_Errores(t *testing.T) {
	expired, err := pkgjwt.Generate(secret, "u-1", "", "staff", "procurement-test", -1)
	require.NoError(t, err)
	noUser, err := pkgjwt.Generate(secret, "", "", "staff", "procurement-test", 60)
	require.NoError(t, err)
	valid, err := pkgjwt.Generate(secret, "u-1", "", "staff", "procurement-test", 60)
	require.NoError(t, err)

	cases := []struct {
		name   string
		secret string
		token  string
	}{
		{"expirado", secret, expired},
		{"sin user_id", secret, noUser},
		{"secret incorrecto", "otro-secret", valid},
		{"malformado", secret, "token.invalido.aqui"},
		{"secret vacío", "", valid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := pkgjwt.Parse(tc.secret, tc.token)
			assert.Error(t, err)
		})
	}
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "u", "", "admin", "i", 1)
	assert.Error(t, err)
}
