package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes entropía del token de invitación (256 bits).
const tokenBytes = 32

// RandomTokenGenerator implementa onboarding.TokenGenerator con crypto/rand.
type RandomTokenGenerator struct{}

// NewRandomTokenGenerator construye el generador.
func NewRandomTokenGenerator() *RandomTokenGenerator { return &RandomTokenGenerator{} }

// NewToken devuelve un token base64url sin relleno.
func (RandomTokenGenerator) NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
