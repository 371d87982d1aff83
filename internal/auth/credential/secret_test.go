package credential

import (
	"context"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func sign(t *testing.T, alg jose.SignatureAlgorithm, key any, claims any) string {
	t.Helper()
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: alg, Key: key}, (&jose.SignerOptions{}).WithType("JWT"))
	require.NoError(t, err)
	raw, err := jwt.Signed(signer).Claims(claims).Serialize()
	require.NoError(t, err)
	return raw
}

func TestSecretIssueAndVerify(t *testing.T) {
	issuer, err := NewSecretIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	raw, exp, err := issuer.Issue("64b7f0c2a1b2c3d4e5f60718")
	require.NoError(t, err)

	claims, err := NewSecretVerifier(testSecret).Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.Subject)
	assert.WithinDuration(t, exp, claims.ExpiresAt, time.Second)
}

func TestSecretVerifyAcceptsSubjectClaim(t *testing.T) {
	raw := sign(t, jose.HS256, []byte(testSecret), map[string]any{"sub": "u1"})

	claims, err := NewSecretVerifier(testSecret).Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.True(t, claims.ExpiresAt.IsZero())
}

func TestSecretVerifyRejects(t *testing.T) {
	expired, err := NewSecretIssuer(testSecret, time.Minute)
	require.NoError(t, err)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expiredToken, _, err := expired.Issue("u1")
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"expired", expiredToken},
		{"wrong secret", sign(t, jose.HS256, []byte("ffffffffffffffffffffffffffffffff"), map[string]any{"id": "u1"})},
		{"no subject", sign(t, jose.HS256, []byte(testSecret), map[string]any{"iat": time.Now().Unix()})},
	}

	v := NewSecretVerifier(testSecret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCredential)
		})
	}
}
