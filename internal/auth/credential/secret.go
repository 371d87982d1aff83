// internal/auth/credential/secret.go
package credential

import (
	"context"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// hmacAlgorithms are accepted when verifying shared secret credentials
var hmacAlgorithms = []jose.SignatureAlgorithm{jose.HS256, jose.HS384, jose.HS512}

// tokenClaims is the payload of a locally issued credential. The user id
// travels in the "id" claim; "sub" is honoured when "id" is absent.
type tokenClaims struct {
	UserID string `json:"id,omitempty"`
	jwt.Claims
}

func (c tokenClaims) subject() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// SecretVerifier verifies HMAC-signed credentials against a shared secret
type SecretVerifier struct {
	key []byte
	now func() time.Time
}

// NewSecretVerifier creates a verifier for the given shared secret
func NewSecretVerifier(secret string) *SecretVerifier {
	return &SecretVerifier{key: []byte(secret), now: time.Now}
}

// Verify checks the signature and expiry of raw and returns its claims
func (v *SecretVerifier) Verify(_ context.Context, raw string) (*Claims, error) {
	tok, err := jwt.ParseSigned(raw, hmacAlgorithms)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	var c tokenClaims
	if err := tok.Claims(v.key, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	if err := c.ValidateWithLeeway(jwt.Expected{Time: v.now()}, 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	sub := c.subject()
	if sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidCredential)
	}

	claims := &Claims{Subject: sub}
	if c.Expiry != nil {
		claims.ExpiresAt = c.Expiry.Time()
	}
	return claims, nil
}

// SecretIssuer signs HS256 credentials with a shared secret
type SecretIssuer struct {
	signer jose.Signer
	ttl    time.Duration
	now    func() time.Time
}

// NewSecretIssuer creates an issuer whose credentials expire after ttl
func NewSecretIssuer(secret string, ttl time.Duration) (*SecretIssuer, error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: []byte(secret)},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token signer: %w", err)
	}
	return &SecretIssuer{signer: signer, ttl: ttl, now: time.Now}, nil
}

// Issue mints a credential for subject
func (i *SecretIssuer) Issue(subject string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)

	c := tokenClaims{
		UserID: subject,
		Claims: jwt.Claims{
			IssuedAt: jwt.NewNumericDate(now),
			Expiry:   jwt.NewNumericDate(exp),
		},
	}

	raw, err := jwt.Signed(i.signer).Claims(c).Serialize()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return raw, exp, nil
}
