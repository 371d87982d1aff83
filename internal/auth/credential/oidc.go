// internal/auth/credential/oidc.go
package credential

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/exp/slices"
)

// audiences helps unmarshall the audience claim which can be either a string or an array
type audiences []string

func (a *audiences) UnmarshalJSON(data []byte) error {
	// Try as a single string
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = []string{single}
		return nil
	}

	// Try as an array of strings
	var multiple []string
	if err := json.Unmarshal(data, &multiple); err == nil {
		*a = multiple
		return nil
	}

	return fmt.Errorf("invalid audience claim format")
}

// OIDCVerifier verifies credentials issued by an external OIDC provider.
// The token subject must be the id of a stored user.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
	clientID string
}

// NewOIDCVerifier discovers the issuer and builds a verifier for clientID
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OIDC provider: %w", err)
	}

	// Audience is checked in Verify so azp is accepted as well
	return newOIDCVerifier(provider.Verifier(&oidc.Config{
		ClientID:          clientID,
		SkipClientIDCheck: true,
	}), clientID), nil
}

func newOIDCVerifier(v *oidc.IDTokenVerifier, clientID string) *OIDCVerifier {
	return &OIDCVerifier{verifier: v, clientID: clientID}
}

// Verify checks raw against the provider keys and the expected audience
func (v *OIDCVerifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	var claims struct {
		Subject string    `json:"sub"`
		UserID  string    `json:"id,omitempty"`
		Azp     string    `json:"azp,omitempty"`
		Aud     audiences `json:"aud,omitempty"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: failed to parse claims: %v", ErrInvalidCredential, err)
	}

	if claims.Azp != v.clientID && !slices.Contains(claims.Aud, v.clientID) {
		return nil, fmt.Errorf("%w: audience mismatch (aud=%v, azp=%q)", ErrInvalidCredential, claims.Aud, claims.Azp)
	}

	sub := claims.UserID
	if sub == "" {
		sub = claims.Subject
	}
	if sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidCredential)
	}

	return &Claims{Subject: sub, ExpiresAt: idToken.Expiry}, nil
}
