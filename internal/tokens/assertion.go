package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// assertionClaims extends the registered claim set with the OAuth2 scope
// claim expected by JWT-bearer token authorities.
type assertionClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// SignAssertion builds the compact RS256-signed assertion exchanged for a
// bearer token: issuer and subject are the service identity, the audience is
// the token endpoint, and the token is valid from now until now+ttl. The
// signing primitive is isolated here so it stays a single swappable seam.
func SignAssertion(cred *Credential, audience, scope string, ttl time.Duration) (string, error) {
	if cred == nil || cred.Email == "" || cred.PrivateKey == "" {
		return "", ErrInvalidCredential
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cred.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKeyMaterial, err)
	}

	now := time.Now()
	claims := assertionClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cred.Email,
			Subject:   cred.Email,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}
