package tokens

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredential indicates missing or malformed credential material.
	ErrInvalidCredential = errors.New("invalid service credential")
	// ErrInvalidKeyMaterial indicates the private key PEM could not be parsed.
	ErrInvalidKeyMaterial = errors.New("invalid private key material")
)

// Credential is the service identity used to mint bearer tokens: an
// issuer/subject identity plus an RSA private key in PEM form. It is held in
// configuration only and never persisted or logged by the relay.
type Credential struct {
	// Email is the issuer/subject identity presented in assertions.
	Email string
	// PrivateKey is the PEM-encoded RSA private key.
	PrivateKey string
	// TokenURL optionally overrides the token authority endpoint. Populated
	// when the credential is loaded from a structured secret.
	TokenURL string
}

type credentialJSON struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// ParseCredential loads a credential from a single structured JSON secret
// carrying client_email, private_key and optionally token_uri.
func ParseCredential(data []byte) (*Credential, error) {
	var raw credentialJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	cred := &Credential{
		Email:      raw.ClientEmail,
		PrivateKey: raw.PrivateKey,
		TokenURL:   raw.TokenURI,
	}
	if cred.Email == "" || cred.PrivateKey == "" {
		return nil, fmt.Errorf("%w: client_email and private_key are required", ErrInvalidCredential)
	}
	return cred, nil
}
