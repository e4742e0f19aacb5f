package handlers

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/logrelay/internal/tokens"
)

func endToEndCredential(t *testing.T) *tokens.Credential {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: der,
	})

	return &tokens.Credential{
		Email:      "relay@example-project.iam.gserviceaccount.com",
		PrivateKey: string(keyPEM),
	}
}
