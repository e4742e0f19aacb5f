package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_RoundTrip(t *testing.T) {
	secrets := []string{"s", "shared-secret", "a-much-longer-shared-secret-value-0123456789"}
	bodies := [][]byte{
		[]byte(""),
		[]byte("{}"),
		[]byte(`{"schema_version":1,"message":"hello"}`),
		[]byte("\x00\x01\x02 arbitrary bytes \xff"),
	}

	for _, secret := range secrets {
		for _, body := range bodies {
			header := Compute(secret, body)
			assert.True(t, Verify(body, header, secret), "secret=%q body=%q", secret, body)
		}
	}
}

func TestVerify_BitFlippedSignatureFails(t *testing.T) {
	secret := "shared-secret"
	body := []byte(`{"source":"app"}`)
	header := Compute(secret, body)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	digest := mac.Sum(nil)

	// Flip one bit at the start, middle and end of the digest.
	for _, pos := range []int{0, len(digest) / 2, len(digest) - 1} {
		flipped := make([]byte, len(digest))
		copy(flipped, digest)
		flipped[pos] ^= 0x01
		bad := Prefix + hex.EncodeToString(flipped)
		require.NotEqual(t, header, bad)
		assert.False(t, Verify(body, bad, secret), "flip at byte %d accepted", pos)
	}
}

func TestVerify_MissingHeaderFails(t *testing.T) {
	assert.False(t, Verify([]byte("body"), "", "secret"))
}

func TestVerify_WrongPrefixFails(t *testing.T) {
	secret := "secret"
	body := []byte("body")
	header := Compute(secret, body)
	assert.False(t, Verify(body, "sha1="+header[len(Prefix):], secret))
}

func TestVerify_LengthMismatchFails(t *testing.T) {
	secret := "secret"
	body := []byte("body")
	header := Compute(secret, body)
	assert.False(t, Verify(body, header[:len(header)-2], secret))
	assert.False(t, Verify(body, header+"ab", secret))
}

func TestVerify_NoSecretSkipsAuthentication(t *testing.T) {
	// Opt-in security model: with no secret configured every request passes,
	// whatever the header says.
	assert.True(t, Verify([]byte("body"), "", ""))
	assert.True(t, Verify([]byte("body"), "sha256=deadbeef", ""))
}

func TestVerify_SignatureForOtherBodyFails(t *testing.T) {
	secret := "secret"
	header := Compute(secret, []byte("body-a"))
	assert.False(t, Verify([]byte("body-b"), header, secret))
}
