package security

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(length int) []byte {
	key := make([]byte, length)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}
	return key
}

func TestAESService_EncryptDecrypt_Roundtrip(t *testing.T) {
	nopLogger := zerolog.Nop()

	testCases := []struct {
		name    string
		key     []byte
		payload []byte
	}{
		{name: "AES-128", key: generateKey(16), payload: []byte("eyJhbGciOiJIUzI1NiJ9.admin")},
		{name: "AES-256", key: generateKey(32), payload: []byte(`{"id":"a1","email":"ops@example.com"}`)},
		{name: "Empty Payload", key: generateKey(32), payload: []byte("")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			service, err := NewAESService(tc.key, &nopLogger)
			require.NoError(t, err)

			ciphertext, err := service.Encrypt(tc.payload)
			require.NoError(t, err)
			if len(tc.payload) > 0 {
				assert.False(t, bytes.Contains(ciphertext, tc.payload), "ciphertext leaks plaintext")
			}

			plaintext, err := service.Decrypt(ciphertext)
			require.NoError(t, err)
			assert.Equal(t, string(tc.payload), string(plaintext))
		})
	}
}

func TestAESService_SealString(t *testing.T) {
	nopLogger := zerolog.Nop()
	service, err := NewTokenCipherFromHex(strings.Repeat("0f", 32), &nopLogger)
	require.NoError(t, err)

	sealed, err := service.SealString("admin-token")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "admin-token")

	opened, err := service.OpenString(sealed)
	require.NoError(t, err)
	assert.Equal(t, "admin-token", opened)

	_, err = service.OpenString("%%% not base64 %%%")
	assert.Error(t, err)
}

func TestAESService_Decrypt_Tampered(t *testing.T) {
	nopLogger := zerolog.Nop()
	service, err := NewAESService(generateKey(32), &nopLogger)
	require.NoError(t, err)

	ciphertext, err := service.Encrypt([]byte("do not tamper with this"))
	require.NoError(t, err)

	ciphertext[len(ciphertext)-1] = ^ciphertext[len(ciphertext)-1]

	_, err = service.Decrypt(ciphertext)
	assert.Error(t, err, "decryption must fail on tampered data")
}

func TestNewAESService_InvalidKey(t *testing.T) {
	nopLogger := zerolog.Nop()

	_, err := NewAESService([]byte("badkey"), &nopLogger)
	assert.Error(t, err)

	_, err = NewTokenCipherFromHex("not-hex", &nopLogger)
	assert.Error(t, err)
}
