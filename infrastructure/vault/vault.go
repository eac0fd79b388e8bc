package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"social-hub/domain/errs"
)

const (
	keyLen   = 32
	nonceLen = 16
	tagLen   = 16
)

// CredentialVault encrypts and decrypts workspace secrets with AES-256-GCM.
// Ciphertext wire format: base64(nonce(16) || ciphertext || tag(16)).
type CredentialVault struct {
	key []byte
}

// New validates the process-wide key and returns a vault. The key must be
// exactly 32 bytes; anything else is a configuration error.
func New(key []byte) (*CredentialVault, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: vault key is not set", errs.ErrConfiguration)
	}
	if len(key) != keyLen {
		return nil, fmt.Errorf("%w: vault key must be %d bytes, got %d", errs.ErrConfiguration, keyLen, len(key))
	}
	k := make([]byte, keyLen)
	copy(k, key)
	return &CredentialVault{key: k}, nil
}

func (v *CredentialVault) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrConfiguration, err)
	}
	return cipher.NewGCMWithNonceSize(block, nonceLen)
}

// Encrypt seals plaintext under a fresh random nonce.
func (v *CredentialVault) Encrypt(plaintext string) (string, error) {
	aead, err := v.aead()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("%w: nonce generation failed: %v", errs.ErrConfiguration, err)
	}
	out := make([]byte, 0, nonceLen+len(plaintext)+tagLen)
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, []byte(plaintext), nil)...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens a sealed value. Tampered or truncated input fails with
// errs.ErrDataIntegrity; corrupted plaintext is never returned.
func (v *CredentialVault) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext is not valid base64", errs.ErrDataIntegrity)
	}
	if len(raw) < nonceLen+tagLen {
		return "", fmt.Errorf("%w: ciphertext too short", errs.ErrDataIntegrity)
	}
	aead, err := v.aead()
	if err != nil {
		return "", err
	}
	plain, err := aead.Open(nil, raw[:nonceLen], raw[nonceLen:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication tag mismatch", errs.ErrDataIntegrity)
	}
	return string(plain), nil
}

// MaskSecret reveals only the last 4 characters for display.
func MaskSecret(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
