package services

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/chacha20poly1305"
)

var tokenAEAD interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
}

// InitTokenCipher configures AEAD sealing of stored access tokens from a
// hex-encoded 32-byte key. With an empty key, tokens are stored in plaintext.
func InitTokenCipher(hexKey string) error {
	if hexKey == "" {
		tokenAEAD = nil
		slog.Warn("TOKEN_ENCRYPTION_KEY not set, access tokens will be stored in plaintext")
		return nil
	}

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return fmt.Errorf("invalid token encryption key: %w", err)
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return fmt.Errorf("invalid token encryption key: %w", err)
	}

	tokenAEAD = aead
	slog.Info("Access token encryption enabled")
	return nil
}

// SealToken encrypts an access token for storage
func SealToken(token string) (string, error) {
	if tokenAEAD == nil {
		return token, nil
	}

	nonce := make([]byte, tokenAEAD.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := tokenAEAD.Seal(nonce, nonce, []byte(token), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenToken decrypts a stored access token
func OpenToken(sealed string) (string, error) {
	if tokenAEAD == nil {
		return sealed, nil
	}

	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("malformed sealed token: %w", err)
	}

	nonceSize := tokenAEAD.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("malformed sealed token: too short")
	}

	plain, err := tokenAEAD.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed token: %w", err)
	}

	return string(plain), nil
}
