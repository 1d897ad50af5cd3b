package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey is returned when the key is not exactly 32 bytes (AES-256).
	ErrInvalidKey = errors.New("encryption key must be exactly 32 bytes")
	// ErrInvalidCiphertext is returned when a ciphertext cannot be decoded or
	// fails authentication.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// Encryptor encrypts and decrypts strings with AES-256-GCM. Ciphertexts are
// base64url encoded nonce||ciphertext, so they are safe to store in VARCHAR
// columns and to hand out as opaque tokens.
type Encryptor struct {
	gcm cipher.AEAD
}

func NewEncryptor(key string) (*Encryptor, error) {
	if len(key) != 32 {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Encryptor{gcm: gcm}, nil
}

// Encrypt encrypts plaintext. Empty input passes through unchanged so callers
// can store "no value" without special-casing.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := e.gcm.Seal(nil, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(append(nonce, ciphertext...)), nil
}

// Decrypt reverses Encrypt. Empty input passes through unchanged.
func (e *Encryptor) Decrypt(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}

	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	if len(data) < e.gcm.NonceSize() {
		return "", ErrInvalidCiphertext
	}

	nonce := data[:e.gcm.NonceSize()]
	ciphertext := data[e.gcm.NonceSize():]

	plaintext, err := e.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	return string(plaintext), nil
}
