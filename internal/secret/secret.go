// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package secret encrypts small values at rest, primarily the API key.
//
// Values are sealed with AES-256-GCM. The key is derived with
// PBKDF2-SHA-256 from a random keyfile created on first use, so an
// exported settings database does not leak the credential by itself.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/AppleLamps/testing-uncensored/internal/util"
)

// EncryptedPrefix marks a sealed value (format: ENC:base64(nonce|ciphertext|tag)).
const EncryptedPrefix = "ENC:"

const (
	nonceSize   = 12
	keySize     = 32
	keyfileSize = 64

	// OWASP guidance for PBKDF2-SHA-256.
	pbkdf2Iterations = 600000
)

var (
	// ErrInvalidCiphertext indicates the sealed value is malformed.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	// ErrDecryptionFailed indicates a wrong key or tampered data.
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
)

// zeroBytes clears key material so it does not linger in crash dumps.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Vault seals and opens string values using a keyfile on disk.
type Vault struct {
	aead cipher.AEAD
}

// Open loads (or creates) the keyfile at path and prepares the cipher.
func Open(keyfilePath string) (*Vault, error) {
	material, err := loadOrCreateKeyfile(keyfilePath)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(material)

	// The keyfile carries salt followed by seed material.
	salt, seed := material[:keySize], material[keySize:]
	key := pbkdf2.Key(seed, salt, pbkdf2Iterations, keySize, sha256.New)
	defer zeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Vault{aead: aead}, nil
}

func loadOrCreateKeyfile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != keyfileSize {
			return nil, fmt.Errorf("keyfile %s is corrupt (%d bytes)", path, len(data))
		}
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read keyfile: %w", err)
	}

	material := make([]byte, keyfileSize)
	if _, err := io.ReadFull(rand.Reader, material); err != nil {
		return nil, fmt.Errorf("failed to generate keyfile: %w", err)
	}
	if err := util.AtomicWriteFile(path, material, 0600); err != nil {
		return nil, fmt.Errorf("failed to write keyfile: %w", err)
	}
	return material, nil
}

// Seal encrypts a value and returns the ENC: envelope.
// Empty values pass through unchanged.
func (v *Vault) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Unseal decrypts an ENC: envelope. Values without the prefix are
// returned as-is, so plaintext keys from older installs keep working.
func (v *Vault) Unseal(value string) (string, error) {
	if !strings.HasPrefix(value, EncryptedPrefix) {
		return value, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	if len(raw) < nonceSize {
		return "", ErrInvalidCiphertext
	}
	plaintext, err := v.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// IsSealed reports whether a value carries the ENC: envelope.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, EncryptedPrefix)
}
