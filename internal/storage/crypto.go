package storage

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// KeyProvider supplies the symmetric key for blob encryption. The key
// is injected at construction so provisioning (env var, secrets
// manager) stays outside this package.
type KeyProvider interface {
	EncryptionKey() ([]byte, error)
}

// StaticKey is a KeyProvider over a fixed key, used in wiring and tests.
type StaticKey []byte

func (k StaticKey) EncryptionKey() ([]byte, error) {
	return k, nil
}

// Base64Key decodes a base64-encoded key string, as carried in config.
type Base64Key string

func (k Base64Key) EncryptionKey() ([]byte, error) {
	if strings.TrimSpace(string(k)) == "" {
		return nil, errors.New("blob encryption key is required")
	}
	raw, err := base64.StdEncoding.DecodeString(string(k))
	if err != nil {
		return nil, fmt.Errorf("decode blob encryption key: %w", err)
	}
	return raw, nil
}

// EncryptedStore wraps an ObjectStorage backend with AES-CBC
// encryption. Every write gets a fresh random IV; the stored blob is
// IV followed by the ciphertext, so blobs written by earlier systems
// with the same framing remain readable.
type EncryptedStore struct {
	backend ObjectStorage
	block   cipher.Block
}

// NewEncryptedStore constructs an encrypting wrapper around backend.
// The provided key must be 16, 24, or 32 bytes.
func NewEncryptedStore(backend ObjectStorage, provider KeyProvider) (*EncryptedStore, error) {
	key, err := provider.EncryptionKey()
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("blob encryption key: %w", err)
	}

	return &EncryptedStore{
		backend: backend,
		block:   block,
	}, nil
}

// EnsureBucket prepares the underlying backend.
func (s *EncryptedStore) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Put encrypts plaintext under a fresh IV and writes IV‖ciphertext to
// the backend.
func (s *EncryptedStore) Put(ctx context.Context, key string, plaintext []byte) error {
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return err
	}

	padded := padPKCS7(plaintext, aes.BlockSize)
	sealed := make([]byte, aes.BlockSize+len(padded))
	copy(sealed, iv)
	cipher.NewCBCEncrypter(s.block, iv).CryptBlocks(sealed[aes.BlockSize:], padded)

	return s.backend.Put(ctx, key, sealed)
}

// Get reads a blob, splits off the leading IV, and returns the
// decrypted plaintext. A missing blob surfaces as ErrObjectNotFound.
func (s *EncryptedStore) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if len(sealed) < 2*aes.BlockSize || (len(sealed)-aes.BlockSize)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("blob %s: malformed encrypted payload", key)
	}

	iv := sealed[:aes.BlockSize]
	padded := make([]byte, len(sealed)-aes.BlockSize)
	cipher.NewCBCDecrypter(s.block, iv).CryptBlocks(padded, sealed[aes.BlockSize:])

	plaintext, err := unpadPKCS7(padded, aes.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("blob %s: %w", key, err)
	}
	return plaintext, nil
}

// Delete removes the blob for key from the backend.
func (s *EncryptedStore) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

func padPKCS7(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func unpadPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, errors.New("invalid padding")
	}
	if !bytes.Equal(data[len(data)-padLen:], bytes.Repeat([]byte{byte(padLen)}, padLen)) {
		return nil, errors.New("invalid padding")
	}
	return data[:len(data)-padLen], nil
}
