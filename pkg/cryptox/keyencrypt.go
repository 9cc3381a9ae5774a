package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
)

// MasterKeyEnv is read when no master key file is configured.
const MasterKeyEnv = "AUTH_MASTER_KEY"

// KeyEncrypter seals signing keys at rest with AES-256-GCM.
type KeyEncrypter struct {
	aead cipher.AEAD

	// Ephemeral is true when no key material was configured and a random
	// key was generated; sealed data will not survive a restart.
	Ephemeral bool
}

// NewKeyEncrypter derives a 32-byte AES key from material with SHA-256.
func NewKeyEncrypter(material []byte) (*KeyEncrypter, error) {
	if len(material) == 0 {
		return nil, errors.New("cryptox: empty master key material")
	}

	key := sha256.Sum256(material)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &KeyEncrypter{aead: aead}, nil
}

// LoadKeyEncrypter resolves master key material from, in order: the file at
// path, the AUTH_MASTER_KEY environment variable, or a random ephemeral key.
func LoadKeyEncrypter(path string) (*KeyEncrypter, error) {
	var (
		material  []byte
		ephemeral bool
	)

	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read master key file: %w", err)
		}
		material = data
	case os.Getenv(MasterKeyEnv) != "":
		material = []byte(os.Getenv(MasterKeyEnv))
	default:
		material = make([]byte, 32)
		if _, err := rand.Read(material); err != nil {
			return nil, fmt.Errorf("failed to generate ephemeral master key: %w", err)
		}
		ephemeral = true
	}

	enc, err := NewKeyEncrypter(material)
	if err != nil {
		return nil, err
	}
	enc.Ephemeral = ephemeral
	return enc, nil
}

// Seal encrypts plaintext. Output layout: [nonce][ciphertext][tag].
func (e *KeyEncrypter) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts data produced by Seal.
func (e *KeyEncrypter) Open(sealed []byte) ([]byte, error) {
	n := e.aead.NonceSize()
	if len(sealed) < n {
		return nil, errors.New("ciphertext too short")
	}
	plaintext, err := e.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}
