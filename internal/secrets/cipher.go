// Package secrets implements passphrase-based authenticated encryption for
// private keys at rest, using Argon2id + ChaCha20-Poly1305.
package secrets

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// SaltSize is the length of the random KDF salt in bytes.
const SaltSize = 32

// ErrDecryptionFailed is returned when a bundle cannot be authenticated,
// covering both a wrong passphrase and tampered ciphertext.
var ErrDecryptionFailed = errors.New("decryption failed")

// Params holds Argon2id parameters.
type Params struct {
	Memory      uint32 // in KiB
	Iterations  uint32
	Parallelism uint8
}

// DefaultParams returns recommended Argon2id parameters.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024, // 64 MB
		Iterations:  3,
		Parallelism: 4,
	}
}

// Bundle is an encrypted secret: ciphertext, Poly1305 tag, KDF salt, and
// cipher nonce, each hex-encoded. A bundle is opaque to everything except
// Decrypt with the original passphrase.
type Bundle struct {
	Ciphertext string `json:"ciphertext"`
	Tag        string `json:"tag"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
}

// Fingerprint returns a short blake3 digest of the bundle, usable to
// identify a stored key without decrypting it.
func (b Bundle) Fingerprint() string {
	h := blake3.New()
	h.Write([]byte(b.Salt))
	h.Write([]byte(b.Nonce))
	h.Write([]byte(b.Ciphertext))
	h.Write([]byte(b.Tag))
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// Cipher encrypts and decrypts secrets under a passphrase.
type Cipher struct {
	params Params
}

// NewCipher creates a Cipher with the given Argon2id parameters.
func NewCipher(params Params) *Cipher {
	return &Cipher{params: params}
}

// deriveKey stretches a passphrase into a 32-byte cipher key.
func (c *Cipher) deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(passphrase),
		salt,
		c.params.Iterations,
		c.params.Memory,
		c.params.Parallelism,
		chacha20poly1305.KeySize,
	)
}

// Encrypt seals plaintext under the passphrase with a fresh random salt and
// nonce. Salt and nonce are never reused across calls.
func (c *Cipher) Encrypt(plaintext, passphrase string) (Bundle, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return Bundle{}, fmt.Errorf("generate salt: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return Bundle{}, fmt.Errorf("generate nonce: %w", err)
	}

	key := c.deriveKey(passphrase, salt)
	aead, err := chacha20poly1305.New(key)
	zero(key)
	if err != nil {
		return Bundle{}, fmt.Errorf("create cipher: %w", err)
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	split := len(sealed) - chacha20poly1305.Overhead

	return Bundle{
		Ciphertext: hex.EncodeToString(sealed[:split]),
		Tag:        hex.EncodeToString(sealed[split:]),
		Salt:       hex.EncodeToString(salt),
		Nonce:      hex.EncodeToString(nonce),
	}, nil
}

// Decrypt re-derives the key from the stored salt, authenticates the bundle,
// and returns the plaintext. Any tag mismatch fails with ErrDecryptionFailed
// rather than returning garbage.
func (c *Cipher) Decrypt(b Bundle, passphrase string) (string, error) {
	ciphertext, err := hex.DecodeString(b.Ciphertext)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	tag, err := hex.DecodeString(b.Tag)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	salt, err := hex.DecodeString(b.Salt)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	nonce, err := hex.DecodeString(b.Nonce)
	if err != nil || len(nonce) != chacha20poly1305.NonceSize {
		return "", ErrDecryptionFailed
	}

	key := c.deriveKey(passphrase, salt)
	aead, err := chacha20poly1305.New(key)
	zero(key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// zero wipes key material from memory.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
