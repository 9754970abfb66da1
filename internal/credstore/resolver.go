package credstore

import (
	"errors"
	"fmt"
	"os"

	"github.com/relayforge/relayforge-cli/internal/log"
	"github.com/relayforge/relayforge-cli/internal/secrets"
	"github.com/relayforge/relayforge-cli/pkg/keys"
)

// PassphraseEnv is the environment variable holding the passphrase that
// protects the stored key. Its absence simply disables the encrypted-storage
// path; it is never an error.
const PassphraseEnv = "RELAYFORGE_PASSPHRASE"

var (
	// ErrNoKeyAvailable means neither an explicit key nor a decryptable
	// stored key exists for this invocation.
	ErrNoKeyAvailable = errors.New("no private key available")

	// ErrInvalidStoredKey means a stored key bundle exists but cannot be
	// decrypted with the configured passphrase.
	ErrInvalidStoredKey = errors.New("stored key cannot be decrypted")
)

// Resolver decides which private key a command uses: an explicit key always
// wins, then the decrypted stored key, then failure. It fails closed on an
// undecryptable stored key instead of falling through, since a passphrase
// mismatch would otherwise surface as a confusing signature failure later.
type Resolver struct {
	store      *Store
	cipher     *secrets.Cipher
	passphrase string
}

// NewResolver creates a resolver with an explicit passphrase (tests).
func NewResolver(store *Store, cipher *secrets.Cipher, passphrase string) *Resolver {
	return &Resolver{store: store, cipher: cipher, passphrase: passphrase}
}

// ResolverFromEnv creates a resolver reading the passphrase from the
// process environment.
func ResolverFromEnv(store *Store) *Resolver {
	return NewResolver(store, secrets.NewCipher(secrets.DefaultParams()), os.Getenv(PassphraseEnv))
}

// Resolve returns the private key to use for this invocation. An explicit
// key is normalized and returned unvalidated; downstream callers own format
// validation.
func (r *Resolver) Resolve(explicit string) (string, error) {
	if explicit != "" {
		return keys.Normalize(explicit), nil
	}

	rec := r.store.Load()
	if r.passphrase != "" && rec.EncryptedKey != nil {
		plain, err := r.cipher.Decrypt(*rec.EncryptedKey, r.passphrase)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidStoredKey, err)
		}
		return keys.Normalize(plain), nil
	}

	return "", ErrNoKeyAvailable
}

// StoreIfRequested encrypts and persists the key when a passphrase is
// configured, replacing any previously stored bundle. Without a passphrase
// it is a no-op. This is the only path that writes a new encrypted bundle.
func (r *Resolver) StoreIfRequested(plaintextKey string) (bool, error) {
	if r.passphrase == "" {
		return false, nil
	}

	bundle, err := r.cipher.Encrypt(plaintextKey, r.passphrase)
	if err != nil {
		return false, fmt.Errorf("encrypt key: %w", err)
	}
	if _, err := r.store.Update(Partial{EncryptedKey: &bundle}); err != nil {
		return false, fmt.Errorf("persist key: %w", err)
	}

	log.Store.Debug().Str("fingerprint", bundle.Fingerprint()).Msg("stored encrypted key")
	return true, nil
}
