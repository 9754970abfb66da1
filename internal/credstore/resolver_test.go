package credstore

import (
	"errors"
	"testing"

	"github.com/relayforge/relayforge-cli/internal/secrets"
)

func fastCipher() *secrets.Cipher {
	return secrets.NewCipher(secrets.Params{Memory: 64, Iterations: 1, Parallelism: 1})
}

const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestResolve_ExplicitKeyWins(t *testing.T) {
	s := tempStore(t)
	cipher := fastCipher()
	r := NewResolver(s, cipher, "passphrase")

	// A decryptable stored key exists, but the explicit key must win.
	if stored, err := r.StoreIfRequested("0x" + testKey); err != nil || !stored {
		t.Fatalf("StoreIfRequested() = %v, %v", stored, err)
	}

	explicit := "1111111111111111111111111111111111111111111111111111111111111111"
	got, err := r.Resolve(explicit)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != "0x"+explicit {
		t.Errorf("Resolve(explicit) = %q, want normalized explicit key", got)
	}
}

func TestResolve_StoredKey(t *testing.T) {
	s := tempStore(t)
	r := NewResolver(s, fastCipher(), "passphrase")

	if _, err := r.StoreIfRequested(testKey); err != nil {
		t.Fatalf("StoreIfRequested() error: %v", err)
	}

	got, err := r.Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != "0x"+testKey {
		t.Errorf("Resolve() = %q, want stored key normalized", got)
	}
}

func TestResolve_WrongPassphraseFailsClosed(t *testing.T) {
	s := tempStore(t)
	cipher := fastCipher()

	if _, err := NewResolver(s, cipher, "correct").StoreIfRequested(testKey); err != nil {
		t.Fatalf("StoreIfRequested() error: %v", err)
	}

	_, err := NewResolver(s, cipher, "wrong").Resolve("")
	if !errors.Is(err, ErrInvalidStoredKey) {
		t.Errorf("Resolve() error = %v, want ErrInvalidStoredKey", err)
	}
}

func TestResolve_NoKeyAvailable(t *testing.T) {
	s := tempStore(t)

	// Passphrase set but nothing stored.
	if _, err := NewResolver(s, fastCipher(), "passphrase").Resolve(""); !errors.Is(err, ErrNoKeyAvailable) {
		t.Errorf("Resolve() error = %v, want ErrNoKeyAvailable", err)
	}

	// Bundle stored but no passphrase configured.
	r := NewResolver(s, fastCipher(), "passphrase")
	if _, err := r.StoreIfRequested(testKey); err != nil {
		t.Fatalf("StoreIfRequested() error: %v", err)
	}
	if _, err := NewResolver(s, fastCipher(), "").Resolve(""); !errors.Is(err, ErrNoKeyAvailable) {
		t.Errorf("Resolve() without passphrase error = %v, want ErrNoKeyAvailable", err)
	}
}

func TestStoreIfRequested_NoPassphrase(t *testing.T) {
	s := tempStore(t)

	stored, err := NewResolver(s, fastCipher(), "").StoreIfRequested(testKey)
	if err != nil {
		t.Fatalf("StoreIfRequested() error: %v", err)
	}
	if stored {
		t.Error("StoreIfRequested() without passphrase should be a no-op")
	}
	if rec := s.Load(); rec.EncryptedKey != nil {
		t.Error("no-op StoreIfRequested() persisted a bundle")
	}
}

func TestStoreIfRequested_ReplacesBundle(t *testing.T) {
	s := tempStore(t)
	r := NewResolver(s, fastCipher(), "passphrase")

	if _, err := r.StoreIfRequested(testKey); err != nil {
		t.Fatalf("StoreIfRequested() error: %v", err)
	}
	first := s.Load().EncryptedKey.Fingerprint()

	other := "1111111111111111111111111111111111111111111111111111111111111111"
	if _, err := r.StoreIfRequested(other); err != nil {
		t.Fatalf("StoreIfRequested() error: %v", err)
	}
	second := s.Load().EncryptedKey.Fingerprint()

	if first == second {
		t.Error("storing a new key did not replace the old bundle")
	}

	got, err := r.Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != "0x"+other {
		t.Errorf("Resolve() = %q, want latest stored key", got)
	}
}
