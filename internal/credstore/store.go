// Package credstore manages the persisted credential record: the bearer
// session, environment selection, and the encrypted private-key bundle.
package credstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/relayforge/relayforge-cli/internal/log"
	"github.com/relayforge/relayforge-cli/internal/secrets"
)

// Environment selects which platform API the client talks to.
type Environment string

const (
	EnvProd Environment = "prod"
	EnvDev  Environment = "dev"
)

// API base URLs per environment.
const (
	prodAPIURL = "https://api.relayforge.io/rpc"
	devAPIURL  = "https://api.dev.relayforge.io/rpc"
)

// APIURL returns the platform API base URL for the environment.
// Unknown values fall back to production.
func (e Environment) APIURL() string {
	if e == EnvDev {
		return devAPIURL
	}
	return prodAPIURL
}

// Valid reports whether the environment names a known deployment.
func (e Environment) Valid() bool {
	return e == EnvProd || e == EnvDev
}

// Session is a bearer-token session obtained from the authentication
// endpoint. It is valid strictly before ExpiresAt.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ValidAt reports whether the session is usable at the given instant.
// The boundary instant itself counts as expired.
func (s *Session) ValidAt(now time.Time) bool {
	return s != nil && s.Token != "" && now.Before(s.ExpiresAt)
}

// Record is the full persisted credential state. It is the only mutable
// process-wide state; every mutation is a load-merge-persist of the whole
// record.
type Record struct {
	Session      *Session        `json:"session,omitempty"`
	Environment  Environment     `json:"environment"`
	APIURL       string          `json:"api_url,omitempty"`
	EncryptedKey *secrets.Bundle `json:"encrypted_key,omitempty"`
}

// Partial is a shallow partial update of a Record. Nil (or empty, for
// Environment) fields preserve the stored value; set fields replace it
// wholesale.
type Partial struct {
	Session      *Session
	Environment  Environment
	APIURL       *string
	EncryptedKey *secrets.Bundle
}

// Store reads and writes the credential record at a fixed path. There is no
// in-memory cache: every operation is a fresh load, and writes replace the
// whole file atomically. Concurrent invocations race last-writer-wins.
type Store struct {
	path string
}

// DefaultPath returns the per-user credential file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".relayforge", "credentials.json"), nil
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted record. A missing or unparseable file yields the
// default record rather than an error: corrupt state is treated as absent.
func (s *Store) Load() Record {
	rec := Record{Environment: EnvProd}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return rec
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Store.Warn().Str("path", s.path).Err(err).
			Msg("credential file unparseable, treating as absent")
		return Record{Environment: EnvProd}
	}
	if !rec.Environment.Valid() {
		rec.Environment = EnvProd
	}
	return rec
}

// Update applies a partial update with load-merge-persist semantics and
// returns the merged record.
func (s *Store) Update(p Partial) (Record, error) {
	rec := s.Load()

	if p.Session != nil {
		rec.Session = p.Session
	}
	if p.Environment != "" {
		rec.Environment = p.Environment
	}
	if p.APIURL != nil {
		rec.APIURL = *p.APIURL
	}
	if p.EncryptedKey != nil {
		rec.EncryptedKey = p.EncryptedKey
	}

	if err := s.persist(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// CurrentValidToken returns the stored bearer token only while it is valid;
// an expired token is indistinguishable from no token.
func (s *Store) CurrentValidToken() string {
	rec := s.Load()
	if !rec.Session.ValidAt(time.Now()) {
		return ""
	}
	return rec.Session.Token
}

// ClearSession removes the session fields, leaving environment, API URL
// override, and the encrypted key untouched.
func (s *Store) ClearSession() error {
	rec := s.Load()
	rec.Session = nil
	return s.persist(rec)
}

// persist writes the full record. The write goes through a temp file and
// rename so a concurrent or interrupted load never observes a partial write.
func (s *Store) persist(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}
