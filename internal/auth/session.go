// Package auth exchanges a signed ownership proof for a bearer session and
// records it in the credential store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/relayforge/relayforge-cli/internal/api"
	"github.com/relayforge/relayforge-cli/internal/credstore"
	"github.com/relayforge/relayforge-cli/internal/log"
	"github.com/relayforge/relayforge-cli/pkg/keys"
)

// ErrInvalidKeyFormat is returned when the supplied private key does not
// parse as a 32-byte secp256k1 scalar.
var ErrInvalidKeyFormat = errors.New("invalid private key format")

// loginParams is the authentication exchange request.
type loginParams struct {
	Proof string `json:"proof"`
	Email string `json:"email,omitempty"`
}

// loginResult is the authentication exchange response.
type loginResult struct {
	OK   bool `json:"ok"`
	Auth struct {
		BearerToken string    `json:"bearerToken"`
		ExpiresAt   time.Time `json:"expiresAt"`
		Address     string    `json:"address,omitempty"`
	} `json:"auth"`
}

// Authenticator runs the login flow against the authentication endpoint and
// owns the recorded session's lifecycle.
type Authenticator struct {
	client *api.Client
	store  *credstore.Store
	env    credstore.Environment
	now    func() time.Time
}

// New creates an authenticator bound to a client, store, and environment.
func New(client *api.Client, store *credstore.Store, env credstore.Environment) *Authenticator {
	return &Authenticator{client: client, store: store, env: env, now: time.Now}
}

// Authenticate validates the key, builds a signed ownership proof, exchanges
// it for a bearer session, and persists the session. A malformed key or a
// failed exchange is terminal for the calling command; classified API errors
// propagate unchanged so the caller can decide on backoff.
func (a *Authenticator) Authenticate(ctx context.Context, privateKey, email string) (credstore.Session, error) {
	if !keys.IsValid(privateKey) {
		return credstore.Session{}, ErrInvalidKeyFormat
	}
	key := keys.Normalize(privateKey)

	proof, err := BuildProof(key, a.now())
	if err != nil {
		return credstore.Session{}, err
	}

	var res loginResult
	if err := a.client.Call(ctx, "auth_login", loginParams{Proof: proof, Email: email}, &res); err != nil {
		return credstore.Session{}, err
	}
	if !res.OK || res.Auth.BearerToken == "" {
		return credstore.Session{}, fmt.Errorf("authentication rejected by server")
	}

	sess := credstore.Session{Token: res.Auth.BearerToken, ExpiresAt: res.Auth.ExpiresAt}
	if _, err := a.store.Update(credstore.Partial{Session: &sess, Environment: a.env}); err != nil {
		return credstore.Session{}, fmt.Errorf("record session: %w", err)
	}

	log.Auth.Info().Str("address", res.Auth.Address).
		Time("expires_at", sess.ExpiresAt).Msg("authenticated")
	return sess, nil
}

// IsLoggedIn reports whether a currently valid session exists. It is a pure
// read and never refreshes or re-authenticates.
func (a *Authenticator) IsLoggedIn() bool {
	return a.store.CurrentValidToken() != ""
}

// Logout clears the recorded session, leaving the rest of the credential
// record intact.
func (a *Authenticator) Logout() error {
	return a.store.ClearSession()
}
