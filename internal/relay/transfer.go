// Package relay submits token transfers through a relayed smart-wallet
// session on the platform API.
package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/relayforge/relayforge-cli/internal/api"
	"github.com/relayforge/relayforge-cli/internal/log"
	"github.com/relayforge/relayforge-cli/pkg/keys"
)

// Confirmation polling bounds. A transfer the relayer has not confirmed
// within ConfirmTimeout is reported as pending, not failed.
const (
	ConfirmTimeout = 30 * time.Second
	pollInterval   = 2 * time.Second
)

// ErrConfirmTimeout is returned when a submitted transfer is still pending
// after the confirmation window.
var ErrConfirmTimeout = errors.New("transfer not confirmed within timeout")

// Transfer describes one token transfer intent.
type Transfer struct {
	To      string `json:"to"`
	Token   string `json:"token"`
	Amount  string `json:"amount"`
	ChainID uint64 `json:"chainId"`
}

// Receipt is the relayer's view of a submitted transfer.
type Receipt struct {
	TransferID string `json:"transferId"`
	Status     string `json:"status"`
	TxHash     string `json:"txHash,omitempty"`
}

// Relayer drives the session/sign/submit flow.
type Relayer struct {
	api  *api.Client
	poll time.Duration
}

// New creates a relayer on the given API client.
func New(apiClient *api.Client) *Relayer {
	return &Relayer{api: apiClient, poll: pollInterval}
}

type sessionResult struct {
	SessionID string `json:"sessionId"`
	Challenge string `json:"challenge"`
}

type submitParams struct {
	SessionID string   `json:"sessionId"`
	Signature string   `json:"signature"`
	Transfer  Transfer `json:"transfer"`
}

// Submit opens a smart-wallet session for the key's address, signs the
// relayer's session challenge, and submits the transfer. It returns the
// relayer's initial receipt without waiting for confirmation.
func (r *Relayer) Submit(ctx context.Context, privateKey string, t Transfer) (Receipt, error) {
	address, err := keys.AddressOf(privateKey)
	if err != nil {
		return Receipt{}, err
	}

	var sess sessionResult
	err = r.api.Call(ctx, "relay_createSession", map[string]interface{}{
		"address": address,
		"chainId": t.ChainID,
	}, &sess)
	if err != nil {
		return Receipt{}, err
	}

	sig, err := keys.SignMessage(privateKey, []byte(sess.Challenge))
	if err != nil {
		return Receipt{}, fmt.Errorf("sign session challenge: %w", err)
	}

	var receipt Receipt
	err = r.api.Call(ctx, "relay_submitTransfer", submitParams{
		SessionID: sess.SessionID,
		Signature: keys.SignatureHex(sig),
		Transfer:  t,
	}, &receipt)
	if err != nil {
		return Receipt{}, err
	}

	log.Relay.Info().Str("transfer_id", receipt.TransferID).
		Str("from", address).Str("to", t.To).Msg("transfer submitted")
	return receipt, nil
}

// Wait polls for the transfer's receipt until it leaves the pending state or
// the confirmation window elapses.
func (r *Relayer) Wait(ctx context.Context, transferID string) (Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for {
		var receipt Receipt
		err := r.api.Call(ctx, "relay_getReceipt", map[string]string{"transferId": transferID}, &receipt)
		if err != nil {
			if ctx.Err() != nil {
				return Receipt{}, ErrConfirmTimeout
			}
			return Receipt{}, err
		}
		if receipt.Status != "" && receipt.Status != "pending" {
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return Receipt{}, ErrConfirmTimeout
		case <-ticker.C:
		}
	}
}
