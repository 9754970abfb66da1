package auth

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/relayforge/relayforge-cli/pkg/keys"
)

// proofDomain names the service the sign-in message is scoped to.
const proofDomain = "relayforge.io"

// proofPayload is the transportable ownership proof: the claimed address,
// the freshness claim, and the signature over the canonical message built
// from both. The server recovers the signer from the signature and checks
// it against the claimed address.
type proofPayload struct {
	Address   string `json:"address"`
	IssuedAt  string `json:"issuedAt"`
	Signature string `json:"signature"`
}

// canonicalMessage builds the sign-in message binding address and issue time.
func canonicalMessage(address, issuedAt string) string {
	return fmt.Sprintf("%s wants you to sign in with your account:\n%s\n\nIssued At: %s",
		proofDomain, address, issuedAt)
}

// BuildProof signs a canonical sign-in message with the private key and
// serializes signer + signature into a proof string. The proof is a
// deterministic function of the key and the issue instant.
func BuildProof(privateKey string, issuedAt time.Time) (string, error) {
	address, err := keys.AddressOf(privateKey)
	if err != nil {
		return "", fmt.Errorf("derive address: %w", err)
	}

	claim := issuedAt.UTC().Format(time.RFC3339)
	sig, err := keys.SignMessage(privateKey, []byte(canonicalMessage(address, claim)))
	if err != nil {
		return "", fmt.Errorf("sign proof: %w", err)
	}

	payload, err := json.Marshal(proofPayload{
		Address:   address,
		IssuedAt:  claim,
		Signature: keys.SignatureHex(sig),
	})
	if err != nil {
		return "", fmt.Errorf("encode proof: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(payload), nil
}

// VerifyProof decodes a proof string and checks that the signature recovers
// the claimed address. It returns the address on success. This mirrors the
// server-side check and backs the tests.
func VerifyProof(proof string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(proof)
	if err != nil {
		return "", fmt.Errorf("decode proof: %w", err)
	}

	var payload proofPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("parse proof: %w", err)
	}

	sig, err := hex.DecodeString(strings.TrimPrefix(payload.Signature, "0x"))
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}

	message := canonicalMessage(payload.Address, payload.IssuedAt)
	recovered, err := keys.RecoverAddress([]byte(message), sig)
	if err != nil {
		return "", fmt.Errorf("recover signer: %w", err)
	}
	if recovered != payload.Address {
		return "", fmt.Errorf("proof signer %s does not match claimed address %s", recovered, payload.Address)
	}
	return payload.Address, nil
}
