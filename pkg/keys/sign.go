package keys

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// messagePrefix is the EIP-191 personal-message domain separator.
const messagePrefix = "\x19Ethereum Signed Message:\n"

// SignatureSize is the length of a serialized recoverable signature
// (r || s || v, with v in {27, 28}).
const SignatureSize = 65

// SignMessage signs an EIP-191 personal message with the given private key
// and returns the 65-byte recoverable signature. The signature nonce is
// deterministic (RFC 6979), so signing the same message with the same key
// always yields the same bytes.
func SignMessage(key string, message []byte) ([]byte, error) {
	priv, err := parseKey(key)
	if err != nil {
		return nil, err
	}
	defer priv.Zero()

	compact := ecdsa.SignCompact(priv, messageDigest(message), false)

	// Compact form is [v || r || s]; the wire form is [r || s || v].
	sig := make([]byte, SignatureSize)
	copy(sig, compact[1:])
	sig[SignatureSize-1] = compact[0]
	return sig, nil
}

// RecoverAddress recovers the signer's address from an EIP-191 personal
// message and a 65-byte recoverable signature.
func RecoverAddress(message, sig []byte) (string, error) {
	if len(sig) != SignatureSize {
		return "", fmt.Errorf("signature must be %d bytes, got %d", SignatureSize, len(sig))
	}

	compact := make([]byte, SignatureSize)
	compact[0] = sig[SignatureSize-1]
	copy(compact[1:], sig[:SignatureSize-1])

	pub, _, err := ecdsa.RecoverCompact(compact, messageDigest(message))
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", err)
	}

	raw := pub.SerializeUncompressed()
	digest := keccak256(raw[1:])
	return checksumAddress(digest[12:]), nil
}

// SignatureHex encodes a signature as a 0x-prefixed hex string.
func SignatureHex(sig []byte) string {
	return "0x" + hex.EncodeToString(sig)
}

// messageDigest computes the EIP-191 digest of a personal message.
func messageDigest(message []byte) []byte {
	prefix := messagePrefix + strconv.Itoa(len(message))
	return keccak256([]byte(prefix), message)
}
