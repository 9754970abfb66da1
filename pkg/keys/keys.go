// Package keys provides secp256k1 key material for EOA identities:
// generation, hex normalization and validation, and EVM address derivation.
package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/sha3"
)

// ErrMalformedKey is returned when a string cannot be parsed as a
// 32-byte secp256k1 private key.
var ErrMalformedKey = errors.New("malformed private key")

// KeyPair holds a private key and the address derived from it.
// The private key is a 0x-prefixed 64-digit hex string and is never
// persisted in plaintext by this package.
type KeyPair struct {
	PrivateKey string
	Address    string
}

// Generate creates a new random secp256k1 private key and derives its address.
func Generate() (KeyPair, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate key: %w", err)
	}
	defer priv.Zero()

	hexKey := "0x" + hex.EncodeToString(priv.Serialize())
	addr, err := AddressOf(hexKey)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{PrivateKey: hexKey, Address: addr}, nil
}

// Normalize prepends a 0x prefix if absent. It performs no validation.
func Normalize(input string) string {
	if strings.HasPrefix(input, "0x") {
		return input
	}
	return "0x" + input
}

// IsValid reports whether input is a usable private key: after
// normalization it must be 0x followed by exactly 64 hex digits, and the
// scalar must be non-zero and below the curve order.
func IsValid(input string) bool {
	k := Normalize(input)
	if len(k) != 66 {
		return false
	}
	raw, err := hex.DecodeString(k[2:])
	if err != nil {
		return false
	}

	var scalar secp256k1.ModNScalar
	overflow := scalar.SetByteSlice(raw)
	defer scalar.Zero()
	if overflow || scalar.IsZero() {
		return false
	}
	return true
}

// AddressOf derives the EIP-55 checksummed address for a private key.
// The address is keccak-256 of the uncompressed public key (sans the
// 0x04 prefix byte), keeping the last 20 bytes.
func AddressOf(key string) (string, error) {
	priv, err := parseKey(key)
	if err != nil {
		return "", err
	}
	defer priv.Zero()

	pub := priv.PubKey().SerializeUncompressed()
	digest := keccak256(pub[1:])
	return checksumAddress(digest[12:]), nil
}

// parseKey validates and parses a private key string.
func parseKey(key string) (*secp256k1.PrivateKey, error) {
	if !IsValid(key) {
		return nil, ErrMalformedKey
	}
	raw, err := hex.DecodeString(Normalize(key)[2:])
	if err != nil {
		return nil, ErrMalformedKey
	}
	return secp256k1.PrivKeyFromBytes(raw), nil
}

// keccak256 computes the legacy Keccak-256 digest of the concatenated inputs.
func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// checksumAddress encodes a 20-byte address with EIP-55 mixed-case checksum.
func checksumAddress(addr []byte) string {
	lower := hex.EncodeToString(addr)
	digest := keccak256([]byte(lower))

	buf := []byte(lower)
	for i, c := range buf {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			buf[i] = c - ('a' - 'A')
		}
	}
	return "0x" + string(buf)
}
