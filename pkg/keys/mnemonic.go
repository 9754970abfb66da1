package keys

import (
	"encoding/hex"
	"fmt"

	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

// MnemonicEntropyBits is the entropy size for 24-word mnemonics.
const MnemonicEntropyBits = 256

// BIP-44 derivation path constants for EOA keys.
// Full path: m/44'/60'/0'/0/index
const (
	purposeBIP44 = bip32.FirstHardenedChild + 44
	coinTypeEth  = bip32.FirstHardenedChild + 60
	accountZero  = bip32.FirstHardenedChild
)

// GenerateMnemonic creates a new 24-word BIP-39 mnemonic.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(MnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// ValidateMnemonic checks if a mnemonic is valid per BIP-39
// (correct word count, valid words, valid checksum).
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// FromMnemonic derives the key pair at m/44'/60'/0'/0/index from a BIP-39
// mnemonic and optional passphrase. Derivation is deterministic: the same
// mnemonic, passphrase, and index always yield the same key pair.
func FromMnemonic(mnemonic, passphrase string, index uint32) (KeyPair, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return KeyPair{}, fmt.Errorf("derive seed: %w", err)
	}

	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return KeyPair{}, fmt.Errorf("create master key: %w", err)
	}

	child := master
	for _, idx := range []uint32{purposeBIP44, coinTypeEth, accountZero, 0, index} {
		child, err = child.NewChildKey(idx)
		if err != nil {
			return KeyPair{}, fmt.Errorf("derive child %d: %w", idx, err)
		}
	}

	// Left-pad to 32 bytes; bip32 scalars may serialize shorter.
	raw := make([]byte, 32)
	copy(raw[32-len(child.Key):], child.Key)

	hexKey := "0x" + hex.EncodeToString(raw)
	addr, err := AddressOf(hexKey)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{PrivateKey: hexKey, Address: addr}, nil
}
