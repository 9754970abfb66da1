package keys

import (
	"strings"
	"testing"
)

// testMnemonic is the standard development mnemonic whose first derived
// account matches the known key vector in keys_test.go.
const testMnemonic = "test test test test test test test test test test test junk"

func TestGenerateMnemonic(t *testing.T) {
	mnemonic, err := GenerateMnemonic()
	if err != nil {
		t.Fatalf("GenerateMnemonic() error: %v", err)
	}

	if words := len(strings.Fields(mnemonic)); words != 24 {
		t.Errorf("mnemonic has %d words, want 24", words)
	}
	if !ValidateMnemonic(mnemonic) {
		t.Error("generated mnemonic fails validation")
	}
}

func TestValidateMnemonic(t *testing.T) {
	if !ValidateMnemonic(testMnemonic) {
		t.Error("known-good mnemonic rejected")
	}
	if ValidateMnemonic("not a mnemonic at all") {
		t.Error("garbage mnemonic accepted")
	}
	if ValidateMnemonic("") {
		t.Error("empty mnemonic accepted")
	}
}

func TestFromMnemonic_KnownVector(t *testing.T) {
	kp, err := FromMnemonic(testMnemonic, "", 0)
	if err != nil {
		t.Fatalf("FromMnemonic() error: %v", err)
	}
	if kp.PrivateKey != knownKey {
		t.Errorf("derived key = %s, want %s", kp.PrivateKey, knownKey)
	}
	if kp.Address != knownAddress {
		t.Errorf("derived address = %s, want %s", kp.Address, knownAddress)
	}
}

func TestFromMnemonic_IndexesDiffer(t *testing.T) {
	first, err := FromMnemonic(testMnemonic, "", 0)
	if err != nil {
		t.Fatalf("FromMnemonic(0) error: %v", err)
	}
	second, err := FromMnemonic(testMnemonic, "", 1)
	if err != nil {
		t.Fatalf("FromMnemonic(1) error: %v", err)
	}
	if first.Address == second.Address {
		t.Error("different indexes derived the same address")
	}
}

func TestFromMnemonic_Invalid(t *testing.T) {
	if _, err := FromMnemonic("bogus words here", "", 0); err == nil {
		t.Error("FromMnemonic() accepted an invalid mnemonic")
	}
}
