package keys

import (
	"strings"
	"testing"
)

// Well-known development key and its address.
const (
	knownKey     = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	knownAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cfFFb92266"
)

func TestAddressOf_KnownVector(t *testing.T) {
	for _, input := range []string{knownKey, strings.TrimPrefix(knownKey, "0x")} {
		addr, err := AddressOf(input)
		if err != nil {
			t.Fatalf("AddressOf(%q) error: %v", input, err)
		}
		if addr != knownAddress {
			t.Errorf("AddressOf(%q) = %s, want %s", input, addr, knownAddress)
		}
	}
}

func TestAddressOf_Deterministic(t *testing.T) {
	first, err := AddressOf(knownKey)
	if err != nil {
		t.Fatalf("AddressOf() error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := AddressOf(knownKey)
		if err != nil {
			t.Fatalf("AddressOf() error: %v", err)
		}
		if again != first {
			t.Fatalf("AddressOf() not deterministic: %s != %s", again, first)
		}
	}
}

func TestAddressOf_MalformedKey(t *testing.T) {
	if _, err := AddressOf("0xzz"); err != ErrMalformedKey {
		t.Errorf("AddressOf(garbage) error = %v, want ErrMalformedKey", err)
	}
}

func TestNormalize(t *testing.T) {
	bare := strings.TrimPrefix(knownKey, "0x")
	if got := Normalize(bare); got != knownKey {
		t.Errorf("Normalize(%q) = %q, want %q", bare, got, knownKey)
	}
	if got := Normalize(knownKey); got != knownKey {
		t.Errorf("Normalize(prefixed) = %q, want unchanged", got)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"prefixed", knownKey, true},
		{"unprefixed", strings.TrimPrefix(knownKey, "0x"), true},
		{"empty", "", false},
		{"too short", "0xabcd", false},
		{"too long", knownKey + "00", false},
		{"non-hex", "0x" + strings.Repeat("zz", 32), false},
		{"zero scalar", "0x" + strings.Repeat("00", 32), false},
		{"above curve order", "0x" + strings.Repeat("ff", 32), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.input); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	kp, err := Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if !IsValid(kp.PrivateKey) {
		t.Errorf("generated key %q is not valid", kp.PrivateKey)
	}

	addr, err := AddressOf(kp.PrivateKey)
	if err != nil {
		t.Fatalf("AddressOf() error: %v", err)
	}
	if addr != kp.Address {
		t.Errorf("AddressOf() = %s, want %s", addr, kp.Address)
	}
}

func TestGenerate_NoCollisions(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		kp, err := Generate()
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		if seen[kp.PrivateKey] {
			t.Fatalf("Generate() produced duplicate key after %d calls", i)
		}
		seen[kp.PrivateKey] = true
	}
}

func TestSignMessage_RecoverRoundtrip(t *testing.T) {
	message := []byte("prove ownership of this account")

	sig, err := SignMessage(knownKey, message)
	if err != nil {
		t.Fatalf("SignMessage() error: %v", err)
	}
	if len(sig) != SignatureSize {
		t.Fatalf("signature length = %d, want %d", len(sig), SignatureSize)
	}

	addr, err := RecoverAddress(message, sig)
	if err != nil {
		t.Fatalf("RecoverAddress() error: %v", err)
	}
	if addr != knownAddress {
		t.Errorf("recovered address = %s, want %s", addr, knownAddress)
	}
}

func TestSignMessage_Deterministic(t *testing.T) {
	message := []byte("same input, same signature")

	first, err := SignMessage(knownKey, message)
	if err != nil {
		t.Fatalf("SignMessage() error: %v", err)
	}
	second, err := SignMessage(knownKey, message)
	if err != nil {
		t.Fatalf("SignMessage() error: %v", err)
	}
	if SignatureHex(first) != SignatureHex(second) {
		t.Error("signatures over the same message differ")
	}
}

func TestRecoverAddress_WrongMessage(t *testing.T) {
	sig, err := SignMessage(knownKey, []byte("original"))
	if err != nil {
		t.Fatalf("SignMessage() error: %v", err)
	}

	addr, err := RecoverAddress([]byte("tampered"), sig)
	if err == nil && addr == knownAddress {
		t.Error("tampered message recovered the signer's address")
	}
}
