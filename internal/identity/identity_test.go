package identity

import (
	"os"
	"testing"
)

func TestValid(t *testing.T) {
	for _, ok := range []string{"000", "042", "999"} {
		if !Valid(ok) {
			t.Errorf("Valid(%q) = false, want true", ok)
		}
	}
	for _, bad := range []string{"", "1", "42", "1000", "abc", "04x", " 42"} {
		if Valid(bad) {
			t.Errorf("Valid(%q) = true, want false", bad)
		}
	}
}

func TestDeriveShape(t *testing.T) {
	id := Derive()
	if !Valid(id) {
		t.Errorf("Derive() = %q, not a 3-digit ID", id)
	}
}

func TestDeriveStableWithMachineID(t *testing.T) {
	if _, err := os.ReadFile(machineIDPath); err != nil {
		t.Skip("no machine id on this host; derivation is random")
	}
	if a, b := Derive(), Derive(); a != b {
		t.Errorf("Derive() not stable: %q then %q", a, b)
	}
}
