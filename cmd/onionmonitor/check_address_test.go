package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/onionmonitor/internal/model"
	"github.com/nao1215/onionmonitor/internal/report"
	"github.com/nao1215/onionmonitor/internal/tor"
)

// badChecksumOnion is lexically valid but its checksum does not verify.
const badChecksumOnion = "baaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaam2dqd.onion"

func TestCheckAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		addr     string
		strict   bool
		valid    bool
		checksum string
		reasons  []error
	}{
		{name: "valid", addr: testOnion, valid: true},
		{name: "valid strict", addr: testOnion, strict: true, valid: true, checksum: "ok"},
		{name: "checksum ignored without strict", addr: badChecksumOnion, valid: true},
		{name: "checksum mismatch", addr: badChecksumOnion, strict: true, checksum: "mismatch", reasons: []error{tor.ErrChecksumMismatch}},
		{name: "upper case", addr: strings.ToUpper(testOnion), reasons: []error{model.ErrMissingOnionSuffix, model.ErrInvalidAddressLength, model.ErrInvalidAddressAlphabet}},
		{name: "clearnet", addr: "example.com", reasons: []error{model.ErrMissingOnionSuffix, model.ErrInvalidAddressLength, model.ErrInvalidAddressAlphabet}},
		{name: "v2", addr: "expyuzz4wqqyqhjn.onion", reasons: []error{model.ErrInvalidAddressLength, tor.ErrV2AddressDeprecated}},
		{name: "with scheme", addr: "http://" + testOnion, reasons: []error{model.ErrInvalidAddressLength, model.ErrInvalidAddressAlphabet}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := checkAddress(tt.addr, tt.strict)
			if got.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v (reasons %v)", got.Valid, tt.valid, got.Reasons)
			}
			if got.Checksum != tt.checksum {
				t.Errorf("Checksum = %q, want %q", got.Checksum, tt.checksum)
			}
			if len(got.Reasons) != len(tt.reasons) {
				t.Fatalf("Reasons = %v, want %v", got.Reasons, tt.reasons)
			}
			for i, want := range tt.reasons {
				if got.Reasons[i] != want.Error() {
					t.Errorf("Reasons[%d] = %q, want %q", i, got.Reasons[i], want.Error())
				}
			}
		})
	}
}

func TestCheckAddressCmd(t *testing.T) {
	t.Parallel()

	t.Run("valid addresses succeed", func(t *testing.T) {
		t.Parallel()

		out, _, err := runRoot(t, "check-address", "--strict", testOnion)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, testOnion+": valid (checksum ok)") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("any invalid address fails", func(t *testing.T) {
		t.Parallel()

		out, _, err := runRoot(t, "check-address", "--json", testOnion, "example.com")
		if !errors.Is(err, model.ErrMalformedAddress) {
			t.Fatalf("expected ErrMalformedAddress, got %v", err)
		}
		var checks []report.AddressCheck
		if err := json.Unmarshal([]byte(out), &checks); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if len(checks) != 2 || !checks[0].Valid || checks[1].Valid {
			t.Errorf("checks = %+v", checks)
		}
	})

	t.Run("requires an address", func(t *testing.T) {
		t.Parallel()

		if _, _, err := runRoot(t, "check-address"); err == nil {
			t.Error("expected error without arguments")
		}
	})

	t.Run("key file", func(t *testing.T) {
		t.Parallel()

		data, err := tor.PublicKeyFile(make([]byte, tor.PublicKeySize))
		if err != nil {
			t.Fatalf("PublicKeyFile() error = %v", err)
		}
		keyFile := filepath.Join(t.TempDir(), "hs_ed25519_public_key")
		if err := os.WriteFile(keyFile, data, 0600); err != nil {
			t.Fatalf("failed to write key file: %v", err)
		}

		out, _, err := runRoot(t, "check-address", "--key-file", keyFile, testOnion)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(out, testOnion+": valid") != 2 {
			t.Errorf("expected derived and given address to be valid:\n%s", out)
		}

		out, _, err = runRoot(t, "check-address", "--key-file", keyFile, badChecksumOnion)
		if !errors.Is(err, model.ErrMalformedAddress) {
			t.Fatalf("expected ErrMalformedAddress, got %v", err)
		}
		if !strings.Contains(out, "does not match key file") {
			t.Errorf("expected mismatch reason:\n%s", out)
		}
	})

	t.Run("bad key file", func(t *testing.T) {
		t.Parallel()

		keyFile := writeFile(t, t.TempDir(), "hs_ed25519_public_key", "not a key")
		_, _, err := runRoot(t, "check-address", "--key-file", keyFile)
		if !errors.Is(err, tor.ErrInvalidKeyFile) {
			t.Errorf("expected ErrInvalidKeyFile, got %v", err)
		}
	})
}
