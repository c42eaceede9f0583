package model

import (
	"errors"
	"fmt"
	"strings"
)

// Onion address errors.
var (
	// ErrMalformedAddress is returned when an address fails any lexical check.
	ErrMalformedAddress = errors.New("malformed onion address")
	// ErrMissingOnionSuffix is returned when the address does not end in ".onion".
	ErrMissingOnionSuffix = errors.New("address does not end with .onion")
	// ErrInvalidAddressLength is returned when the address part is not 56 characters.
	ErrInvalidAddressLength = errors.New("address part must be 56 characters (v3)")
	// ErrInvalidAddressAlphabet is returned when the address part is not lower-case base32.
	ErrInvalidAddressAlphabet = errors.New("address part must only contain a-z and 2-7")
)

const (
	// OnionSuffix is the .onion TLD suffix.
	OnionSuffix = ".onion"
	// V3AddressLength is the length of a v3 address part (without .onion).
	V3AddressLength = 56
	// unknownStr is the string representation for unknown values.
	unknownStr = "unknown"
)

// HasOnionSuffix reports whether addr ends with the literal ".onion" suffix.
func HasOnionSuffix(addr string) bool {
	return strings.HasSuffix(addr, OnionSuffix)
}

// AddressPart returns addr with the ".onion" suffix removed.
// Subdomains are not split off, so "www.<v3>.onion" fails the later checks.
func AddressPart(addr string) string {
	return strings.TrimSuffix(addr, OnionSuffix)
}

// HasV3Length reports whether the address part is exactly 56 characters.
// The deprecated 16-character v2 form is rejected.
func HasV3Length(addr string) bool {
	return len(AddressPart(addr)) == V3AddressLength
}

// HasBase32Alphabet reports whether the address part is non-empty and made
// only of lower-case base32 characters (a-z, 2-7).
func HasBase32Alphabet(addr string) bool {
	part := AddressPart(addr)
	if part == "" {
		return false
	}
	return isValidBase32(part)
}

// isValidBase32 checks if a string contains only valid base32 characters.
func isValidBase32(s string) bool {
	for _, c := range s {
		isLowerLetter := c >= 'a' && c <= 'z'
		isBase32Digit := c >= '2' && c <= '7'
		if !isLowerLetter && !isBase32Digit {
			return false
		}
	}
	return true
}

// IsValidOnionAddress reports whether addr is a lexically valid v3 onion
// address: ".onion" suffix, 56-character address part, base32 alphabet.
// No normalisation is applied; upper-case input is invalid.
func IsValidOnionAddress(addr string) bool {
	return HasOnionSuffix(addr) && HasV3Length(addr) && HasBase32Alphabet(addr)
}

// ValidateOnionAddress runs every lexical check and returns nil or an error
// wrapping ErrMalformedAddress together with each failed reason.
func ValidateOnionAddress(addr string) error {
	var reasons []error
	if !HasOnionSuffix(addr) {
		reasons = append(reasons, ErrMissingOnionSuffix)
	}
	if !HasV3Length(addr) {
		reasons = append(reasons, ErrInvalidAddressLength)
	}
	if !HasBase32Alphabet(addr) {
		reasons = append(reasons, ErrInvalidAddressAlphabet)
	}
	if len(reasons) == 0 {
		return nil
	}
	return fmt.Errorf("%w %q: %w", ErrMalformedAddress, addr, errors.Join(reasons...))
}

// OnionAddress is an immutable, validated v3 onion address.
type OnionAddress struct {
	address string
}

// NewOnionAddress validates addr and wraps it in an OnionAddress.
func NewOnionAddress(addr string) (OnionAddress, error) {
	if err := ValidateOnionAddress(addr); err != nil {
		return OnionAddress{}, err
	}
	return OnionAddress{address: addr}, nil
}

// String returns the full address including the .onion suffix.
func (o OnionAddress) String() string {
	return o.address
}

// Base returns the address without the .onion suffix.
func (o OnionAddress) Base() string {
	return AddressPart(o.address)
}

// IsZero returns true if this is a zero value OnionAddress.
func (o OnionAddress) IsZero() bool {
	return o.address == ""
}

// URL returns the address as an origin with the given scheme, e.g.
// "http://<address>". An empty scheme defaults to http.
func (o OnionAddress) URL(scheme string) string {
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + o.address
}
