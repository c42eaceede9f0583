package tor

import (
	"encoding/base32"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Onion address constants.
const (
	// OnionV3Length is the length of a v3 address without the ".onion" suffix.
	OnionV3Length = 56

	// OnionV3Version is the version byte carried by every v3 address.
	OnionV3Version = 0x03

	// OnionV2Length is the length of a deprecated v2 address without the suffix.
	OnionV2Length = 16

	// OnionSuffix is the common suffix for all onion addresses.
	OnionSuffix = ".onion"

	// PublicKeySize is the size of an ed25519 public key.
	PublicKeySize = 32

	// decodedV3Length is pubkey (32) + checksum (2) + version (1).
	decodedV3Length = 35
)

// Onion address verification errors.
var (
	// ErrInvalidOnionAddress is returned when an address is not a v3 address.
	ErrInvalidOnionAddress = errors.New("invalid onion address")

	// ErrV2AddressDeprecated is returned when a v2 address is provided.
	// V2 addresses stopped working in October 2021.
	ErrV2AddressDeprecated = errors.New("v2 onion addresses are deprecated and no longer functional")

	// ErrUnsupportedVersion is returned when the version byte is not 0x03.
	ErrUnsupportedVersion = errors.New("unsupported onion address version")

	// ErrChecksumMismatch is returned when the embedded checksum does not
	// match the public key.
	ErrChecksumMismatch = errors.New("onion address checksum mismatch")

	// ErrInvalidPublicKey is returned for keys that are not 32 bytes.
	ErrInvalidPublicKey = errors.New("ed25519 public key must be 32 bytes")
)

var (
	onionV3Pattern        = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)
	onionV2Pattern        = regexp.MustCompile(`^[a-z2-7]{16}\.onion$`)
	onionV3ContentPattern = regexp.MustCompile(`[a-z2-7]{56}\.onion`)
	// onionV2ContentPattern also matches the tail of v3 addresses; callers
	// filter those out by position.
	onionV2ContentPattern = regexp.MustCompile(`[a-z2-7]{16}\.onion`)
)

// checksumPrefix is hashed in front of the key when computing a checksum.
var checksumPrefix = []byte(".onion checksum")

// VerifyV3Address decodes a v3 address and checks its version byte and
// checksum. The address must be lower case and carry the ".onion" suffix.
// It returns nil, ErrInvalidOnionAddress, ErrUnsupportedVersion or
// ErrChecksumMismatch.
func VerifyV3Address(address string) error {
	if !onionV3Pattern.MatchString(address) {
		return fmt.Errorf("%w: %q", ErrInvalidOnionAddress, address)
	}

	onionPart := strings.TrimSuffix(address, OnionSuffix)
	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(onionPart))
	if err != nil || len(decoded) != decodedV3Length {
		return fmt.Errorf("%w: %q", ErrInvalidOnionAddress, address)
	}

	pubkey := decoded[:PublicKeySize]
	checksum := decoded[PublicKeySize : PublicKeySize+2]
	version := decoded[PublicKeySize+2]

	if version != OnionV3Version {
		return fmt.Errorf("%w: %q has version %d", ErrUnsupportedVersion, address, version)
	}
	expected := computeV3Checksum(pubkey, version)
	if checksum[0] != expected[0] || checksum[1] != expected[1] {
		return fmt.Errorf("%w: %q", ErrChecksumMismatch, address)
	}
	return nil
}

// IsValidV3Address reports whether address passes VerifyV3Address.
func IsValidV3Address(address string) bool {
	return VerifyV3Address(address) == nil
}

// computeV3Checksum returns the first 2 bytes of
// SHA3-256(".onion checksum" || pubkey || version).
func computeV3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)

	hash := sha3.Sum256(data)
	return hash[:2]
}

// ComputeV3AddressFromPublicKey derives the v3 address of an ed25519 public key.
func ComputeV3AddressFromPublicKey(pubkey []byte) (string, error) {
	if len(pubkey) != PublicKeySize {
		return "", fmt.Errorf("%w: got %d bytes", ErrInvalidPublicKey, len(pubkey))
	}

	checksum := computeV3Checksum(pubkey, OnionV3Version)

	addressData := make([]byte, decodedV3Length)
	copy(addressData[:PublicKeySize], pubkey)
	copy(addressData[PublicKeySize:PublicKeySize+2], checksum)
	addressData[PublicKeySize+2] = OnionV3Version

	encoded := base32.StdEncoding.EncodeToString(addressData)
	return strings.ToLower(encoded) + OnionSuffix, nil
}

// IsV2Address reports whether address has the deprecated v2 form.
func IsV2Address(address string) bool {
	return onionV2Pattern.MatchString(strings.ToLower(address))
}

// NormalizeAddress turns user input such as "HTTP://ABC...XYZ.onion/path"
// into a bare lower-case v3 address and verifies it. A missing ".onion"
// suffix is added.
func NormalizeAddress(address string) (string, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	address = strings.TrimPrefix(address, "https://")
	address = strings.TrimPrefix(address, "http://")

	if idx := strings.IndexAny(address, "/?#:"); idx != -1 {
		address = address[:idx]
	}
	if !strings.HasSuffix(address, OnionSuffix) {
		address += OnionSuffix
	}

	if IsV2Address(address) {
		return "", fmt.Errorf("%w: %q", ErrV2AddressDeprecated, address)
	}
	if err := VerifyV3Address(address); err != nil {
		return "", err
	}
	return address, nil
}

// ExtractV3Addresses returns the distinct v3-shaped addresses in content,
// lower-cased, in order of first appearance.
func ExtractV3Addresses(content string) []string {
	return dedupe(onionV3ContentPattern.FindAllString(strings.ToLower(content), -1))
}

// ExtractV2Addresses returns the distinct v2 addresses in content that are
// not the tail of a v3 address.
func ExtractV2Addresses(content string) []string {
	content = strings.ToLower(content)

	var matches []string
	for _, idx := range onionV2ContentPattern.FindAllStringIndex(content, -1) {
		start := idx[0]
		if start > 0 && isBase32(content[start-1]) {
			continue
		}
		matches = append(matches, content[start:idx[1]])
	}
	return dedupe(matches)
}

func isBase32(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '2' && c <= '7')
}

func dedupe(matches []string) []string {
	seen := make(map[string]bool, len(matches))
	var result []string
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			result = append(result, m)
		}
	}
	return result
}
