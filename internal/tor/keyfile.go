package tor

import (
	"bytes"
	"errors"
	"fmt"
	"os"
)

// publicKeyHeader starts the hs_ed25519_public_key file written by tor.
// The header is padded with NUL bytes to 32 bytes.
const publicKeyHeader = "== ed25519v1-public: type0 =="

// keyFileHeaderSize is the padded header size.
const keyFileHeaderSize = 32

// ErrInvalidKeyFile is returned when a file is not an hs_ed25519_public_key.
var ErrInvalidKeyFile = errors.New("not a tor hs_ed25519_public_key file")

// ParsePublicKeyFile extracts the ed25519 public key from the contents of
// an hs_ed25519_public_key file.
func ParsePublicKeyFile(data []byte) ([]byte, error) {
	if len(data) != keyFileHeaderSize+PublicKeySize {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidKeyFile, len(data))
	}
	if !bytes.HasPrefix(data, []byte(publicKeyHeader)) {
		return nil, fmt.Errorf("%w: bad header", ErrInvalidKeyFile)
	}
	return bytes.Clone(data[keyFileHeaderSize:]), nil
}

// AddressFromKeyFile reads an hs_ed25519_public_key file and returns the
// v3 address it belongs to.
func AddressFromKeyFile(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the user
	if err != nil {
		return "", fmt.Errorf("failed to read key file: %w", err)
	}
	pubkey, err := ParsePublicKeyFile(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return ComputeV3AddressFromPublicKey(pubkey)
}

// PublicKeyFile returns the contents of an hs_ed25519_public_key file for
// pubkey. It is the inverse of ParsePublicKeyFile.
func PublicKeyFile(pubkey []byte) ([]byte, error) {
	if len(pubkey) != PublicKeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidPublicKey, len(pubkey))
	}
	data := make([]byte, keyFileHeaderSize, keyFileHeaderSize+PublicKeySize)
	copy(data, publicKeyHeader)
	return append(data, pubkey...), nil
}
