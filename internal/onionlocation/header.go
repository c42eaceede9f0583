package onionlocation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/onionmonitor/internal/model"
)

// Header value errors.
var (
	// ErrInvalidScheme is returned when the value does not start with
	// http:// or https://.
	ErrInvalidScheme = errors.New("Onion-Location value must start with http:// or https://")
	// ErrNotOnionDomain is returned when the host is not a .onion domain.
	ErrNotOnionDomain = errors.New("Onion-Location value must point to a .onion domain")
)

// ValidateHeaderValue checks a single emitted Onion-Location value, e.g.
// "http://<v3>.onion/path?query". It returns nil, ErrInvalidScheme,
// ErrNotOnionDomain, or an error wrapping model.ErrMalformedAddress.
func ValidateHeaderValue(value string) error {
	value = strings.TrimSpace(value)
	if _, ok := cutScheme(value); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidScheme, value)
	}

	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrNotOnionDomain, value, err)
	}
	host := u.Hostname()
	if !strings.HasSuffix(host, model.OnionSuffix) {
		return fmt.Errorf("%w: %q", ErrNotOnionDomain, host)
	}
	return model.ValidateOnionAddress(host)
}
