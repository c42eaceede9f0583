package model

// Severity represents how much an advisory matters for a deployment.
// Advisories never make a configuration non-compliant; severity only
// orders them for display.
type Severity int

const (
	// SeverityInfo is a note with no effect on the redirect itself.
	SeverityInfo Severity = iota

	// SeverityLow is a missing nicety, e.g. http2 not enabled.
	SeverityLow

	// SeverityMedium weakens the setup, e.g. no TLS listener on the clearnet site.
	SeverityMedium

	// SeverityHigh likely breaks the redirect, e.g. an onion address whose
	// checksum does not verify.
	SeverityHigh
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the severity by name so JSON reports stay readable.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
