package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is the raw health string stored on a service record.
// Recognised values are "online", "offline", "unknown" and the
// "error-<code>" family. Any other value is treated as unknown.
type Status string

// Status literals.
const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusUnknown Status = "unknown"

	// errorPrefix starts every error status, e.g. "error-502".
	errorPrefix = "error-"
)

// ErrorStatus builds an error status for the given code, e.g. ErrorStatus("502")
// returns "error-502".
func ErrorStatus(code string) Status {
	return Status(errorPrefix + code)
}

// StatusKind is the display variant a status classifies into.
type StatusKind int

const (
	// KindUnknown covers "unknown" and every unrecognised string.
	KindUnknown StatusKind = iota
	// KindOnline is a service that answered its last check.
	KindOnline
	// KindOffline is a service that could not be reached.
	KindOffline
	// KindError is a service that answered with a server error code.
	KindError
)

// String returns the lower-case name of the kind.
func (k StatusKind) String() string {
	switch k {
	case KindOnline:
		return "online"
	case KindOffline:
		return "offline"
	case KindError:
		return "error"
	default:
		return unknownStr
	}
}

// Color is the badge color a status is rendered with.
type Color string

// Badge colors.
const (
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorGray   Color = "gray"
)

// DisplayClass is the classified form of a raw status.
// Code is only set for KindError.
type DisplayClass struct {
	Kind StatusKind
	Code string
}

// Classify maps a raw status onto its display class.
// "online" and "offline" match exactly, "error-<code>" matches by prefix
// with a non-empty code, and everything else is unknown.
func Classify(s Status) DisplayClass {
	switch {
	case s == StatusOnline:
		return DisplayClass{Kind: KindOnline}
	case s == StatusOffline:
		return DisplayClass{Kind: KindOffline}
	case strings.HasPrefix(string(s), errorPrefix) && len(s) > len(errorPrefix):
		return DisplayClass{Kind: KindError, Code: strings.TrimPrefix(string(s), errorPrefix)}
	default:
		return DisplayClass{Kind: KindUnknown}
	}
}

// Color returns the badge color of the class.
func (d DisplayClass) Color() Color {
	switch d.Kind {
	case KindOnline:
		return ColorGreen
	case KindOffline:
		return ColorRed
	case KindError:
		return ColorOrange
	default:
		return ColorGray
	}
}

// Label returns the human-readable label, e.g. "Online" or "Error 502".
func (d DisplayClass) Label() string {
	// A Caser keeps state, so one is built per call.
	label := cases.Title(language.English).String(d.Kind.String())
	if d.Kind == KindError {
		return label + " " + d.Code
	}
	return label
}

// ColorFor returns the badge color for a raw status.
func ColorFor(s Status) Color {
	return Classify(s).Color()
}

// LabelFor returns the display label for a raw status.
func LabelFor(s Status) string {
	return Classify(s).Label()
}

// IsRecognized reports whether s is one of the literal statuses or a
// well-formed error status. Unrecognised statuses still classify as unknown.
func IsRecognized(s Status) bool {
	if s == StatusUnknown {
		return true
	}
	return Classify(s).Kind != KindUnknown
}

// IsError reports whether s belongs to the error family.
func (s Status) IsError() bool {
	return Classify(s).Kind == KindError
}

// String returns the raw status.
func (s Status) String() string {
	return string(s)
}
