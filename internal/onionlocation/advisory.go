package onionlocation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nao1215/onionmonitor/internal/model"
	"github.com/nao1215/onionmonitor/internal/tor"
)

// checksumAdvisories reports literal onion addresses that Tor Browser would
// refuse: v3 addresses whose checksum or version does not verify, and
// deprecated v2 addresses.
func checksumAdvisories(text string) []Advisory {
	lower := strings.ToLower(text)

	var advisories []Advisory
	for _, addr := range tor.ExtractV3Addresses(text) {
		err := tor.VerifyV3Address(addr)
		if err == nil {
			continue
		}
		reason := "is not a valid v3 address"
		switch {
		case errors.Is(err, tor.ErrChecksumMismatch):
			reason = "has a checksum that does not match its key"
		case errors.Is(err, tor.ErrUnsupportedVersion):
			reason = "has an unsupported version byte"
		}
		advisories = append(advisories, Advisory{
			Severity: model.SeverityHigh,
			Line:     lineOf(lower, addr),
			Message:  fmt.Sprintf("onion address %s %s; Tor Browser will not load it", addr, reason),
		})
	}
	for _, addr := range tor.ExtractV2Addresses(text) {
		advisories = append(advisories, Advisory{
			Severity: model.SeverityHigh,
			Line:     lineOf(lower, addr),
			Message:  fmt.Sprintf("onion address %s is a v2 address; v2 services stopped working in 2021", addr),
		})
	}
	return advisories
}

// lineOf returns the 1-based line of the first occurrence of needle, or 0.
func lineOf(text, needle string) int {
	idx := strings.Index(text, needle)
	if idx < 0 {
		return 0
	}
	return strings.Count(text[:idx], "\n") + 1
}

// sortAdvisories orders advisories by severity (highest first), then line.
func sortAdvisories(advisories []Advisory) {
	sort.SliceStable(advisories, func(i, j int) bool {
		if advisories[i].Severity != advisories[j].Severity {
			return advisories[i].Severity > advisories[j].Severity
		}
		return advisories[i].Line < advisories[j].Line
	})
}
