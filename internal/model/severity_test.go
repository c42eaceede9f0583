package model

import (
	"encoding/json"
	"testing"
)

// TestSeverityString tests the String method of Severity.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		severity Severity
		expected string
	}{
		{SeverityInfo, "INFO"},
		{SeverityLow, "LOW"},
		{SeverityMedium, "MEDIUM"},
		{SeverityHigh, "HIGH"},
		{Severity(999), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.severity.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.severity.String(), tc.expected)
			}
		})
	}
}

// TestSeverityOrdering tests that severity levels are ordered correctly.
// Info < Low < Medium < High
func TestSeverityOrdering(t *testing.T) {
	t.Parallel()

	if SeverityInfo >= SeverityLow || SeverityLow >= SeverityMedium || SeverityMedium >= SeverityHigh {
		t.Error("severity levels are not in ascending order")
	}
}

func TestSeverityMarshalJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(struct {
		Severity Severity `json:"severity"`
	}{Severity: SeverityMedium})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"severity":"MEDIUM"}` {
		t.Errorf("unexpected JSON: %s", data)
	}
}
