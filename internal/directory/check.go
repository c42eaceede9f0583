package directory

import (
	"strconv"

	"github.com/nao1215/onionmonitor/internal/model"
)

// IssueKind identifies a snapshot problem found by Check.
type IssueKind string

// Issue kinds.
const (
	IssueMissingTitle       IssueKind = "missing_title"
	IssueMissingName        IssueKind = "missing_name"
	IssueUnrecognizedStatus IssueKind = "unrecognized_status"
	IssueMalformedAddress   IssueKind = "malformed_address"
)

// Issue is a single problem with one record. Issues are warnings: an
// unrecognised status still renders as unknown, and a malformed address is
// still listed.
type Issue struct {
	Name    string    `json:"name"`
	Kind    IssueKind `json:"kind"`
	Message string    `json:"message"`
}

// Check inspects every record and returns the issues found, in record order.
// Duplicate names are not reported here because LoadSnapshot already rejects
// them.
func Check(services []model.Service) []Issue {
	var issues []Issue
	for _, s := range services {
		if s.Title == "" {
			issues = append(issues, Issue{Name: s.Name, Kind: IssueMissingTitle, Message: "title is empty"})
		}
		if s.Name == "" {
			issues = append(issues, Issue{Name: s.Title, Kind: IssueMissingName, Message: "name is empty"})
		}
		if !model.IsRecognized(s.Status) {
			issues = append(issues, Issue{
				Name:    s.Name,
				Kind:    IssueUnrecognizedStatus,
				Message: "status " + strconv.Quote(string(s.Status)) + " is treated as unknown",
			})
		}
		if err := model.ValidateOnionAddress(s.Host()); err != nil {
			issues = append(issues, Issue{Name: s.Name, Kind: IssueMalformedAddress, Message: err.Error()})
		}
	}
	return issues
}
