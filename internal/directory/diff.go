package directory

import (
	"github.com/nao1215/onionmonitor/internal/model"
)

// ChangeKind describes how a record differs between two snapshots.
type ChangeKind string

// Change kinds.
const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeStatus  ChangeKind = "status"
)

// Change is a single difference between two snapshots.
// From is empty for added records and To is empty for removed ones.
type Change struct {
	Name  string       `json:"name"`
	Title string       `json:"title"`
	Kind  ChangeKind   `json:"kind"`
	From  model.Status `json:"from,omitempty"`
	To    model.Status `json:"to,omitempty"`
}

// Diff lists the differences from older to newer, matching records by name.
// Status changes and additions follow newer's order; removals follow older's
// order and come last.
func Diff(older, newer []model.Service) []Change {
	before := make(map[string]model.Service, len(older))
	for _, s := range older {
		before[s.Name] = s
	}
	after := make(map[string]struct{}, len(newer))

	var changes []Change
	for _, s := range newer {
		after[s.Name] = struct{}{}
		prev, ok := before[s.Name]
		switch {
		case !ok:
			changes = append(changes, Change{Name: s.Name, Title: s.Title, Kind: ChangeAdded, To: s.Status})
		case prev.Status != s.Status:
			changes = append(changes, Change{Name: s.Name, Title: s.Title, Kind: ChangeStatus, From: prev.Status, To: s.Status})
		}
	}
	for _, s := range older {
		if _, ok := after[s.Name]; !ok {
			changes = append(changes, Change{Name: s.Name, Title: s.Title, Kind: ChangeRemoved, From: s.Status})
		}
	}
	return changes
}
