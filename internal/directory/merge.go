package directory

import (
	"sort"

	"github.com/nao1215/onionmonitor/internal/model"
)

// Merge combines an existing snapshot with freshly imported records.
// Records are keyed by name: an existing record always wins, so its status
// history survives a re-import, and the first incoming record wins among
// incoming duplicates. The result is sorted by title, then name.
func Merge(existing, incoming []model.Service) []model.Service {
	byName := make(map[string]model.Service, len(existing)+len(incoming))
	for _, s := range existing {
		byName[s.Name] = s
	}
	for _, s := range incoming {
		if _, ok := byName[s.Name]; !ok {
			byName[s.Name] = s
		}
	}

	merged := make([]model.Service, 0, len(byName))
	for _, s := range byName {
		merged = append(merged, s)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Title != merged[j].Title {
			return merged[i].Title < merged[j].Title
		}
		return merged[i].Name < merged[j].Name
	})
	return merged
}
