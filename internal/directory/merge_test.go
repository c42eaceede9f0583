package directory

import (
	"reflect"
	"testing"

	"github.com/nao1215/onionmonitor/internal/model"
)

func TestMerge(t *testing.T) {
	t.Parallel()

	existing := []model.Service{
		{Title: "Zeta", Name: "zeta", Status: model.StatusOnline, PrevStatus: model.StatusOffline},
		{Title: "Alpha", Name: "alpha", Status: model.ErrorStatus("503")},
	}
	incoming := []model.Service{
		{Title: "Zeta Renamed", Name: "zeta", Status: model.StatusUnknown},
		{Title: "Beta", Name: "beta", Status: model.StatusUnknown},
		{Title: "Beta Duplicate", Name: "beta", Status: model.StatusUnknown},
	}

	merged := Merge(existing, incoming)

	if got := names(merged); !reflect.DeepEqual(got, []string{"alpha", "beta", "zeta"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if merged[2].Title != "Zeta" || merged[2].Status != model.StatusOnline || merged[2].PrevStatus != model.StatusOffline {
		t.Errorf("existing record should win, got %+v", merged[2])
	}
	if merged[1].Title != "Beta" {
		t.Errorf("first incoming duplicate should win, got %q", merged[1].Title)
	}
}

func TestMergeTitleTie(t *testing.T) {
	t.Parallel()

	merged := Merge(nil, []model.Service{
		{Title: "Same", Name: "b"},
		{Title: "Same", Name: "a"},
	})
	if got := names(merged); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("expected name tie-break, got %v", got)
	}
}
