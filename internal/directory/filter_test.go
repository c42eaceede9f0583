package directory

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nao1215/onionmonitor/internal/model"
)

// testServices returns a small snapshot covering every status family.
func testServices() []model.Service {
	return []model.Service{
		{
			Title:       "Blockscout Explorer",
			Name:        "blockscout",
			Status:      model.StatusOnline,
			Category:    model.StringPtr("Explorer"),
			Description: model.StringPtr("Block explorer for EVM chains"),
			Tags:        []string{"ethereum", "explorer"},
		},
		{
			Title:    "Wallet Connect",
			Name:     "wallet-connect",
			Status:   model.StatusOffline,
			Category: model.StringPtr("Wallet"),
		},
		{
			Title:  "Mystery Node",
			Name:   "mystery-node",
			Status: model.StatusUnknown,
		},
		{
			Title:       "Relay Gateway",
			Name:        "relay-gateway",
			Status:      model.ErrorStatus("502"),
			Description: model.StringPtr("RPC gateway"),
			Tags:        []string{"rpc"},
		},
		{
			Title:  "Archive",
			Name:   "archive",
			Status: model.StatusOnline,
			Tags:   []string{"History"},
		},
	}
}

// names extracts record names for order-sensitive comparisons.
func names(services []model.Service) []string {
	result := make([]string, len(services))
	for i, s := range services {
		result[i] = s.Name
	}
	return result
}

func TestFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		tag   FilterTag
		want  []string
	}{
		{
			name:  "empty query and all shows everything in order",
			query: "",
			tag:   FilterAll,
			want:  []string{"blockscout", "wallet-connect", "mystery-node", "relay-gateway", "archive"},
		},
		{
			name:  "online only",
			query: "",
			tag:   FilterOnline,
			want:  []string{"blockscout", "archive"},
		},
		{
			name:  "offline only",
			query: "",
			tag:   FilterOffline,
			want:  []string{"wallet-connect"},
		},
		{
			name:  "unknown excludes error statuses",
			query: "",
			tag:   FilterUnknown,
			want:  []string{"mystery-node"},
		},
		{
			name:  "title match is case-insensitive",
			query: "WALLET",
			tag:   FilterAll,
			want:  []string{"wallet-connect"},
		},
		{
			name:  "name match",
			query: "mystery-",
			tag:   FilterAll,
			want:  []string{"mystery-node"},
		},
		{
			name:  "description match",
			query: "evm",
			tag:   FilterAll,
			want:  []string{"blockscout"},
		},
		{
			name:  "category match",
			query: "explorer",
			tag:   FilterAll,
			want:  []string{"blockscout"},
		},
		{
			name:  "tag match",
			query: "history",
			tag:   FilterAll,
			want:  []string{"archive"},
		},
		{
			name:  "search and status are combined",
			query: "rpc",
			tag:   FilterOnline,
			want:  []string{},
		},
		{
			name:  "error status is visible under all",
			query: "rpc",
			tag:   FilterAll,
			want:  []string{"relay-gateway"},
		},
		{
			name:  "no match",
			query: "zzz",
			tag:   FilterAll,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := names(Filter(testServices(), tt.query, tt.tag))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter(%q, %q) = %v, want %v", tt.query, tt.tag, got, tt.want)
			}
		})
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	t.Parallel()

	services := testServices()
	for _, tag := range FilterTags {
		for _, query := range []string{"", "e", "wallet", "rpc"} {
			once := Filter(services, query, tag)
			twice := Filter(once, query, tag)
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("filter not idempotent for (%q, %q)", query, tag)
			}
			again := Filter(services, query, tag)
			if !reflect.DeepEqual(once, again) {
				t.Errorf("filter not deterministic for (%q, %q)", query, tag)
			}
		}
	}
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	t.Parallel()

	services := testServices()
	before := names(services)
	_ = Filter(services, "wallet", FilterOffline)
	if !reflect.DeepEqual(before, names(services)) {
		t.Error("input slice was modified")
	}
}

func TestSearchMonotonicity(t *testing.T) {
	t.Parallel()

	services := testServices()
	for _, tag := range FilterTags {
		full := "explorer"
		prev := len(Filter(services, "", tag))
		for i := 1; i <= len(full); i++ {
			n := len(Filter(services, full[:i], tag))
			if n > prev {
				t.Errorf("query %q under %q grew the result from %d to %d", full[:i], tag, prev, n)
			}
			prev = n
		}
	}
}

// Error statuses have no bucket of their own, so they disappear under every
// filter except "all". This asymmetry is intentional.
func TestErrorStatusOnlyVisibleUnderAll(t *testing.T) {
	t.Parallel()

	services := testServices()
	for _, tag := range []FilterTag{FilterOnline, FilterOffline, FilterUnknown} {
		for _, s := range Filter(services, "", tag) {
			if s.Status.IsError() {
				t.Errorf("error status %q visible under %q", s.Status, tag)
			}
		}
	}

	found := false
	for _, s := range Filter(services, "", FilterAll) {
		if s.Status.IsError() {
			found = true
		}
	}
	if !found {
		t.Error("expected error status under all")
	}
}

func TestMatchesSearchAbsentFields(t *testing.T) {
	t.Parallel()

	empty := ""
	s := model.Service{Title: "Title", Name: "name", Description: &empty, Category: nil}
	if MatchesSearch(s, "desc") {
		t.Error("absent description should not match")
	}
	if !MatchesSearch(s, "") {
		t.Error("empty query should match")
	}
	if !MatchesSearch(s, "TIT") {
		t.Error("expected title match")
	}
}

func TestCounts(t *testing.T) {
	t.Parallel()

	services := testServices()
	counts := Counts(services)

	want := map[FilterTag]int{
		FilterAll:     5,
		FilterOnline:  2,
		FilterOffline: 1,
		FilterUnknown: 1,
	}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("Counts() = %v, want %v", counts, want)
	}

	errorsCount := 0
	for _, s := range services {
		if s.Status.IsError() {
			errorsCount++
		}
	}
	sum := counts[FilterOnline] + counts[FilterOffline] + counts[FilterUnknown] + errorsCount
	if sum != len(services) || counts[FilterAll] != len(services) {
		t.Errorf("counts invariant broken: sum=%d total=%d all=%d", sum, len(services), counts[FilterAll])
	}
}

func TestCountsIgnoresUnrecognizedStatuses(t *testing.T) {
	t.Parallel()

	services := []model.Service{
		{Name: "a", Status: "weird"},
		{Name: "b", Status: "all"},
		{Name: "c", Status: model.StatusOnline},
	}
	counts := Counts(services)
	if counts[FilterAll] != 3 || counts[FilterOnline] != 1 || counts[FilterUnknown] != 0 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestCountsEmpty(t *testing.T) {
	t.Parallel()

	counts := Counts(nil)
	for _, tag := range FilterTags {
		if counts[tag] != 0 {
			t.Errorf("expected zero for %q, got %d", tag, counts[tag])
		}
	}
	if got := Filter(nil, "x", FilterAll); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestParseFilterTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    FilterTag
		wantErr bool
	}{
		{input: "", want: FilterAll},
		{input: "all", want: FilterAll},
		{input: "Online", want: FilterOnline},
		{input: " offline ", want: FilterOffline},
		{input: "unknown", want: FilterUnknown},
		{input: "error", wantErr: true},
		{input: "error-502", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFilterTag(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFilterTag) {
					t.Errorf("expected ErrUnknownFilterTag, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewView(t *testing.T) {
	t.Parallel()

	view := NewView(testServices(), "wallet", FilterAll)
	if len(view.Services) != 1 {
		t.Errorf("expected one visible service, got %d", len(view.Services))
	}
	if view.Counts[FilterAll] != 5 {
		t.Errorf("counts must describe the whole collection, got %v", view.Counts)
	}
	if view.Query != "wallet" || view.Filter != FilterAll {
		t.Errorf("unexpected view state %+v", view)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	services := append(testServices(), model.Service{Name: "odd", Status: "weird"})
	got := Summarize(services)
	want := Summary{Online: 2, Offline: 1, Errors: 1, Unknown: 2, Total: 6}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}
