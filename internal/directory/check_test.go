package directory

import (
	"strings"
	"testing"

	"github.com/nao1215/onionmonitor/internal/model"
)

const testOnionV3 = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaam2dqd.onion"

func TestCheck(t *testing.T) {
	t.Parallel()

	services := []model.Service{
		{Title: "Good", Name: "good", OnionAddress: "http://" + testOnionV3, Status: model.StatusOnline},
		{Title: "Weird", Name: "weird", OnionAddress: "http://" + testOnionV3, Status: "flaky"},
		{Title: "Short", Name: "short", OnionAddress: "http://short.onion", Status: model.ErrorStatus("500")},
		{Title: "", Name: "untitled", OnionAddress: testOnionV3, Status: model.StatusUnknown},
	}

	issues := Check(services)

	want := []struct {
		name string
		kind IssueKind
	}{
		{"weird", IssueUnrecognizedStatus},
		{"short", IssueMalformedAddress},
		{"untitled", IssueMissingTitle},
	}
	if len(issues) != len(want) {
		t.Fatalf("expected %d issues, got %d: %+v", len(want), len(issues), issues)
	}
	for i, w := range want {
		if issues[i].Name != w.name || issues[i].Kind != w.kind {
			t.Errorf("issue %d = %+v, want %s/%s", i, issues[i], w.name, w.kind)
		}
		if issues[i].Message == "" {
			t.Errorf("issue %d has no message", i)
		}
	}
}

func TestCheckClean(t *testing.T) {
	t.Parallel()

	services := []model.Service{
		{Title: "Good", Name: "good", OnionAddress: "https://" + testOnionV3 + "/", Status: model.StatusOffline},
	}
	if issues := Check(services); len(issues) != 0 {
		t.Errorf("expected no issues, got %+v", issues)
	}
}

func TestCheckUpperCaseAddress(t *testing.T) {
	t.Parallel()

	services := []model.Service{
		{Title: "Shouting", Name: "shouting", OnionAddress: "http://" + strings.ToUpper(testOnionV3), Status: model.StatusOnline},
	}

	issues := Check(services)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %+v", issues)
	}
	if issues[0].Kind != IssueMalformedAddress || issues[0].Name != "shouting" {
		t.Errorf("unexpected issue: %+v", issues[0])
	}
}
