package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/onionmonitor/internal/onionlocation"
)

const compliantNginx = `server {
    listen 443 ssl http2;
    server_name example.com;
    set $onion_address http://` + testOnion + `;
    add_header Onion-Location $onion_address$request_uri always;
}
`

const compliantApache = `Define ONION_ADDRESS http://` + testOnion + `
Header always set Onion-Location "${ONION_ADDRESS}%{REQUEST_URI}s"
`

func TestCheckConfigCmd(t *testing.T) {
	t.Parallel()

	t.Run("compliant nginx configuration", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "nginx/site.conf", compliantNginx)
		out, _, err := runRoot(t, "check-config", path)
		if err != nil {
			t.Fatalf("unexpected error: %v\n%s", err, out)
		}
		if !strings.Contains(out, "Result: compliant") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("missing always fails", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "nginx.conf", strings.Replace(compliantNginx, " always;", ";", 1))
		out, _, err := runRoot(t, "check-config", path)
		if !errors.Is(err, onionlocation.ErrNonCompliant) {
			t.Fatalf("expected ErrNonCompliant, got %v", err)
		}
		if !strings.Contains(err.Error(), "failed always") {
			t.Errorf("expected only always to fail, got %v", err)
		}
		if !strings.Contains(out, "Result: NOT compliant") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("dialect flag overrides detection", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "site.conf", compliantApache)
		if _, _, err := runRoot(t, "check-config", "--dialect", "apache", path); err != nil {
			t.Errorf("apache: unexpected error: %v", err)
		}
		if _, _, err := runRoot(t, "check-config", "--dialect", "nginx", path); !errors.Is(err, onionlocation.ErrNonCompliant) {
			t.Errorf("nginx: expected ErrNonCompliant, got %v", err)
		}
	})

	t.Run("unknown dialect", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "site.conf", compliantNginx)
		if _, _, err := runRoot(t, "check-config", "--dialect", "caddy", path); err == nil {
			t.Error("expected error for unknown dialect")
		}
	})

	t.Run("markdown guide", func(t *testing.T) {
		t.Parallel()

		doc := "# Setup\n\n```nginx\n" + compliantNginx + "```\n\n```sh\nnginx -s reload\n```\n"
		path := writeFile(t, t.TempDir(), "guide.md", doc)
		out, _, err := runRoot(t, "check-config", "--json", path)
		if err != nil {
			t.Fatalf("unexpected error: %v\n%s", err, out)
		}
		var got struct {
			OK      bool                    `json:"ok"`
			Results []*onionlocation.Result `json:"results"`
		}
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if !got.OK || len(got.Results) != 1 || got.Results[0].Dialect != "nginx" {
			t.Errorf("unexpected result: %+v", got)
		}
		// The directive is on line 8 of the document.
		if d := got.Results[0].Directives; len(d) != 1 || d[0].Line != 8 {
			t.Errorf("directives = %+v, want one on line 8", d)
		}
	})

	t.Run("markdown without examples", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "README.md", "# Nothing here\n")
		_, _, err := runRoot(t, "check-config", path)
		if !errors.Is(err, onionlocation.ErrNonCompliant) {
			t.Errorf("expected ErrNonCompliant, got %v", err)
		}
	})

	t.Run("html meta tags", func(t *testing.T) {
		t.Parallel()

		valid := `<html><head><meta http-equiv="Onion-Location" content="http://` + testOnion + `/"></head></html>`
		path := writeFile(t, t.TempDir(), "index.html", valid)
		if _, _, err := runRoot(t, "check-config", path); err != nil {
			t.Errorf("unexpected error: %v", err)
		}

		invalid := `<html><head><meta http-equiv="onion-location" content="https://example.com/"></head></html>`
		path = writeFile(t, t.TempDir(), "index.htm", invalid)
		_, _, err := runRoot(t, "check-config", path)
		if !errors.Is(err, onionlocation.ErrNonCompliant) || !errors.Is(err, onionlocation.ErrNotOnionDomain) {
			t.Errorf("expected ErrNonCompliant and ErrNotOnionDomain, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, _, err := runRoot(t, "check-config", "does-not-exist.conf"); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
