package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/onionmonitor/internal/database"
	"github.com/nao1215/onionmonitor/internal/directory"
	"github.com/nao1215/onionmonitor/internal/model"
	"github.com/nao1215/onionmonitor/internal/report"
)

const testProjects = `[
  {"name": "Example News", "onion": "` + testOnion + `", "category": "news"},
  {"name": "No Mirror", "onion": null},
  {"name": "Pending", "onion": ".onion"},
  // trailing comma tolerated
  {"name": "Chat_Room", "onion": "https://` + testOnion + `", "tags": ["chat"]},
]`

func TestImportCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates snapshot and records history", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		projects := filepath.Join(dir, "projects")
		writeFile(t, projects, "a.json", testProjects)
		writeFile(t, projects, "notes.txt", "ignored")
		snapshot := filepath.Join(dir, "data", "services.json")
		dbDir := filepath.Join(dir, "db")

		out, _, err := runRoot(t, "import", "-f", snapshot, "--db-dir", dbDir, "--json", projects)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var cs report.ChangeSet
		if err := json.Unmarshal([]byte(out), &cs); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if len(cs.Changes) != 2 {
			t.Fatalf("changes = %+v, want 2 additions", cs.Changes)
		}
		for _, c := range cs.Changes {
			if c.Kind != directory.ChangeAdded {
				t.Errorf("change %+v is not an addition", c)
			}
		}

		services, err := directory.LoadSnapshot(snapshot)
		if err != nil {
			t.Fatalf("failed to load snapshot: %v", err)
		}
		if len(services) != 2 {
			t.Fatalf("len(services) = %d, want 2", len(services))
		}
		// Sorted by title.
		if services[0].Name != "chat-room" || services[1].Name != "example-news" {
			t.Errorf("names = %s, %s", services[0].Name, services[1].Name)
		}
		if services[1].OnionAddress != "http://"+testOnion {
			t.Errorf("onion_address = %q", services[1].OnionAddress)
		}
		if services[1].Status != model.StatusUnknown || services[1].Checked() {
			t.Errorf("new record = %+v, want unknown and never checked", services[1])
		}

		db, err := database.Open(dbDir, database.Options{})
		if err != nil {
			t.Fatalf("history database not created: %v", err)
		}
		defer db.Close()
		metas, err := db.ListSnapshots(t.Context())
		if err != nil {
			t.Fatalf("ListSnapshots() error = %v", err)
		}
		if len(metas) != 1 || metas[0].ServiceCount != 2 || cs.To != metas[0].ID {
			t.Errorf("snapshots = %+v, change set to %q", metas, cs.To)
		}
	})

	t.Run("existing records keep their status", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		projects := filepath.Join(dir, "projects")
		writeFile(t, projects, "a.json", testProjects)
		snapshot := writeFile(t, dir, "services.json",
			`[{"title":"Example News","name":"example-news","onion_address":"http://`+testOnion+`","status":"online","prev_status":"online"}]`)

		if _, _, err := runRoot(t, "import", "-f", snapshot, "--no-record", projects); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		services, err := directory.LoadSnapshot(snapshot)
		if err != nil {
			t.Fatalf("failed to load snapshot: %v", err)
		}
		if len(services) != 2 {
			t.Fatalf("len(services) = %d, want 2", len(services))
		}
		for _, s := range services {
			if s.Name == "example-news" && s.Status != model.StatusOnline {
				t.Errorf("existing record status = %q, want online", s.Status)
			}
		}
	})

	t.Run("no-record skips the database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		projects := filepath.Join(dir, "projects")
		writeFile(t, projects, "a.json", testProjects)
		dbDir := filepath.Join(dir, "db")

		out, _, err := runRoot(t, "import", "-f", filepath.Join(dir, "services.json"), "--db-dir", dbDir, "--no-record", projects)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dbDir, database.DBFileName)); !os.IsNotExist(err) {
			t.Errorf("expected no database file, stat error = %v", err)
		}
		if !strings.Contains(out, "+ Example News (example-news)") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("malformed project file is skipped", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		projects := filepath.Join(dir, "projects")
		writeFile(t, projects, "a.json", `{"not": "a list"}`)
		writeFile(t, projects, "b.json", testProjects)
		snapshot := filepath.Join(dir, "services.json")

		_, stderr, err := runRoot(t, "import", "-f", snapshot, "--no-record", projects)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stderr, "skipping project file") {
			t.Errorf("expected warning, got %q", stderr)
		}
		services, err := directory.LoadSnapshot(snapshot)
		if err != nil || len(services) != 2 {
			t.Errorf("services = %d, err = %v", len(services), err)
		}
	})

	t.Run("missing projects directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, _, err := runRoot(t, "import", "-f", filepath.Join(dir, "services.json"), "--no-record", filepath.Join(dir, "none"))
		if err == nil {
			t.Error("expected error for missing directory")
		}
	})

	t.Run("invalid concurrency", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, _, err := runRoot(t, "import", "-f", filepath.Join(dir, "services.json"), "--concurrency", "0", dir)
		if err == nil {
			t.Error("expected error for zero concurrency")
		}
	})
}
