package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/onionmonitor/internal/model"
)

func testServices(statuses ...model.Status) []model.Service {
	names := []string{"alpha", "bravo", "charlie", "delta"}
	services := make([]model.Service, len(statuses))
	for i, st := range statuses {
		services[i] = model.Service{
			Title:        names[i],
			Name:         names[i],
			OnionAddress: "http://" + names[i] + ".onion",
			Status:       st,
			PrevStatus:   model.StatusUnknown,
			Category:     model.StringPtr("test"),
		}
	}
	return services
}

func openTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates directory and file", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested", "db")
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dir, DBFileName)); err != nil {
			t.Errorf("database file missing: %v", err)
		}
		if db.Path() != filepath.Join(dir, DBFileName) {
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("missing database without create", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{})
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Open() error = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("reopen keeps data", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := db.SaveSnapshot(t.Context(), "a.json", testServices(model.StatusOnline), time.Now()); err != nil {
			t.Fatal(err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{EnableWAL: true})
		if err != nil {
			t.Fatalf("reopen error: %v", err)
		}
		defer db.Close()

		metas, err := db.ListSnapshots(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		if len(metas) != 1 {
			t.Errorf("len(ListSnapshots()) = %d, want 1", len(metas))
		}
	})
}

func TestSaveAndGetSnapshot(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()

	services := testServices(model.StatusOnline, model.StatusOffline, model.ErrorStatus("502"))
	checked := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	services[0].LastChecked = &checked

	takenAt := time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC)
	meta, err := db.SaveSnapshot(ctx, "services.json", services, takenAt)
	if err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}
	if len(meta.ID) != 26 {
		t.Errorf("ID = %q, want a 26-character ULID", meta.ID)
	}
	if meta.ServiceCount != 3 || meta.Summary.Online != 1 || meta.Summary.Offline != 1 || meta.Summary.Errors != 1 {
		t.Errorf("meta = %+v", meta)
	}

	got, err := db.GetSnapshot(ctx, meta.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error: %v", err)
	}
	if len(got) != len(services) {
		t.Fatalf("len(GetSnapshot()) = %d, want %d", len(got), len(services))
	}
	for i := range services {
		if got[i].Name != services[i].Name || got[i].Status != services[i].Status {
			t.Errorf("record %d = %s/%s, want %s/%s", i, got[i].Name, got[i].Status, services[i].Name, services[i].Status)
		}
	}
	if got[0].LastChecked == nil || !got[0].LastChecked.Equal(checked) {
		t.Errorf("LastChecked = %v, want %v", got[0].LastChecked, checked)
	}
	if got[1].LastChecked != nil {
		t.Errorf("LastChecked = %v, want nil", got[1].LastChecked)
	}
	if got[0].CategoryText() != "test" {
		t.Errorf("Category = %q, want test", got[0].CategoryText())
	}

	metas, err := db.ListSnapshots(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 1 || !metas[0].TakenAt.Equal(takenAt) || metas[0].Source != "services.json" {
		t.Errorf("ListSnapshots() = %+v", metas)
	}
}

func TestGetSnapshotNotFound(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	if _, err := db.GetSnapshot(t.Context(), "01HXXXXXXXXXXXXXXXXXXXXXXX"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("GetSnapshot() error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestEmptySnapshot(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	meta, err := db.SaveSnapshot(t.Context(), "empty.json", nil, time.Now())
	if err != nil {
		t.Fatalf("SaveSnapshot() error: %v", err)
	}
	got, err := db.GetSnapshot(t.Context(), meta.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("GetSnapshot() = %v, want empty non-nil slice", got)
	}
}

func TestHistoryOrdering(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := t.Context()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	runs := [][]model.Status{
		{model.StatusUnknown, model.StatusOnline},
		{model.StatusOnline, model.StatusOnline},
		{model.StatusOffline, model.ErrorStatus("503")},
	}
	var ids []string
	for i, statuses := range runs {
		meta, err := db.SaveSnapshot(ctx, "services.json", testServices(statuses...), base.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatalf("SaveSnapshot(%d) error: %v", i, err)
		}
		ids = append(ids, meta.ID)
	}

	latest, err := db.LatestSnapshots(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(latest) != 2 || latest[0].ID != ids[2] || latest[1].ID != ids[1] {
		t.Errorf("LatestSnapshots(2) = %+v, want [%s %s]", latest, ids[2], ids[1])
	}

	if none, err := db.LatestSnapshots(ctx, 0); err != nil || len(none) != 0 {
		t.Errorf("LatestSnapshots(0) = %v, %v", none, err)
	}

	history, err := db.StatusHistory(ctx, "alpha")
	if err != nil {
		t.Fatal(err)
	}
	want := []model.Status{model.StatusOffline, model.StatusOnline, model.StatusUnknown}
	if len(history) != len(want) {
		t.Fatalf("len(StatusHistory()) = %d, want %d", len(history), len(want))
	}
	for i, e := range history {
		if e.Status != want[i] || e.SnapshotID != ids[len(ids)-1-i] {
			t.Errorf("history[%d] = %+v, want status %s", i, e, want[i])
		}
	}

	unknown, err := db.StatusHistory(ctx, "zulu")
	if err != nil || len(unknown) != 0 {
		t.Errorf("StatusHistory(zulu) = %v, %v", unknown, err)
	}
}
