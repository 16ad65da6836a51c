package state

import (
	"path/filepath"
	"reflect"
	"testing"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrateOnOpen(t *testing.T) {
	s := openStore(t)
	version, err := s.SchemaVersion()
	if err != nil {
		t.Fatal(err)
	}
	if version < 1 {
		t.Errorf("schema version = %d, want >= 1", version)
	}
}

func TestBuildLifecycle(t *testing.T) {
	s := openStore(t)

	b, err := s.StartBuild("Warehouse")
	if err != nil {
		t.Fatal(err)
	}
	if b.ID == "" || b.Status != StatusRunning {
		t.Fatalf("unexpected build: %+v", b)
	}

	if err := s.FinishBuild(b.ID, "out/Warehouse.dacpac", ""); err != nil {
		t.Fatal(err)
	}

	latest, err := s.LatestBuild("Warehouse")
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.ID != b.ID {
		t.Fatalf("latest build = %+v", latest)
	}
	if latest.Status != StatusSucceeded || latest.Package != "out/Warehouse.dacpac" {
		t.Errorf("build not marked succeeded: %+v", latest)
	}
	if latest.CompletedAt == nil {
		t.Error("completed_at not set")
	}
}

func TestBuildFailureRecorded(t *testing.T) {
	s := openStore(t)

	b, err := s.StartBuild("Warehouse")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.FinishBuild(b.ID, "", "project file missing"); err != nil {
		t.Fatal(err)
	}

	latest, err := s.LatestBuild("Warehouse")
	if err != nil {
		t.Fatal(err)
	}
	if latest.Status != StatusFailed || latest.Error != "project file missing" {
		t.Errorf("failure not recorded: %+v", latest)
	}
}

func TestLatestBuildUnknownProject(t *testing.T) {
	s := openStore(t)
	latest, err := s.LatestBuild("nope")
	if err != nil {
		t.Fatal(err)
	}
	if latest != nil {
		t.Errorf("expected nil, got %+v", latest)
	}
}

func TestContentHashes(t *testing.T) {
	s := openStore(t)

	if err := s.SetContentHash("a.sql", "h1"); err != nil {
		t.Fatal(err)
	}
	hash, err := s.ContentHash("a.sql")
	if err != nil || hash != "h1" {
		t.Fatalf("ContentHash = %q, %v", hash, err)
	}

	// upsert
	if err := s.SetContentHash("a.sql", "h2"); err != nil {
		t.Fatal(err)
	}
	if hash, _ = s.ContentHash("a.sql"); hash != "h2" {
		t.Errorf("hash not updated: %q", hash)
	}

	if hash, _ = s.ContentHash("missing.sql"); hash != "" {
		t.Errorf("unknown path returned %q", hash)
	}
}

func TestChanged(t *testing.T) {
	s := openStore(t)

	if err := s.RecordHashes(map[string]string{
		"a.sql": "h1",
		"b.sql": "h2",
		"c.sql": "h3",
	}); err != nil {
		t.Fatal(err)
	}

	changed, removed, err := s.Changed(map[string]string{
		"a.sql": "h1",      // unchanged
		"b.sql": "changed", // modified
		"d.sql": "h4",      // new
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"b.sql", "d.sql"}; !reflect.DeepEqual(changed, want) {
		t.Errorf("changed = %v, want %v", changed, want)
	}
	if want := []string{"c.sql"}; !reflect.DeepEqual(removed, want) {
		t.Errorf("removed = %v, want %v", removed, want)
	}

	// identical inputs report nothing
	changed, removed, err = s.Changed(map[string]string{
		"a.sql": "h1", "b.sql": "h2", "c.sql": "h3",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(changed) != 0 || len(removed) != 0 {
		t.Errorf("unexpected diff: changed=%v removed=%v", changed, removed)
	}
}

func TestHashContent(t *testing.T) {
	a := HashContent([]byte("SELECT 1"))
	b := HashContent([]byte("SELECT 2"))
	if a == b {
		t.Error("different content produced identical hashes")
	}
	if a != HashContent([]byte("SELECT 1")) {
		t.Error("hash not stable")
	}
}
