package database

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSelectApplied(t *testing.T) {
	files := []string{"000001_init.up.sql", "000002_tags.up.sql", "000003_index.up.sql"}

	if got := selectApplied(files, 1, 3); !reflect.DeepEqual(got, files[1:]) {
		t.Fatalf("got %v", got)
	}
	if got := selectApplied(files, 3, 3); got != nil {
		t.Fatalf("no-op range returned %v", got)
	}
}

func TestListMigrationFilesOnlyUp(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000002_b.up.sql", "000001_a.up.sql", "000001_a.down.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	got := listMigrationFiles(dir)
	want := []string{"000001_a.up.sql", "000002_b.up.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}

func TestConfigURLs(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "bot", Password: "p@ss", Name: "memes"}
	if got := cfg.URL(); got != "postgres://bot:p%40ss@db:5432/memes?sslmode=disable" {
		t.Fatalf("URL = %s", got)
	}
	if got := cfg.DSN(); got != "user=bot password=p@ss host=db port=5432 dbname=memes sslmode=disable" {
		t.Fatalf("DSN = %s", got)
	}
}
