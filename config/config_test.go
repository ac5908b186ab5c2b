package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "resolve.ini"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultDepth != -1 {
		t.Fatalf("expected default depth -1, got %d", cfg.DefaultDepth)
	}
	if len(cfg.Repositories) != 0 {
		t.Fatalf("expected no repositories without a config file, got %v", cfg.Repositories)
	}
}

func TestLoadConfig_ParsesRepositories(t *testing.T) {
	dir := t.TempDir()
	writeTestConfig(t, dir, `
[global]
worker_pool_size = 4
default_depth = 2
default_with_subpack = true
store_path = /tmp/repos.db
logs_path = /tmp/logs

[repository "base"]
priority = 0
kind = mixed
store = /srv/repos/base

[repository "extras"]
priority = 1
kind = binary
store = /srv/repos/extras
`)
	cfg, err := LoadConfig(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WorkerPoolSize != 4 || cfg.DefaultDepth != 2 || !cfg.DefaultWithSubpack {
		t.Fatalf("unexpected global config: %+v", cfg)
	}
	if len(cfg.Repositories) != 2 {
		t.Fatalf("expected 2 repositories, got %d: %+v", len(cfg.Repositories), cfg.Repositories)
	}
	byID := map[string]RepositoryConfig{}
	for _, r := range cfg.Repositories {
		byID[r.ID] = r
	}
	if byID["base"].Priority != 0 || byID["base"].Kind != "mixed" {
		t.Fatalf("unexpected base repository config: %+v", byID["base"])
	}
	if byID["extras"].Priority != 1 || byID["extras"].Kind != "binary" {
		t.Fatalf("unexpected extras repository config: %+v", byID["extras"])
	}
}

func TestConfig_Validate_RejectsDuplicatePriority(t *testing.T) {
	cfg := &Config{
		WorkerPoolSize: 1,
		DefaultDepth:   -1,
		StorePath:      "/tmp/db",
		LogsPath:       "/tmp/logs",
		Repositories: []RepositoryConfig{
			{ID: "a", Priority: 0, Kind: "mixed", Store: "/srv/a"},
			{ID: "b", Priority: 0, Kind: "mixed", Store: "/srv/b"},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for duplicate priority")
	}
}

func TestConfig_Validate_RejectsInvalidKind(t *testing.T) {
	cfg := &Config{
		WorkerPoolSize: 1,
		DefaultDepth:   -1,
		StorePath:      "/tmp/db",
		LogsPath:       "/tmp/logs",
		Repositories: []RepositoryConfig{
			{ID: "a", Priority: 0, Kind: "nonsense", Store: "/srv/a"},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid kind")
	}
}

func TestConfig_Validate_RejectsNoRepositories(t *testing.T) {
	cfg := &Config{WorkerPoolSize: 1, DefaultDepth: -1, StorePath: "/tmp/db", LogsPath: "/tmp/logs"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for no repositories configured")
	}
}

func TestWriteDefaultConfig_RoundTripsThroughINI(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		WorkerPoolSize: 6,
		DefaultDepth:   -1,
		StorePath:      "/tmp/repos.db",
		LogsPath:       "/tmp/logs",
		StatsPath:      "/tmp/stats.json",
	}
	path := filepath.Join(dir, "resolve.ini")
	if err := WriteDefaultConfig(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadConfig(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.WorkerPoolSize != 6 {
		t.Fatalf("expected worker_pool_size 6 round-tripped, got %d", loaded.WorkerPoolSize)
	}
	if len(loaded.Repositories) != 1 || loaded.Repositories[0].ID != "base" {
		t.Fatalf("expected default 'base' repository written, got %+v", loaded.Repositories)
	}
}
