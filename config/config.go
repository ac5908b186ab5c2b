// Package config loads the resolver's configuration: the ordered list of
// repositories to search, default query behavior, worker pool sizing, and
// the filesystem paths the query-serving process uses for its store, logs,
// and stats snapshot.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"
)

// RepositoryConfig is one configured repository: its search priority,
// whether it serves source packages, binary packages, or both, and where
// its backing store lives on disk.
type RepositoryConfig struct {
	ID       string
	Priority int
	Kind     string // "source", "binary", or "mixed"
	Store    string
}

// Config holds the resolver's full configuration.
type Config struct {
	ConfigPath string

	Repositories []RepositoryConfig

	// Default query behavior, used when a caller doesn't override it.
	DefaultDepth       int
	DefaultWithSubpack bool
	DefaultSelfBuild   bool

	// Paths
	StorePath     string // bbolt database path
	LogsPath      string
	StatsPath     string // stats snapshot file
	LegacyIndex   string // legacy flat-file index to migrate from, if present

	// Worker pool size for concurrent query serving.
	WorkerPoolSize int
}

// LoadConfig loads configuration from configDir/resolve.ini. A missing file
// is not an error: defaults are used. profile selects a named section
// group the way the teacher's config does, for environments that keep
// several repository layouts (dev/staging/prod) in one file.
func LoadConfig(configDir, profile string) (*Config, error) {
	cfg := &Config{
		DefaultDepth:       -1,
		WorkerPoolSize:     runtime.NumCPU(),
		StorePath:          "/var/lib/go-depsolve/repos.db",
		LogsPath:           "/var/log/go-depsolve",
		StatsPath:          "/var/lib/go-depsolve/stats.json",
	}
	if cfg.WorkerPoolSize < 1 {
		cfg.WorkerPoolSize = 1
	}

	if configDir == "" {
		if _, err := os.Stat("/etc/go-depsolve"); err == nil {
			configDir = "/etc/go-depsolve"
		} else {
			configDir = "/usr/local/etc/go-depsolve"
		}
	}
	cfg.ConfigPath = configDir

	configFile := filepath.Join(configDir, "resolve.ini")
	if _, err := os.Stat(configFile); err == nil {
		if err := cfg.loadINI(configFile, profile); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if cfg.LegacyIndex == "" {
		cfg.LegacyIndex = filepath.Join(filepath.Dir(cfg.StorePath), "index.txt")
	}

	return cfg, nil
}

// loadINI parses configFile with gopkg.in/ini.v1. Section layout:
//
//	[global]
//	worker_pool_size = 8
//	default_depth = -1
//	default_with_subpack = false
//	store_path = /var/lib/go-depsolve/repos.db
//	logs_path = /var/log/go-depsolve
//	stats_path = /var/lib/go-depsolve/stats.json
//	legacy_index = /var/lib/go-depsolve/index.txt
//
//	[repository "base"]
//	priority = 0
//	kind = mixed
//	store = /srv/repos/base
//
//	[repository "extras"]
//	priority = 1
//	kind = binary
//	store = /srv/repos/extras
func (cfg *Config) loadINI(filename, profile string) error {
	f, err := ini.Load(filename)
	if err != nil {
		return err
	}

	global := sectionOrDefault(f, "global", profile)
	cfg.WorkerPoolSize = global.Key("worker_pool_size").MustInt(cfg.WorkerPoolSize)
	cfg.DefaultDepth = global.Key("default_depth").MustInt(cfg.DefaultDepth)
	cfg.DefaultWithSubpack = global.Key("default_with_subpack").MustBool(cfg.DefaultWithSubpack)
	cfg.DefaultSelfBuild = global.Key("default_self_build").MustBool(cfg.DefaultSelfBuild)
	cfg.StorePath = global.Key("store_path").MustString(cfg.StorePath)
	cfg.LogsPath = global.Key("logs_path").MustString(cfg.LogsPath)
	cfg.StatsPath = global.Key("stats_path").MustString(cfg.StatsPath)
	cfg.LegacyIndex = global.Key("legacy_index").MustString(cfg.LegacyIndex)

	for _, section := range f.Sections() {
		name := section.Name()
		if !strings.HasPrefix(name, "repository ") {
			continue
		}
		id := strings.Trim(strings.TrimPrefix(name, "repository "), `"`)
		cfg.Repositories = append(cfg.Repositories, RepositoryConfig{
			ID:       id,
			Priority: section.Key("priority").MustInt(0),
			Kind:     strings.ToLower(section.Key("kind").MustString("mixed")),
			Store:    section.Key("store").String(),
		})
	}
	return nil
}

// sectionOrDefault returns the profile-named section if it exists and a
// profile was requested, else falls back to name.
func sectionOrDefault(f *ini.File, name, profile string) *ini.Section {
	if profile != "" {
		if s, err := f.GetSection(name + " " + profile); err == nil {
			return s
		}
	}
	if s, err := f.GetSection(name); err == nil {
		return s
	}
	return f.Section(name)
}

// Validate enforces the same constraints the Query Facade enforces per
// query, at startup instead of per-query: repository ids and priorities
// must be unique and non-empty, stores must be non-empty paths, and the
// worker pool size must be sane.
func (cfg *Config) Validate() error {
	if len(cfg.Repositories) == 0 {
		return fmt.Errorf("no repositories configured")
	}

	seenID := make(map[string]bool, len(cfg.Repositories))
	seenPriority := make(map[int]bool, len(cfg.Repositories))
	for _, r := range cfg.Repositories {
		if r.ID == "" {
			return fmt.Errorf("repository with empty id")
		}
		if seenID[r.ID] {
			return fmt.Errorf("duplicate repository id %q", r.ID)
		}
		seenID[r.ID] = true

		if seenPriority[r.Priority] {
			return fmt.Errorf("duplicate repository priority %d (repository %q)", r.Priority, r.ID)
		}
		seenPriority[r.Priority] = true

		switch r.Kind {
		case "source", "binary", "mixed":
		default:
			return fmt.Errorf("repository %q: invalid kind %q", r.ID, r.Kind)
		}

		if r.Store == "" {
			return fmt.Errorf("repository %q: store path is empty", r.ID)
		}
	}

	if cfg.DefaultDepth < -1 {
		return fmt.Errorf("default_depth must be -1 or >= 0")
	}
	if cfg.WorkerPoolSize < 1 || cfg.WorkerPoolSize > 1024 {
		return fmt.Errorf("worker_pool_size must be between 1 and 1024")
	}
	if cfg.StorePath == "" {
		return fmt.Errorf("store_path is not configured")
	}
	if cfg.LogsPath == "" {
		return fmt.Errorf("logs_path is not configured")
	}

	return nil
}

// WriteDefaultConfig writes a commented default configuration file in the
// same INI layout loadINI reads, for `go-depsolve init`-style bootstrap.
func WriteDefaultConfig(filename string, cfg *Config) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintln(file, "; go-depsolve configuration file")
	fmt.Fprintln(file, "")
	fmt.Fprintln(file, "[global]")
	fmt.Fprintf(file, "worker_pool_size = %d\n", cfg.WorkerPoolSize)
	fmt.Fprintf(file, "default_depth = %d\n", cfg.DefaultDepth)
	fmt.Fprintf(file, "default_with_subpack = %v\n", cfg.DefaultWithSubpack)
	fmt.Fprintf(file, "store_path = %s\n", cfg.StorePath)
	fmt.Fprintf(file, "logs_path = %s\n", cfg.LogsPath)
	fmt.Fprintf(file, "stats_path = %s\n", cfg.StatsPath)
	fmt.Fprintln(file, "")
	fmt.Fprintln(file, `[repository "base"]`)
	fmt.Fprintln(file, "priority = 0")
	fmt.Fprintln(file, "kind = mixed")
	fmt.Fprintln(file, "store = /srv/repos/base")
	fmt.Fprintln(file, "")

	return nil
}

// GetSystemInfo returns host OS/arch information, used only for the CLI's
// version/diagnostics output.
func GetSystemInfo() (osname, osversion, arch string, ncpus int) {
	return runtime.GOOS, "", runtime.GOARCH, runtime.NumCPU()
}
