// Package migration imports a legacy flat-file repository index into a
// BoltStore, mirroring the teacher's legacy CRC-file migration story
// applied to repository data instead of build CRCs.
//
// The legacy format is a plain text file at cfg.LegacyIndex with lines:
//
//	repo_id:kind:name:component,component,...
//
// where kind is "binary" or "source". Lines starting with '#' are comments.
package migration

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go-depsolve/config"
	"go-depsolve/resolve"
	"go-depsolve/store"
)

// CurrentSchemaVersion is written to the store once migration completes.
const CurrentSchemaVersion = 1

// indexLine is one parsed line of the legacy index file.
type indexLine struct {
	RepoID     string
	Kind       string // "binary" or "source"
	Name       string
	Components []string
}

// legacyLogger is the minimal logging surface migration needs for progress
// reporting, matching the teacher's use of an ad-hoc interface instead of
// importing the full LibraryLogger for this one call.
type legacyLogger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
}

// DetectMigrationNeeded reports whether a legacy index file exists at
// cfg.LegacyIndex.
func DetectMigrationNeeded(cfg *config.Config) bool {
	_, err := os.Stat(cfg.LegacyIndex)
	return err == nil
}

// MigrateLegacyIndex imports cfg.LegacyIndex into s, then backs up the
// legacy file to LegacyIndex+".bak". Returns nil with no work done if no
// legacy file exists. Invalid lines are logged and skipped rather than
// failing the whole migration.
func MigrateLegacyIndex(cfg *config.Config, s *store.BoltStore, logger legacyLogger) error {
	if _, err := os.Stat(cfg.LegacyIndex); os.IsNotExist(err) {
		return nil
	}

	logger.Info("Found legacy repository index: %s", cfg.LegacyIndex)

	lines, err := readLegacyIndex(cfg.LegacyIndex, logger)
	if err != nil {
		return fmt.Errorf("failed to read legacy index: %w", err)
	}

	logger.Info("Migrating %d repository entries...", len(lines))

	migrated := 0
	for _, entry := range lines {
		if err := importLine(s, entry); err != nil {
			logger.Warn("Failed to migrate %s/%s: %v", entry.RepoID, entry.Name, err)
			continue
		}
		migrated++
	}

	logger.Info("Successfully migrated %d/%d entries", migrated, len(lines))

	if err := s.SetSchemaVersion(CurrentSchemaVersion); err != nil {
		logger.Warn("Failed to record schema version: %v", err)
	}

	backupFile := cfg.LegacyIndex + ".bak"
	if err := os.Rename(cfg.LegacyIndex, backupFile); err != nil {
		logger.Warn("Failed to backup legacy index: %v", err)
	} else {
		logger.Info("Legacy index backed up to: %s", backupFile)
	}

	return nil
}

func importLine(s *store.BoltStore, entry indexLine) error {
	key := entry.RepoID + "\x00" + entry.Kind[:1] + "\x00" + entry.Name

	switch entry.Kind {
	case "binary":
		if err := s.PutBinary(resolve.BinaryRow{Key: key, RepoID: entry.RepoID, Name: entry.Name, Version: "legacy"}); err != nil {
			return err
		}
	case "source":
		if err := s.PutSource(resolve.SourceRow{Key: key, RepoID: entry.RepoID, Name: entry.Name, Version: "legacy"}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown kind %q", entry.Kind)
	}

	ref := resolve.ProviderRef{Key: key, Name: entry.Name, Version: "legacy"}
	if err := s.PutProvides(entry.RepoID, entry.Name, []resolve.ProviderRef{ref}); err != nil {
		return err
	}
	for _, comp := range entry.Components {
		if comp == "" {
			continue
		}
		if err := s.PutProvides(entry.RepoID, comp, []resolve.ProviderRef{ref}); err != nil {
			return err
		}
	}
	return nil
}

func readLegacyIndex(path string, logger legacyLogger) ([]indexLine, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []indexLine
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		parts := strings.SplitN(raw, ":", 4)
		if len(parts) < 3 {
			logger.Warn("Skipping invalid line (expected repo_id:kind:name[:components]): %s", raw)
			continue
		}

		repoID, kind, name := parts[0], parts[1], parts[2]
		if kind != "binary" && kind != "source" {
			logger.Warn("Skipping line with unknown kind %q: %s", kind, raw)
			continue
		}

		var components []string
		if len(parts) == 4 && parts[3] != "" {
			components = strings.Split(parts[3], ",")
		}

		lines = append(lines, indexLine{RepoID: repoID, Kind: kind, Name: name, Components: components})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}
