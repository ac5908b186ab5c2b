package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-depsolve/config"
)

func TestLogger_WritesResultAndNotFound(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{LogsPath: filepath.Join(dir, "logs")}
	l, err := NewLogger(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	l.Result("install", []string{"app"}, 3, 5*time.Millisecond)
	l.NotFound("install", []string{"app"}, "libghost")
	l.Info("starting up")

	results, err := os.ReadFile(filepath.Join(cfg.LogsPath, "00_results.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !contains(string(results), "install") || !contains(string(results), "3 nodes") {
		t.Fatalf("expected result line in results log, got %s", results)
	}

	notFound, err := os.ReadFile(filepath.Join(cfg.LogsPath, "01_not_found.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !contains(string(notFound), "libghost") {
		t.Fatalf("expected libghost in not-found log, got %s", notFound)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
