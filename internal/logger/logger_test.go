package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesToRotatingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	if err := Init(Config{Dir: dir}); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	Info("sync started", "window", "2024-01-01..2024-01-07")
	Debug("hidden at info level")

	content, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "sync started") {
		t.Fatalf("expected info line in log, got %q", text)
	}
	if strings.Contains(text, "hidden at info level") {
		t.Fatalf("debug line should be filtered at info level")
	}
}

func TestHelpers_NoopWithoutInit(t *testing.T) {
	Logger = nil
	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
}
