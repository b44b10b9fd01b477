package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing default file is ignored", func(t *testing.T) {
		if err := loadEnvFile(filepath.Join(t.TempDir(), ".env"), false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing explicit file fails", func(t *testing.T) {
		if err := loadEnvFile(filepath.Join(t.TempDir(), "prod.env"), true); err == nil {
			t.Fatalf("expected error for missing explicit env file")
		}
	})

	t.Run("values override the environment", func(t *testing.T) {
		t.Setenv("TFS_7PACE_WORK_ITEM_THRESHOLD_START", "1")
		path := filepath.Join(t.TempDir(), ".env")
		content := "TFS_7PACE_WORK_ITEM_THRESHOLD_START=500000\nLAST_WEEK=true\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write env file: %v", err)
		}
		t.Setenv("LAST_WEEK", "")

		if err := loadEnvFile(path, true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := os.Getenv("TFS_7PACE_WORK_ITEM_THRESHOLD_START"); got != "500000" {
			t.Fatalf("expected override, got %q", got)
		}
		if got := os.Getenv("LAST_WEEK"); got != "true" {
			t.Fatalf("expected LAST_WEEK from file, got %q", got)
		}
	})
}
