package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"togglepace/internal/classify"
)

const validYAML = `toggl:
  project_id: 42
sevenpace:
  url: "https://acme.timehub.7pace.com/api/rest"
sync:
  legacy_threshold: 500000
`

func TestExampleYAML_Validates(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(ExampleYAML()))
	if err != nil {
		t.Fatalf("example config must validate: %v", err)
	}
	if cfg.Sync.Timeout != 30*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.Sync.Timeout)
	}
	if cfg.Activities[classify.KeyBug] != classify.Bug.ID {
		t.Fatalf("unexpected bug id %q", cfg.Activities[classify.KeyBug])
	}
	if !cfg.Journal.Enabled {
		t.Fatalf("journal should be enabled in the example")
	}
}

func TestValidateYAMLContent_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(validYAML))
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
	if cfg.Toggl.URL != "https://api.track.toggl.com/api/v9" {
		t.Fatalf("unexpected default toggl url %q", cfg.Toggl.URL)
	}
	if cfg.SevenPace.APIVersion != DefaultSevenPaceVersion {
		t.Fatalf("unexpected default api version %q", cfg.SevenPace.APIVersion)
	}
	if len(cfg.Activities) != len(classify.Categories()) {
		t.Fatalf("expected every category id defaulted, got %v", cfg.Activities)
	}
	if cfg.Sync.LastWeek {
		t.Fatalf("last_week must default to false")
	}
}

func TestValidateYAMLContent_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name: "missing sevenpace url",
			content: `toggl:
  project_id: 42
sync:
  legacy_threshold: 10
`,
			want: "URL",
		},
		{
			name: "missing threshold",
			content: `toggl:
  project_id: 42
sevenpace:
  url: "https://acme.timehub.7pace.com/api/rest"
`,
			want: "LegacyThreshold",
		},
		{
			name: "missing project",
			content: `sevenpace:
  url: "https://acme.timehub.7pace.com/api/rest"
sync:
  legacy_threshold: 10
`,
			want: "ProjectID",
		},
		{
			name:    "unknown activity key",
			content: validYAML + "activities:\n  meetings: \"abc\"\n",
			want:    "not a known category",
		},
		{
			name:    "empty activity id",
			content: validYAML + "activities:\n  bug: \"\"\n",
			want:    "requires an activity type id",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ValidateYAMLContent([]byte(tc.content))
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateYAMLContent_ProjectNameReplacesProjectID(t *testing.T) {
	t.Parallel()

	content := `toggl:
  project_name: "Contoso"
sevenpace:
  url: "https://acme.timehub.7pace.com/api/rest"
sync:
  legacy_threshold: 10
`
	cfg, err := ValidateYAMLContent([]byte(content))
	if err != nil {
		t.Fatalf("expected project name to satisfy validation: %v", err)
	}
	if cfg.Toggl.ProjectID != 0 || cfg.Toggl.ProjectName != "Contoso" {
		t.Fatalf("unexpected toggl config %+v", cfg.Toggl)
	}
}

func TestBindEnv_ReadsScriptEraNames(t *testing.T) {
	t.Setenv("TOGGL_PROJECT_ID", "77")
	t.Setenv("SEVENPACE_URL", "https://env.timehub.7pace.com/api/rest")
	t.Setenv("SEVENPACE_API_VERSION", "3.1")
	t.Setenv("LAST_WEEK", "true")
	t.Setenv("TFS_7PACE_WORK_ITEM_THRESHOLD_START", "250000")

	v := viper.New()
	setDefaults(v)
	if err := BindEnv(v); err != nil {
		t.Fatalf("bind env: %v", err)
	}

	cfg, err := loadAndValidateFromViper(v)
	if err != nil {
		t.Fatalf("load from env: %v", err)
	}
	if cfg.Toggl.ProjectID != 77 {
		t.Fatalf("unexpected project id %d", cfg.Toggl.ProjectID)
	}
	if cfg.SevenPace.APIVersion != "3.1" || cfg.SevenPace.URL != "https://env.timehub.7pace.com/api/rest" {
		t.Fatalf("unexpected sevenpace config %+v", cfg.SevenPace)
	}
	if !cfg.Sync.LastWeek || cfg.Sync.LegacyThreshold != 250000 {
		t.Fatalf("unexpected sync config %+v", cfg.Sync)
	}
}
