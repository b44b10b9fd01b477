package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"togglepace/internal/classify"
	"togglepace/toggl"
)

const (
	KeyTogglURL             = "toggl.url"
	KeyTogglWorkspaceID     = "toggl.workspace_id"
	KeyTogglProjectID       = "toggl.project_id"
	KeyTogglProjectName     = "toggl.project_name"
	KeySevenPaceURL         = "sevenpace.url"
	KeySevenPaceAPIVersion  = "sevenpace.api_version"
	KeySyncLastWeek         = "sync.last_week"
	KeySyncLegacyThreshold  = "sync.legacy_threshold"
	KeySyncTimeout          = "sync.timeout"
	KeyActivities           = "activities"
	KeyJournalEnabled       = "journal.enabled"
	KeyJournalPath          = "journal.path"
	KeyLogDir               = "log.dir"
	DefaultSevenPaceVersion = "3.2"
	DefaultSyncTimeout      = "30s"
	legacyEnvLastWeek       = "LAST_WEEK"
	legacyEnvThresholdStart = "TFS_7PACE_WORK_ITEM_THRESHOLD_START"
)

type Config struct {
	Toggl      TogglConfig       `mapstructure:"toggl" validate:"required"`
	SevenPace  SevenPaceConfig   `mapstructure:"sevenpace" validate:"required"`
	Sync       SyncConfig        `mapstructure:"sync"`
	Activities map[string]string `mapstructure:"activities"`
	Journal    JournalConfig     `mapstructure:"journal"`
	Log        LogConfig         `mapstructure:"log"`
}

type TogglConfig struct {
	URL         string `mapstructure:"url" validate:"required,url"`
	WorkspaceID int64  `mapstructure:"workspace_id" validate:"gte=0"`
	ProjectID   int64  `mapstructure:"project_id" validate:"gte=0,required_without=ProjectName"`
	// ProjectName filters file imports, whose rows carry no project id.
	ProjectName string `mapstructure:"project_name"`
}

type SevenPaceConfig struct {
	URL        string `mapstructure:"url" validate:"required,url"`
	APIVersion string `mapstructure:"api_version" validate:"required"`
}

type SyncConfig struct {
	LastWeek        bool          `mapstructure:"last_week"`
	LegacyThreshold int64         `mapstructure:"legacy_threshold" validate:"required,gt=0"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Dir string `mapstructure:"dir"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// BindEnv maps environment variables onto config keys: "toggl.project_id"
// reads TOGGL_PROJECT_ID. The script-era names LAST_WEEK and
// TFS_7PACE_WORK_ITEM_THRESHOLD_START are still honoured.
func BindEnv(v *viper.Viper) error {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(KeySyncLastWeek, "SYNC_LAST_WEEK", legacyEnvLastWeek); err != nil {
		return fmt.Errorf("bind %s: %w", KeySyncLastWeek, err)
	}
	if err := v.BindEnv(KeySyncLegacyThreshold, "SYNC_LEGACY_THRESHOLD", legacyEnvThresholdStart); err != nil {
		return fmt.Errorf("bind %s: %w", KeySyncLegacyThreshold, err)
	}
	return nil
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# togglepace configuration
toggl:
  url: "` + toggl.DefaultBaseURL + `"
  workspace_id: 0
  # Only entries of this project are synced.
  project_id: 123456789
  # Required with sync --input: report rows are filtered by this project name.
  project_name: ""

sevenpace:
  url: "https://yourorg.timehub.7pace.com/api/rest"
  api_version: "` + DefaultSevenPaceVersion + `"

sync:
  last_week: false
  # Work item ids above this value belong to the legacy tracker and are only listed.
  legacy_threshold: 500000
  timeout: "` + DefaultSyncTimeout + `"

# 7pace activity type ids per category.
activities:
  internal_operations: "` + classify.InternalOperations.ID + `"
  bug: "` + classify.Bug.ID + `"
  feature: "` + classify.Feature.ID + `"
  customer_issues: "` + classify.CustomerIssues.ID + `"
  professional_development: "` + classify.ProfessionalDevelopment.ID + `"

journal:
  enabled: true
  path: ""

log:
  dir: ""
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateActivities(cfg.Activities); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyTogglURL, toggl.DefaultBaseURL)
	v.SetDefault(KeyTogglWorkspaceID, 0)
	v.SetDefault(KeyTogglProjectID, 0)
	v.SetDefault(KeyTogglProjectName, "")
	v.SetDefault(KeySevenPaceURL, "")
	v.SetDefault(KeySevenPaceAPIVersion, DefaultSevenPaceVersion)
	v.SetDefault(KeySyncLastWeek, false)
	v.SetDefault(KeySyncLegacyThreshold, 0)
	v.SetDefault(KeySyncTimeout, DefaultSyncTimeout)
	for _, category := range classify.Categories() {
		v.SetDefault(KeyActivities+"."+category.Key, category.ID)
	}
	v.SetDefault(KeyJournalEnabled, true)
	v.SetDefault(KeyJournalPath, "")
	v.SetDefault(KeyLogDir, "")
}

func validateActivities(activities map[string]string) error {
	known := make(map[string]struct{}, len(activities))
	for _, category := range classify.Categories() {
		known[category.Key] = struct{}{}
	}
	for key, id := range activities {
		if _, ok := known[key]; !ok {
			return fmt.Errorf("validation failed: activities.%s is not a known category", key)
		}
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("validation failed: activities.%s requires an activity type id", key)
		}
	}
	return nil
}
