package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"togglepace/config"
	"togglepace/internal/classify"
)

var configShowYAML bool

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

Values include environment overrides. This command validates the configuration before
printing values; --yaml prints the effective settings even when they are invalid.`,
	Example: `
  # Show active configuration
  togglepace config show

  # Dump effective settings as YAML
  togglepace config show --yaml
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if configShowYAML {
			return writeSettingsYAML(out, viper.AllSettings())
		}

		cfg, err := config.LoadAndValidate()
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Fprintln(out, "Config file loaded from:", configPath)
		} else {
			fmt.Fprintln(out, "No config file loaded; values come from defaults and environment")
		}
		printConfig(out, cfg)
		return nil
	},
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "toggl.url: %s\n", cfg.Toggl.URL)
	fmt.Fprintf(out, "toggl.workspace_id: %d\n", cfg.Toggl.WorkspaceID)
	fmt.Fprintf(out, "toggl.project_id: %d\n", cfg.Toggl.ProjectID)
	fmt.Fprintf(out, "toggl.project_name: %s\n", cfg.Toggl.ProjectName)
	fmt.Fprintf(out, "sevenpace.url: %s\n", cfg.SevenPace.URL)
	fmt.Fprintf(out, "sevenpace.api_version: %s\n", cfg.SevenPace.APIVersion)
	fmt.Fprintf(out, "sync.last_week: %t\n", cfg.Sync.LastWeek)
	fmt.Fprintf(out, "sync.legacy_threshold: %d\n", cfg.Sync.LegacyThreshold)
	fmt.Fprintf(out, "sync.timeout: %s\n", cfg.Sync.Timeout)

	for _, category := range classify.NewClassifier(cfg.Activities).Categories() {
		fmt.Fprintf(out, "activities.%s: %s (%s)\n", category.Key, category.ID, category.Name)
	}

	fmt.Fprintf(out, "journal.enabled: %t\n", cfg.Journal.Enabled)
	fmt.Fprintf(out, "journal.path: %s\n", cfg.Journal.Path)
	fmt.Fprintf(out, "log.dir: %s\n", cfg.Log.Dir)
}

// writeSettingsYAML renders settings with sorted top-level keys.
func writeSettingsYAML(out io.Writer, settings map[string]any) error {
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range keys {
		var value yaml.Node
		if err := value.Encode(settings[key]); err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, &value)
	}

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(root); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return encoder.Close()
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configShowCmd.Flags().BoolVar(&configShowYAML, "yaml", false, "Print the effective settings as YAML")
}
