package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage togglepace configuration file values.",
	Long: `Create, edit, display, and delete the togglepace configuration file.

The configuration stores:
- toggl.url / toggl.project_id / toggl.project_name
- sevenpace.url / sevenpace.api_version
- sync.last_week / sync.legacy_threshold / sync.timeout
- activities.<category>: 7pace activity type id per keyword category
- journal.enabled / journal.path, log.dir

Every key can be overridden by an environment variable (toggl.project_id -> TOGGL_PROJECT_ID).
API tokens are not stored here; see "togglepace auth".`,
	Example: `
  # Create default config in $HOME/.togglepace.yaml
  togglepace config create

  # Show active config and source file
  togglepace config show

  # Print the effective configuration as YAML
  togglepace config show --yaml

  # Open active config in editor (creates example if missing)
  togglepace config edit

  # Delete active config file
  togglepace config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
