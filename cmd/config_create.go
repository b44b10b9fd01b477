package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"togglepace/config"
)

var configCreateForce bool

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the same example template used by "config edit".

An existing file is left untouched unless --force is given.`,
	Example: `
  # Create default config at $HOME/.togglepace.yaml
  togglepace config create

  # Reset an existing config to the template
  togglepace --configFile ./team.yaml config create --force
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig(cmd.OutOrStdout(), configCreateForce)
	},
}

func saveDefaultConfig(out io.Writer, force bool) error {
	configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	if force {
		if err := os.WriteFile(configPath, []byte(config.ExampleYAML()), 0o600); err != nil {
			return fmt.Errorf("overwriting config failed: %w", err)
		}
		fmt.Fprintf(out, "Config file reset to the template at: %s\n", configPath)
		return nil
	}

	created, err := ensureConfigFileWithTemplate(configPath)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(out, "New config file created at: %s\n", configPath)
		fmt.Fprintln(out, "Set toggl.project_id, sevenpace.url and sync.legacy_threshold, then store tokens with: togglepace auth set")
		return nil
	}

	fmt.Fprintf(out, "Config file already exists at: %s\n", configPath)
	return nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)
	configCreateCmd.Flags().BoolVar(&configCreateForce, "force", false, "Overwrite an existing file with the template")
}
