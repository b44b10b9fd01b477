package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"togglepace/internal/prompt"
)

var configDeleteYes bool

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active configuration file.",
	Long: `Delete the configuration file currently selected by togglepace, after a y/n confirmation.

If no configuration file is active, the command returns an error. Tokens in the keyring
are kept; remove them with "togglepace auth delete".`,
	Example: `
  # Delete active config
  togglepace config delete

  # Delete config at a custom path without asking
  togglepace --configFile ./custom-togglepace.yaml config delete --yes
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := viper.ConfigFileUsed()
		if configPath == "" {
			return fmt.Errorf("no configuration file found")
		}

		if !configDeleteYes {
			confirmer := prompt.NewLineConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			ok, err := confirmer.Confirm(cmd.Context(), fmt.Sprintf("Delete %s ? (y/n)", configPath))
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("deletion aborted")
			}
		}

		if err := os.Remove(configPath); err != nil {
			return fmt.Errorf("error deleting configuration file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file successfully deleted: %s\n", configPath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
	configDeleteCmd.Flags().BoolVarP(&configDeleteYes, "yes", "y", false, "Delete without confirmation")
}
