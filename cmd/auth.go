package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"togglepace/internal/secrets"
)

var authToken string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Toggl and 7pace API tokens in the OS keyring.",
	Long: `Store, inspect and remove API tokens.

Tokens are read from TOGGL_API_KEY and SEVENPACE_API_KEY first (a .env file works too).
When a variable is empty the token stored in the OS keyring is used.`,
}

var authSetCmd = &cobra.Command{
	Use:       "set <toggl|sevenpace>",
	Short:     "Store a token in the OS keyring.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{secrets.UserToggl, secrets.UserSevenPace},
	Example: `
  # Prompt for the token (input is hidden)
  togglepace auth set sevenpace

  # Non-interactive
  togglepace auth set toggl --token "$TOGGL_TOKEN"
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		user := args[0]
		token := strings.TrimSpace(authToken)
		if token == "" {
			input := huh.NewInput().
				Title(fmt.Sprintf("%s API token", user)).
				EchoMode(huh.EchoModePassword).
				Value(&token)
			if err := huh.NewForm(huh.NewGroup(input)).RunWithContext(cmd.Context()); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return errors.New("token input aborted")
				}
				return fmt.Errorf("read token: %w", err)
			}
		}

		if err := secrets.Set(user, token); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Token for %s stored in keyring service %q\n", user, secrets.Service)
		return nil
	},
}

var authShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show which tokens are configured (masked).",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, item := range []struct {
			user   string
			envVar string
		}{
			{user: secrets.UserToggl, envVar: "TOGGL_API_KEY"},
			{user: secrets.UserSevenPace, envVar: "SEVENPACE_API_KEY"},
		} {
			source, token := tokenSource(item.user, item.envVar)
			fmt.Fprintf(out, "%-10s %-22s %s\n", item.user, secrets.Mask(token), source)
		}
		return nil
	},
}

var authDeleteCmd = &cobra.Command{
	Use:       "delete <toggl|sevenpace>",
	Short:     "Remove a token from the OS keyring.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{secrets.UserToggl, secrets.UserSevenPace},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := secrets.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Token for %s deleted\n", args[0])
		return nil
	},
}

func tokenSource(user, envVar string) (string, string) {
	if value := strings.TrimSpace(os.Getenv(envVar)); value != "" {
		return "env " + envVar, value
	}
	value, err := secrets.Get(user)
	switch {
	case err == nil:
		return "keyring", value
	case errors.Is(err, secrets.ErrNotFound):
		return "-", ""
	default:
		return err.Error(), ""
	}
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd, authShowCmd, authDeleteCmd)

	authSetCmd.Flags().StringVar(&authToken, "token", "", "Token value (prompted with hidden input when empty)")
}
