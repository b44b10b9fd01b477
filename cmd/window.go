package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"togglepace/config"
	"togglepace/internal/timeutil"
)

var windowLastWeek bool

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Print the Monday..Sunday window a sync would use.",
	Example: `
  togglepace window
  togglepace window --last-week
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		priorWeek := viper.GetBool(config.KeySyncLastWeek)
		if cmd.Flags().Changed("last-week") {
			priorWeek = windowLastWeek
		}
		window := timeutil.WeekWindow(time.Now(), priorWeek)
		fmt.Fprintf(cmd.OutOrStdout(), "Start: %s\nEnd: %s\n", window.StartDay(), window.EndDay())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(windowCmd)
	windowCmd.Flags().BoolVar(&windowLastWeek, "last-week", false, "Use the previous week (overrides sync.last_week)")
}
