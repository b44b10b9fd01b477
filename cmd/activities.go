package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"togglepace/config"
	"togglepace/internal/classify"
	"togglepace/internal/prompt"
	"togglepace/internal/secrets"
	"togglepace/sevenpace"
)

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List the 7pace activity types and the categories mapped to them.",
	Long: `Fetch the 7pace activity type catalog and mark the ids used by the keyword categories
(configured under "activities"). A category whose id is missing from the catalog is reported,
since its worklogs would be rejected by 7pace.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		tokens, err := secrets.Load()
		if err != nil {
			return err
		}
		if err := tokens.Require(false); err != nil {
			return err
		}

		client, err := sevenpace.NewClient(sevenpace.ClientConfig{
			BaseURL:    cfg.SevenPace.URL,
			APIVersion: cfg.SevenPace.APIVersion,
			Token:      tokens.SevenPace,
			UserAgent:  userAgent,
		})
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if cfg.Sync.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Sync.Timeout)
			defer cancel()
		}
		types, err := client.ListActivityTypes(ctx)
		if err != nil {
			return err
		}

		printActivities(cmd.OutOrStdout(), types, classify.NewClassifier(cfg.Activities).Categories())
		return nil
	},
}

func printActivities(out io.Writer, types []sevenpace.ActivityType, categories []classify.Category) {
	byID := make(map[string][]string, len(categories))
	for _, category := range categories {
		byID[category.ID] = append(byID[category.ID], category.Key)
	}

	sorted := append([]sevenpace.ActivityType(nil), types...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	fmt.Fprintln(out, prompt.Heading("7pace activity types"))
	known := make(map[string]struct{}, len(sorted))
	for _, activity := range sorted {
		known[activity.ID] = struct{}{}
		mapped := ""
		if keys, ok := byID[activity.ID]; ok {
			mapped = fmt.Sprintf("%v", keys)
		}
		fmt.Fprintf(out, "%-38s %-32s %s\n", activity.ID, activity.Name, mapped)
	}

	for _, category := range categories {
		if _, ok := known[category.ID]; !ok {
			fmt.Fprintln(out, prompt.Failure(fmt.Sprintf("category %s uses unknown activity type %s", category.Key, category.ID)))
		}
	}
}

func init() {
	rootCmd.AddCommand(activitiesCmd)
}
