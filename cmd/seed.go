package cmd

import (
	"fmt"

	"catering/database"
	"catering/logger"

	"github.com/spf13/cobra"
)

var seedReset bool

var seedTagsCmd = &cobra.Command{
	Use:   "seed-tags",
	Short: "Insert the predefined tag catalog",
	Long: `Insert the predefined dietary, highlight, spice level and cuisine tags.

Without --reset nothing happens when tags already exist. With --reset every
tag is deleted first, which also detaches them from all menu items.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		// Init seeds an empty catalog on its own
		if err := database.Init(cfg, log); err != nil {
			return err
		}

		n, err := database.SeedTags(database.DB, seedReset)
		if err != nil {
			return fmt.Errorf("seed tags: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "inserted %d tags\n", n)
		return nil
	},
}

func init() {
	seedTagsCmd.Flags().BoolVar(&seedReset, "reset", false, "delete existing tags before seeding")
	rootCmd.AddCommand(seedTagsCmd)
}
