package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the collection name and chunk count",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	index, err := newIndex()
	if err != nil {
		return err
	}
	defer index.Close()

	stats, err := index.Stats(context.Background())
	if err != nil {
		return err
	}
	cmd.Printf("collection: %s\nchunks: %d\n", stats.Name, stats.Count)
	return nil
}
