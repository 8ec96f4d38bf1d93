package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the collection and all indexed chunks",
	Long: `Irreversibly drops every record in the configured collection.
The collection is re-created on the next ingest.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	index, err := newIndex()
	if err != nil {
		return err
	}
	defer index.Close()

	if err := index.DeleteCollection(context.Background()); err != nil {
		return err
	}
	cmd.Printf("collection %s deleted\n", cfg.Store.Collection)
	return nil
}
