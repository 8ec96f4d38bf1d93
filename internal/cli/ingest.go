package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Load, chunk, embed and index documents",
	Long: `Reads the given .txt, .pdf or .csv files, splits them into
overlapping chunks, embeds each chunk and persists it into the
configured collection. Unsupported files are skipped and reported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	session, err := newSession()
	if err != nil {
		return err
	}
	defer session.Close()

	report, err := session.Ingest(context.Background(), args)
	if report != nil {
		for _, sk := range report.Skipped {
			cmd.Printf("skipped %s: %v\n", sk.Path, sk.Err)
		}
		cmd.Printf("loaded %d documents, %d chunks (avg %d, min %d, max %d chars)\n",
			report.Loaded, report.Chunks.Count, report.Chunks.AvgSize,
			report.Chunks.MinSize, report.Chunks.MaxSize)
	}
	return err
}
