package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var askSources bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question against the indexed documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askSources, "sources", false, "print the retrieved sources after the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	session, err := newSession()
	if err != nil {
		return err
	}
	defer session.Close()

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout())
	defer cancel()

	answer, sources, err := session.Ask(ctx, args[0])
	if err != nil {
		return err
	}
	cmd.Println(answer)
	if askSources && len(sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, s := range sources {
			cmd.Printf("  %d. %s (distance %.4f)\n", i+1, s.ID, s.Distance)
			if src, ok := s.Metadata["source"]; ok {
				cmd.Printf("     %s\n", src.String())
			}
		}
	}
	return nil
}
