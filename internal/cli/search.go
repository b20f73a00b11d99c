package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var topKFlag int

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Query indexed twin entities by semantic similarity",
	Long: `Search embeds the query and returns the nearest indexed entity chunks
from the vector store.

Examples:
  twinlift search "hydraulic pressure sensor"
  twinlift search --top-k 10 "maintenance schedule"
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		_, loader, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		defer loader.Close()

		results, err := loader.Search(context.Background(), args[0], topKFlag)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if len(results) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for i, r := range results {
			fmt.Printf("%2d. %s (similarity %.3f)\n", i+1, okMark(r.EntityID), r.Similarity)
			fmt.Printf("    %s\n", truncate(r.Text, 160))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&topKFlag, "top-k", "k", 5, "Number of results to return")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
