package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently answered requests",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of requests")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if requestLog == nil {
		return errors.New("request log not configured")
	}

	records, err := requestLog.Recent(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No requests recorded.")
		return nil
	}

	for _, rec := range records {
		mode := "retrieval"
		if rec.FullTextBypass {
			mode = "full-text"
		}
		cmd.Printf("%s  %s  (%d questions, %s, %s)\n",
			rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.DocumentURL,
			len(rec.Questions), mode, rec.Duration.Round(time.Millisecond))
		for i, q := range rec.Questions {
			cmd.Printf("  Q: %s\n", q)
			if i < len(rec.Answers) {
				cmd.Printf("  A: %s\n", rec.Answers[i])
			}
		}
		cmd.Println()
	}
	return nil
}
