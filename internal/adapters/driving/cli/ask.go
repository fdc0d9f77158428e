package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [url] [question]...",
	Short: "Answer questions about a document",
	Long: `Downloads and indexes the document at the given URL, then answers
each question from its content. Repeated runs against the same document
reuse the on-disk index cache.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output answers as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if qaService == nil {
		return errors.New("qa service not configured")
	}

	url := args[0]
	questions := args[1:]

	answers, err := qaService.Answer(context.Background(), url, questions)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(map[string][]string{"answers": answers}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answers: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	for i, q := range questions {
		cmd.Printf("Q: %s\n", q)
		cmd.Printf("A: %s\n", answers[i])
		if i < len(questions)-1 {
			cmd.Println()
		}
	}
	return nil
}
