package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driving"
)

var (
	askTopK   int
	askBudget int
	askJSON   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question over the indexed documents",
	Long: `Retrieves the most relevant chunks for the question, assembles a
grounded prompt and asks the configured model. The answer cites the
passages that were actually included in the prompt.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve")
	askCmd.Flags().IntVar(&askBudget, "budget", 0, "context budget in characters")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}
	if !pipeline.Answerable() {
		return errors.New("no generation model configured: set the provider config key")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	answer, err := pipeline.Answer(ctx, args[0], driving.AnswerOptions{
		TopK:          askTopK,
		ContextBudget: askBudget,
	})
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	outputAnswerText(cmd, answer)
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Text)

	if len(answer.Citations) == 0 {
		cmd.Println()
		cmd.Println("(no indexed context was used)")
		return
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, c := range answer.Citations {
		location := c.SourcePath
		if location == "" {
			location = c.DocumentID
		}
		cmd.Printf("  [%d] %s (chunk %d)\n", i+1, location, c.Position)
	}
}
