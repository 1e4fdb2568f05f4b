package cli

import (
	"bufio"
	"context"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sibyl-cli/internal/core/ports/driving"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively",
	Long: `Starts an interactive session reading one question per line.
Each question is answered independently against the indexed corpus.
Type "exit" or press Ctrl-D to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
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

	// Only decorate the session when a human is typing.
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		cmd.Println("sibyl chat - ask about your indexed documents (exit to quit)")
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if interactive {
			cmd.Print("> ")
		}
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		answer, err := pipeline.Answer(ctx, question, driving.AnswerOptions{Conversational: true})
		if err != nil {
			cmd.PrintErrf("error: %v\n", err)
			continue
		}

		outputAnswerText(cmd, answer)
		cmd.Println()
	}

	return scanner.Err()
}
