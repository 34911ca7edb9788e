package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/finbook/finbook/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "start an interactive session with the AI assistant" }
func (*assistCmd) Usage() string {
	return `fin assist [initial prompt...]

  Starts an interactive session with the AI assistant. The assistant can
  read the book, record transactions and execute trades on your behalf; set
  GEMINI_API_KEY or the [assistant] section of the configuration first.
`
}

func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	initialPrompt := ""
	if f.NArg() > 0 {
		initialPrompt = strings.Join(f.Args(), " ")
	}

	a, err := openApp()
	if err != nil {
		return fail(err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: a.config.Assist.APIKey})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	bookkeeper := agent.NewBookkeeper(a.store, a.config.Currency, a.config.Assist.Model)
	analyst := agent.NewAnalyst(a.config.Assist.Model)
	assistant := agent.New(os.Stdout, os.Stdin, bookkeeper, analyst)

	if err := assistant.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Assistant failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
