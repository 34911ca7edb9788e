// Package cmd implements the CLI application to manage a book.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/finbook/finbook"
	"github.com/finbook/finbook/store"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package calls Register() to declare the subcommands, and Execute()
// on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&accountCmd{}, "setup")
	c.Register(&partyCmd{}, "setup")
	c.Register(&assetCmd{}, "setup")

	c.Register(newRecordCmd(finbook.Income), "transactions")
	c.Register(newRecordCmd(finbook.Expense), "transactions")
	c.Register(newRecordCmd(finbook.Sale), "transactions")
	c.Register(newRecordCmd(finbook.Purchase), "transactions")
	c.Register(&amendCmd{}, "transactions")
	c.Register(&deleteCmd{}, "transactions")

	c.Register(newTradeCmd(finbook.BuyTrade), "investments")
	c.Register(newTradeCmd(finbook.SellTrade), "investments")
	c.Register(&deleteTradeCmd{}, "investments")
	c.Register(&markCmd{}, "investments")

	c.Register(&txCmd{}, "reports")
	c.Register(&holdingsCmd{}, "reports")
	c.Register(&summaryCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")

	c.Register(&assistCmd{}, "assistant")
	c.Register(&topicCmd{}, "help")
}

// As a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables for the app-wide flags.

var configFile = flag.String("config", store.DefaultConfigPath(), "Path to the configuration file (TOML format)")
var bookFile = flag.String("book-file", "", "Path to the book file (JSONL format), overrides the configuration")

// app bundles the resolved configuration, the store and the logger.
type app struct {
	config *store.Config
	store  *store.Store
	log    zerolog.Logger
}

// openApp resolves the configuration and opens the store. Flags beat the
// environment, the environment beats the config file.
func openApp() (*app, error) {
	config, err := store.LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	if *bookFile != "" {
		config.BookFile = *bookFile
	}
	log := store.NewLogger(config.Logging.Level)
	return &app{
		config: config,
		store:  store.New(config.BookFile, log),
		log:    log,
	}, nil
}

// loadBook opens the app and loads the book in one call, for the many
// commands that need nothing else.
func loadBook() (*app, *finbook.Book, error) {
	a, err := openApp()
	if err != nil {
		return nil, nil, err
	}
	b, err := a.store.Load(a.config.Currency)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// fail prints the error and maps it to an exit status: usage errors for bad
// input, plain failure for everything else.
func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	if errors.Is(err, finbook.ErrValidation) || errors.Is(err, finbook.ErrReferentialIntegrity) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when the renderer is not available.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		fmt.Println(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
