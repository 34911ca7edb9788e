package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/finbook/finbook/renderer"
	"github.com/google/subcommands"
)

type txCmd struct {
	head int
	tail int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list all transactions in the book" }
func (*txCmd) Usage() string {
	return `fin tx [-head <n>] [-tail <n>]

  Lists transactions, most recent first; same-day entries keep the order in
  which they were recorded.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&c.tail, "tail", 0, "Show only the last N transactions.")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.head > 0 && c.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}

	_, b, err := loadBook()
	if err != nil {
		return fail(err)
	}

	txs := b.Transactions()
	if c.head > 0 && len(txs) > c.head {
		txs = txs[:c.head]
	}
	if c.tail > 0 && len(txs) > c.tail {
		txs = txs[len(txs)-c.tail:]
	}
	printMarkdown(renderer.TransactionsMarkdown(b, txs))
	return subcommands.ExitSuccess
}

type holdingsCmd struct{}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "show the investment positions" }
func (*holdingsCmd) Usage() string {
	return `fin holdings

  Shows every investment position: quantity held, weighted average cost,
  mark price, realized and unrealized P/L. Closed positions keep only their
  realized result.
`
}

func (*holdingsCmd) SetFlags(_ *flag.FlagSet) {}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, b, err := loadBook()
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.HoldingsMarkdown(b))
	return subcommands.ExitSuccess
}

type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show the whole book at a glance" }
func (*summaryCmd) Usage() string {
	return `fin summary

  Shows every account balance, every party balance and the investment
  totals.
`
}

func (*summaryCmd) SetFlags(_ *flag.FlagSet) {}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	_, b, err := loadBook()
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.SummaryMarkdown(b))
	return subcommands.ExitSuccess
}

type historyCmd struct {
	asset string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show the trade history of an asset" }
func (*historyCmd) Usage() string {
	return `fin history -asset <name>

  Shows the trade history of one asset in replay order, with the derived
  position after the last trade.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "asset", "", "Name of the asset")
}

func (c *historyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" {
		fmt.Fprintln(os.Stderr, "Error: the -asset flag is required.")
		return subcommands.ExitUsageError
	}

	_, b, err := loadBook()
	if err != nil {
		return fail(err)
	}
	asset, ok := assetByName(b, c.asset)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no asset named %q.\n", c.asset)
		return subcommands.ExitUsageError
	}
	printMarkdown(renderer.HistoryMarkdown(b, asset))
	return subcommands.ExitSuccess
}
