package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/finbook/finbook"
	"github.com/google/subcommands"
)

// tradeCmd implements buy and sell; they share flags and differ only in the
// trade kind.
type tradeCmd struct {
	kind finbook.TradeKind

	id       string
	asset    string
	date     string
	quantity float64
	price    float64
	charges  float64
	account  string
}

func newTradeCmd(kind finbook.TradeKind) *tradeCmd {
	return &tradeCmd{kind: kind}
}

func (c *tradeCmd) Name() string { return string(c.kind) }
func (c *tradeCmd) Synopsis() string {
	if c.kind == finbook.BuyTrade {
		return "buy units of an asset"
	}
	return "sell units of an asset"
}
func (c *tradeCmd) Usage() string {
	return fmt.Sprintf(`fin %s -asset <name> -q <quantity> -p <price> -account <name> [-charges <amount>] [-d <date>]

  Executes a %s: the asset's full trade history is replayed to derive its
  quantity, weighted average cost, realized P/L and status, and the matching
  cash movement is recorded on the settlement account. Passing the -id of an
  existing trade amends it instead, rippling through every later trade.
`, c.kind, c.kind)
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Id of an existing trade to amend (optional)")
	f.StringVar(&c.asset, "asset", "", "Name of the asset")
	f.StringVar(&c.date, "d", finbook.Today().String(), "Trade date (YYYY-MM-DD)")
	f.Float64Var(&c.quantity, "q", 0, "Units traded, strictly positive")
	f.Float64Var(&c.price, "p", 0, "Price per unit, strictly positive")
	f.Float64Var(&c.charges, "charges", 0, "Brokerage and fees")
	f.StringVar(&c.account, "account", "", "Name of the settlement cash account")
}

func (c *tradeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" || c.account == "" {
		fmt.Fprintln(os.Stderr, "Error: the -asset and -account flags are required.")
		return subcommands.ExitUsageError
	}
	date, err := finbook.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, b, err := loadBook()
	if err != nil {
		return fail(err)
	}
	asset, ok := assetByName(b, c.asset)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no asset named %q.\n", c.asset)
		return subcommands.ExitUsageError
	}
	account, ok := b.AccountByName(c.account)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no account named %q.\n", c.account)
		return subcommands.ExitUsageError
	}

	result, err := b.ExecuteTrade(asset.ID, finbook.Trade{
		ID:       c.id,
		Kind:     c.kind,
		Date:     date,
		Quantity: finbook.Q(c.quantity),
		Price:    finbook.M(c.price, b.Currency()),
		Charges:  finbook.M(c.charges, b.Currency()),
	}, account.ID)
	if err != nil {
		return fail(err)
	}
	if err := a.store.Save(b); err != nil {
		return fail(err)
	}

	fmt.Printf("%s: now holding %s %s at an average cost of %s (realized P/L %s). %s balance: %s.\n",
		result.Transaction.Description,
		result.Asset.Quantity, result.Asset.Name, result.Asset.AvgCost,
		result.Asset.RealizedPL.SignedString(),
		result.Account.Name, result.Account.Balance)
	return subcommands.ExitSuccess
}

type deleteTradeCmd struct {
	asset string
	id    string
}

func (*deleteTradeCmd) Name() string     { return "delete-trade" }
func (*deleteTradeCmd) Synopsis() string { return "delete a trade and its linked cash transaction" }
func (*deleteTradeCmd) Usage() string {
	return `fin delete-trade -asset <name> -id <id>

  Removes a trade from the asset's history, replays the remaining trades,
  and reverses the linked cash transaction on the settlement account.
`
}

func (c *deleteTradeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "asset", "", "Name of the asset")
	f.StringVar(&c.id, "id", "", "Id of the trade to delete")
}

func (c *deleteTradeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" || c.id == "" {
		fmt.Fprintln(os.Stderr, "Error: the -asset and -id flags are required.")
		return subcommands.ExitUsageError
	}

	a, b, err := loadBook()
	if err != nil {
		return fail(err)
	}
	asset, ok := assetByName(b, c.asset)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no asset named %q.\n", c.asset)
		return subcommands.ExitUsageError
	}
	if err := b.DeleteTrade(asset.ID, c.id); err != nil {
		return fail(err)
	}
	if err := a.store.Save(b); err != nil {
		return fail(err)
	}
	fmt.Printf("Deleted trade %s on %s.\n", c.id, asset.Name)
	return subcommands.ExitSuccess
}

type markCmd struct {
	asset string
	price float64
}

func (*markCmd) Name() string     { return "mark" }
func (*markCmd) Synopsis() string { return "set the mark price of an asset" }
func (*markCmd) Usage() string {
	return `fin mark -asset <name> -p <price>

  Sets the latest known unit price of an asset. The mark price only feeds
  the unrealized P/L display: it never changes balances or the trade
  history.
`
}

func (c *markCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "asset", "", "Name of the asset")
	f.Float64Var(&c.price, "p", 0, "Unit price, never negative")
}

func (c *markCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" {
		fmt.Fprintln(os.Stderr, "Error: the -asset flag is required.")
		return subcommands.ExitUsageError
	}

	a, b, err := loadBook()
	if err != nil {
		return fail(err)
	}
	asset, ok := assetByName(b, c.asset)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no asset named %q.\n", c.asset)
		return subcommands.ExitUsageError
	}
	marked, err := b.SetMarkPrice(asset.ID, finbook.M(c.price, b.Currency()))
	if err != nil {
		return fail(err)
	}
	if err := a.store.Save(b); err != nil {
		return fail(err)
	}
	fmt.Printf("Marked %s at %s. Unrealized P/L: %s.\n",
		marked.Name, marked.MarkPrice, marked.UnrealizedPL().SignedString())
	return subcommands.ExitSuccess
}
